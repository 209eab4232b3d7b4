package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "[nvfans] ", WarnLevel)

	l.Debugf("debug %d", 1)
	l.Infof("info %d", 2)
	l.Printf("printf %d", 3)
	l.Warnf("warn %d", 4)
	l.Errorf("error %d", 5)

	out := buf.String()
	assert.NotContains(t, out, "debug 1")
	assert.NotContains(t, out, "info 2")
	assert.NotContains(t, out, "printf 3")
	assert.Contains(t, out, "[WARN] warn 4")
	assert.Contains(t, out, "[ERROR] error 5")
	assert.Equal(t, 2, strings.Count(out, "[nvfans] "))
}

func TestNoColorWhenNotATerminal(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "", DebugLevel)
	l.Errorf("plain")
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestPrintfIsInfo(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "", InfoLevel).Printf("[fan] Temperature now %dC", 82)
	assert.Contains(t, buf.String(), "[INFO] [fan] Temperature now 82C")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", DebugLevel},
		{"INFO", InfoLevel},
		{"", InfoLevel},
		{"warning", WarnLevel},
		{" error ", ErrorLevel},
		{"off", OffLevel},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}
