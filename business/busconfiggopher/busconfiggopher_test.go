package busconfiggopher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jroedel/nvfans/foundation/ctlthinkpadfan"
)

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Printf(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func fetchFrom(t *testing.T, content *string) ([]Rule, ConfigSource, *recordingLogger) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nvfans.conf")
	if content != nil {
		require.NoError(t, os.WriteFile(path, []byte(*content), 0o644))
	}
	logger := &recordingLogger{}
	cg, err := New(path, logger)
	require.NoError(t, err)
	rules, source := cg.FetchRules()
	return rules, source, logger
}

func ptr(s string) *string { return &s }

func TestParseRulesSingleLine(t *testing.T) {
	rules, err := ParseRules(strings.NewReader("10,20,5\n"))
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, Rule{Name: "level 0", Low: 10, High: 20, Speed: ctlthinkpadfan.Level5}, rules[0])
	assert.Equal(t, "level 5", rules[0].Speed.String())
}

func TestParseRulesNamesFollowLineIndex(t *testing.T) {
	config := "81,100,7\nthis line is ignored\n\n0,80,auto\n50,60,full-speed\n1,2\n1,2,3,4\n"
	rules, err := ParseRules(strings.NewReader(config))
	require.NoError(t, err)
	assert.Equal(t, []Rule{
		{Name: "level 0", Low: 81, High: 100, Speed: ctlthinkpadfan.Level7},
		{Name: "level 3", Low: 0, High: 80, Speed: ctlthinkpadfan.Auto},
		{Name: "level 4", Low: 50, High: 60, Speed: ctlthinkpadfan.FullSpeed},
	}, rules)
}

func TestParseRulesUnknownTokenIsAuto(t *testing.T) {
	rules, err := ParseRules(strings.NewReader("0,100,turbo\r\n"))
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, ctlthinkpadfan.Auto, rules[0].Speed)
}

func TestParseRulesPaddedFieldsAreNotTrimmed(t *testing.T) {
	_, err := ParseRules(strings.NewReader("10, 20,5\n"))
	assert.ErrorIs(t, err, ErrMalformedConfig)

	rules, err := ParseRules(strings.NewReader("0,100, 5\n"))
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, ctlthinkpadfan.Auto, rules[0].Speed)
}

func TestFetchRulesPaddedNumberFallsBackToDefaults(t *testing.T) {
	rules, source, _ := fetchFrom(t, ptr("10, 20,5\n30,40, 5\n"))
	assert.Equal(t, DefaultRules(), rules)
	assert.Equal(t, ConfigSourceDefault, source)
}

func TestParseRulesLongLine(t *testing.T) {
	config := "81,100,7\n" + strings.Repeat("x", 200*1024) + "\n0,80,auto\n"
	rules, err := ParseRules(strings.NewReader(config))
	require.NoError(t, err)
	assert.Equal(t, []Rule{
		{Name: "level 0", Low: 81, High: 100, Speed: ctlthinkpadfan.Level7},
		{Name: "level 2", Low: 0, High: 80, Speed: ctlthinkpadfan.Auto},
	}, rules)
}

func TestParseRulesCRLF(t *testing.T) {
	rules, err := ParseRules(strings.NewReader("10,20,5\r\n30,40,6\r\n"))
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, ctlthinkpadfan.Level5, rules[0].Speed)
	assert.Equal(t, ctlthinkpadfan.Level6, rules[1].Speed)
}

func TestParseRulesMalformedNumber(t *testing.T) {
	for _, config := range []string{"abc,20,5", "10,20,5\n10,xyz,5\n", "1.5,2,3"} {
		_, err := ParseRules(strings.NewReader(config))
		assert.True(t, errors.Is(err, ErrMalformedConfig), "config %q: %v", config, err)
	}
}

func TestFetchRulesMalformedFileFallsBackToDefaults(t *testing.T) {
	rules, source, logger := fetchFrom(t, ptr("10,20,5\nabc,20,5\n"))
	assert.Equal(t, DefaultRules(), rules)
	assert.Equal(t, ConfigSourceDefault, source)
	require.NotEmpty(t, logger.lines)
	assert.Contains(t, logger.lines[0], "Using default config")
}

func TestFetchRulesMissingFileUsesDefaults(t *testing.T) {
	rules, source, logger := fetchFrom(t, nil)
	assert.Equal(t, DefaultRules(), rules)
	assert.Equal(t, ConfigSourceDefault, source)
	assert.Empty(t, logger.lines)
}

func TestFetchRulesFromFile(t *testing.T) {
	rules, source, _ := fetchFrom(t, ptr("10,20,5\n"))
	assert.Equal(t, ConfigSourceLocalFile, source)
	assert.Equal(t, []Rule{{Name: "level 0", Low: 10, High: 20, Speed: ctlthinkpadfan.Level5}}, rules)
}

func TestFetchRulesEmptyFileHasNoRules(t *testing.T) {
	rules, source, logger := fetchFrom(t, ptr(""))
	assert.Equal(t, ConfigSourceLocalFile, source)
	assert.Empty(t, rules)
	assert.NotEmpty(t, logger.lines)
}

func TestDefaultRules(t *testing.T) {
	rules := DefaultRules()
	require.Len(t, rules, 4)
	assert.Equal(t, "level 7", rules[0].Name)
	assert.True(t, rules[0].Contains(81))
	assert.True(t, rules[0].Contains(100))
	assert.False(t, rules[0].Contains(101))
	assert.Equal(t, ctlthinkpadfan.Auto, rules[3].Speed)
	assert.True(t, rules[3].Contains(0))
	assert.True(t, rules[3].Contains(70))

	//callers get their own copy
	rules[0].High = 1
	assert.Equal(t, int64(100), DefaultRules()[0].High)
}

func TestNewRequiresPathAndLogger(t *testing.T) {
	_, err := New("", &recordingLogger{})
	assert.Error(t, err)
	_, err = New("/etc/nvfans.conf", nil)
	assert.Error(t, err)
}
