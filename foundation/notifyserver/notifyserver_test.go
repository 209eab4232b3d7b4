package notifyserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUrgencyJSON(t *testing.T) {
	b, err := json.Marshal(NotifyApiMessage{ClientId: "x1", Message: "hot", Urgency: SeriousNotification})
	require.NoError(t, err)
	assert.JSONEq(t, `{"clientId":"x1","message":"hot","urgency":"serious"}`, string(b))

	var msg NotifyApiMessage
	require.NoError(t, json.Unmarshal([]byte(`{"urgency":"problem"}`), &msg))
	assert.Equal(t, ProblemNotification, msg.Urgency)

	require.NoError(t, json.Unmarshal([]byte(`{"urgency":"whatever"}`), &msg))
	assert.Equal(t, InfoNotification, msg.Urgency)
}

func TestNewClientValidatesUrl(t *testing.T) {
	_, err := NewClient("")
	assert.Error(t, err)
	_, err = NewClient("ftp://example.com/hook")
	assert.Error(t, err)
	_, err = NewClient("https://example.com/hook")
	assert.NoError(t, err)
}

func TestNotifyPostsJSON(t *testing.T) {
	var got NotifyApiMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)
	err = c.Notify(context.Background(), NotifyApiMessage{ClientId: "x1", Message: "fan started", Urgency: InfoNotification})
	require.NoError(t, err)
	assert.Equal(t, NotifyApiMessage{ClientId: "x1", Message: "fan started", Urgency: InfoNotification}, got)
}

func TestNotifyRejectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)
	err = c.Notify(context.Background(), NotifyApiMessage{Message: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestClientIdRegex(t *testing.T) {
	assert.True(t, ClientIdRegex.MatchString("x1-carbon"))
	assert.False(t, ClientIdRegex.MatchString("x1"))
	assert.False(t, ClientIdRegex.MatchString("x1 carbon"))
}
