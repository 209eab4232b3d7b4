// Package notifyserver posts notification messages to an admin webhook. May also be used by the receiving side to decode input
package notifyserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
)

// ClientIdRegex is what a client identifier must look like.
var ClientIdRegex = regexp.MustCompile(`^[-a-zA-Z0-9]{3,50}$`)

type NotifyApiMessage struct {
	ClientId string  `json:"clientId"`
	Message  string  `json:"message"`
	Urgency  Urgency `json:"urgency"`
}

type Client struct {
	webhookUrl string
	httpClient *http.Client
}

func NewClient(webhookUrl string) (*Client, error) {
	if webhookUrl == "" {
		return nil, errors.New("webhook url is required")
	}
	u, err := url.Parse(webhookUrl)
	if err != nil {
		return nil, fmt.Errorf("parse webhook url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("webhook url must be http or https, got %q", webhookUrl)
	}
	return &Client{webhookUrl: webhookUrl, httpClient: http.DefaultClient}, nil
}

// Notify POSTs msg as JSON. Any non-2xx answer is an error.
func (s *Client) Notify(ctx context.Context, msg NotifyApiMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookUrl, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notification rejected: %s", resp.Status)
	}
	return nil
}

type Urgency int

const (
	InfoNotification Urgency = iota + 1
	ProblemNotification
	SeriousNotification
)

func (s Urgency) String() string {
	switch s {
	case InfoNotification:
		return "info"
	case ProblemNotification:
		return "problem"
	case SeriousNotification:
		return "serious"
	default:
		return ""
	}
}

func (s Urgency) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Urgency) UnmarshalJSON(b []byte) error {
	var j string
	err := json.Unmarshal(b, &j)
	if err != nil {
		return err
	}
	switch j {
	case "info":
		*s = InfoNotification
	case "problem":
		*s = ProblemNotification
	case "serious":
		*s = SeriousNotification
	default:
		*s = InfoNotification //we won't make a big deal about it
	}
	return nil
}
