package busadminnotifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jroedel/nvfans/foundation/notifyserver"
)

const notifyTimeout = 5 * time.Second

type Logger interface {
	Printf(format string, v ...any)
}

// Notifier is satisfied by *notifyserver.Client.
type Notifier interface {
	Notify(ctx context.Context, msg notifyserver.NotifyApiMessage) error
}

type AdminNotifier struct {
	api      Notifier
	clientId string
	logger   Logger
}

func New(api Notifier, clientId string, logger Logger) (*AdminNotifier, error) {
	if api == nil {
		return nil, errors.New("notifier api is required")
	}
	if clientId == "" {
		return nil, fmt.Errorf("client id is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	return &AdminNotifier{api: api, clientId: clientId, logger: logger}, nil
}

// NotifyAdmin is safe to call on a nil *AdminNotifier, in which case nothing
// is sent. A failed delivery is logged and otherwise ignored.
func (an *AdminNotifier) NotifyAdmin(message string, urgency notifyserver.Urgency) {
	if an == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	msg := notifyserver.NotifyApiMessage{
		ClientId: an.clientId,
		Message:  message,
		Urgency:  urgency,
	}
	if err := an.api.Notify(ctx, msg); err != nil {
		an.logger.Printf("[notify] unable to notify admin (%s): %v", urgency, err)
	}
}
