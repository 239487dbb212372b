package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// LogSubscriber пишет события в журнал.
func LogSubscriber(logger *zap.SugaredLogger) Handler {
	return func(e Event) {
		logger.Infow("vault event", "event", e.Name, "user_id", e.UserID, "item_id", e.ItemID)
	}
}

// Publisher — то, что нужно от *nats.Conn для пересылки событий.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSForwarder пересылает события в subject "<prefix>.<name>". Ошибки только логируются.
func NATSForwarder(p Publisher, prefix string, logger *zap.SugaredLogger) Handler {
	return func(e Event) {
		data, err := json.Marshal(e)
		if err != nil {
			logger.Errorw("marshal event", "event", e.Name, "error", err)
			return
		}
		subject := prefix + "." + e.Name
		if err := p.Publish(subject, data); err != nil {
			logger.Warnw("publish event to NATS", "subject", subject, "error", err)
		}
	}
}

// ConnectNATS открывает соединение с переподключением и логированием состояния.
func ConnectNATS(url string, logger *zap.SugaredLogger) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name("mypass-server"),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warnw("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Infow("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}
