package natsadapter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
)

// Subscriber delivers emergency alerts published by Publisher.
type Subscriber struct {
	conn   *nats.Conn
	prefix string
	subs   []*nats.Subscription
}

// NewSubscriber listens under prefix on an existing connection.
func NewSubscriber(conn *nats.Conn, prefix string) *Subscriber {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &Subscriber{conn: conn, prefix: prefix}
}

// SubscribeEmergencies calls handler for every alert, across all squawk
// codes. Undecodable messages are logged and dropped.
func (s *Subscriber) SubscribeEmergencies(ctx context.Context, handler func(ctx context.Context, a Alert) error) error {
	sub, err := s.conn.Subscribe(Subject(s.prefix, ">"), func(msg *nats.Msg) {
		var a Alert
		if err := json.Unmarshal(msg.Data, &a); err != nil {
			slog.Warn("dropping malformed alert", "subject", msg.Subject, "error", err)
			return
		}
		if err := handler(ctx, a); err != nil {
			slog.Error("alert handler failed", "icao24", a.ICAO24, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe alerts: %w", err)
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes all active subscriptions.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
}
