package natsadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/camslew/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	durable string
	subs    []*nats.Subscription
}

// NewSubscriber connects to NATS; durable names the consumer so restarts
// resume where they left off.
func NewSubscriber(url, durable string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := ensureStream(js); err != nil {
		return nil, err
	}
	return &Subscriber{conn: conn, js: js, durable: durable}, nil
}

// SubscribeSlewCommitted delivers every committed slew to handler. Messages
// are acked on success and redelivered (up to 5 times) on error. Malformed
// payloads and records the handler reports as domain.ErrRecordRejected are
// terminated.
func (s *Subscriber) SubscribeSlewCommitted(ctx context.Context, handler func(ctx context.Context, rec *domain.SlewRecord) error) error {
	sub, err := s.js.Subscribe(SlewSubjectPattern, func(msg *nats.Msg) {
		var rec domain.SlewRecord
		if err := json.Unmarshal(msg.Data, &rec); err != nil {
			_ = msg.Term()
			return
		}
		switch ackFor(handler(ctx, &rec)) {
		case ackTerm:
			_ = msg.Term()
		case ackNak:
			_ = msg.Nak()
		default:
			_ = msg.Ack()
		}
	},
		nats.Durable(s.durable),
		nats.ManualAck(),
		nats.MaxDeliver(5),
		nats.DeliverAll(),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

type ackKind int

const (
	ackOK ackKind = iota
	ackNak
	ackTerm
)

func ackFor(err error) ackKind {
	switch {
	case err == nil:
		return ackOK
	case errors.Is(err, domain.ErrRecordRejected):
		return ackTerm
	default:
		return ackNak
	}
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
