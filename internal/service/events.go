package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/record-tracker/internal/logging"
	"github.com/iliyamo/record-tracker/internal/model"
	q "github.com/iliyamo/record-tracker/internal/queue"
)

// Publisher emits account events. Failures never fail the request that
// produced the event.
type Publisher interface {
	Publish(ctx context.Context, ev q.AccountEvent) error
}

// NopPublisher drops every event. Used when EVENTS_ENABLED is false.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, q.AccountEvent) error { return nil }

// AMQPPublisher publishes persistent JSON messages to a durable queue on
// the default exchange, dialing per message.
type AMQPPublisher struct {
	URL   string
	Queue string
}

func (p AMQPPublisher) Publish(ctx context.Context, ev q.AccountEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.Queue, true, false, false, false, nil); err != nil {
		return err
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx, "", p.Queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

// emit publishes an event for u and logs, but swallows, any failure.
func emit(ctx context.Context, pub Publisher, log logging.Logger, typ string, u *model.User, actorID string) {
	ev := q.AccountEvent{
		Type:       typ,
		UserID:     u.ID,
		Username:   u.Username,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := pub.Publish(ctx, ev); err != nil {
		log.Warn(ctx, "publish account event failed", "type", typ, "user_id", u.ID, "err", err)
	}
}
