package broker

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/jyasuu/ticket-master/internal/observability"
)

// Handler processes one message. Returning nil commits the offset; returning
// an error leaves it uncommitted so the message is redelivered after a
// restart or rebalance (at-least-once).
type Handler func(ctx context.Context, msg Message) error

// Fetcher is the consume side of one topic subscription.
type Fetcher interface {
	Fetch(ctx context.Context) (Message, error)
	Commit(ctx context.Context, msg Message) error
}

type subscription struct {
	topic    string
	consumer Fetcher
	handler  Handler
}

// Runner drives the consume-process-commit loops of one service: one loop
// per subscribed topic, each handling one message to completion before
// dequeuing the next. Cancelling the context ends every loop at its next
// blocking point without losing in-flight offsets.
type Runner struct {
	subs []subscription
	log  observability.Logger
}

func NewRunner(log observability.Logger) *Runner {
	return &Runner{log: log}
}

func (r *Runner) Subscribe(topic string, consumer Fetcher, handler Handler) {
	r.subs = append(r.subs, subscription{topic: topic, consumer: consumer, handler: handler})
}

func (r *Runner) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, sub := range r.subs {
		g.Go(func() error {
			return r.consume(ctx, sub)
		})
	}
	return g.Wait()
}

func (r *Runner) consume(ctx context.Context, sub subscription) error {
	log := r.log.WithField("topic", sub.topic)
	log.Info("consumer loop started")

	for {
		msg, err := sub.consumer.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("consumer loop stopped")
				return nil
			}
			return errors.Wrapf(err, "consumer loop for %s", sub.topic)
		}

		start := time.Now()
		if err := sub.handler(ctx, msg); err != nil {
			// Leave the offset uncommitted; the command is replayed from
			// the last committed cursor on restart.
			observability.MessagesProcessed.WithLabelValues(sub.topic, "error").Inc()
			log.WithField("offset", msg.Offset).WithError(err).Error("handler failed, offset not committed")
			continue
		}
		observability.MessagesProcessed.WithLabelValues(sub.topic, "ok").Inc()
		observability.HandlerDuration.WithLabelValues(sub.topic).Observe(time.Since(start).Seconds())

		if err := sub.consumer.Commit(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.WithField("offset", msg.Offset).WithError(err).Error("offset commit failed")
		}
	}
}
