package broker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	kafka "github.com/segmentio/kafka-go"

	"github.com/jyasuu/ticket-master/internal/observability"
	"github.com/jyasuu/ticket-master/internal/resilience"
)

// Sender is the produce side consumed by the services. Implementations must
// route messages with equal keys to the same partition.
type Sender interface {
	Send(ctx context.Context, topic, key string, value any) error
}

// Producer publishes keyed JSON records. Transport failures are retried with
// backoff behind a circuit breaker; encoding failures are returned as-is.
type Producer struct {
	writer  *kafka.Writer
	breaker *resilience.CircuitBreaker
	retry   resilience.RetryConfig
	log     observability.Logger
}

func NewProducer(brokers []string, log observability.Logger) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
			BatchTimeout:           10 * time.Millisecond,
		},
		breaker: resilience.NewCircuitBreaker(5, 10*time.Second),
		retry:   resilience.ProducerRetry(),
		log:     log,
	}
}

func (p *Producer) Send(ctx context.Context, topic, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "encode record for topic %s", topic)
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
	}

	attempt := 0
	return resilience.Retry(ctx, p.log, p.retry, "produce "+topic, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			observability.ProduceRetries.Inc()
		}
		return p.breaker.Call(ctx, func(ctx context.Context) error {
			return p.writer.WriteMessages(ctx, msg)
		})
	})
}

// Flush satisfies the drain-and-flush contract. The writer delivers
// synchronously, so closing it is sufficient to drain.
func (p *Producer) Flush(ctx context.Context) error {
	return p.writer.Close()
}
