package broker

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	kafka "github.com/segmentio/kafka-go"
)

// Consumer reads one topic within a consumer group. The group assigns each
// partition to exactly one member, which is what makes every owner the
// single writer for its keys.
type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, groupID, topic string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     brokers,
			GroupID:     groupID,
			Topic:       topic,
			StartOffset: kafka.FirstOffset,
			MaxWait:     500 * time.Millisecond,
		}),
	}
}

// Fetch blocks until a message arrives or ctx is cancelled. It never
// advances the committed offset.
func (c *Consumer) Fetch(ctx context.Context) (Message, error) {
	msg, err := c.reader.FetchMessage(ctx)
	if err != nil {
		return Message{}, errors.Wrap(err, "fetch message")
	}
	return Message{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Key:       msg.Key,
		Value:     msg.Value,
	}, nil
}

// Commit advances the durable read cursor past msg so it is not redelivered
// after a restart or rebalance.
func (c *Consumer) Commit(ctx context.Context, msg Message) error {
	err := c.reader.CommitMessages(ctx, kafka.Message{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
	})
	return errors.Wrap(err, "commit offset")
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
