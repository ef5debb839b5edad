// Package broker wraps the Kafka client behind the small surface the
// services need: keyed produce, blocking fetch with explicit offset commit,
// and the consume-process-commit loop. Key hashing is what serializes all
// writes for one area onto one consumer; there is no other locking anywhere.
package broker

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// Message is one record fetched from the log. Offset identifies the durable
// read cursor position to commit after the record has been fully handled.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
}

// Decode unmarshals a message payload. Payloads arrive already structured;
// a payload that does not parse is a validation failure, not a transport
// one, and must not be retried.
func Decode[T any](msg Message, out *T) error {
	if len(msg.Value) == 0 {
		return errors.Newf("empty payload on topic %s", msg.Topic)
	}
	if err := json.Unmarshal(msg.Value, out); err != nil {
		return errors.Wrapf(err, "decode payload on topic %s", msg.Topic)
	}
	return nil
}
