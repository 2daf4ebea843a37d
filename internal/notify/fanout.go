package notify

import (
	"context"
	"errors"
	"strconv"

	"github.com/ds124wfegd/showcaller/internal/entity"
)

// Broker is a message queue client (RabbitMQ queue, Kafka topic).
type Broker interface {
	Publish(ctx context.Context, key string, message interface{}) error
}

// FanOut hands every fired call to each configured broker.
type FanOut struct {
	brokers []Broker
}

func NewFanOut(brokers ...Broker) *FanOut {
	f := &FanOut{}
	for _, b := range brokers {
		if b != nil {
			f.brokers = append(f.brokers, b)
		}
	}
	return f
}

func (f *FanOut) Len() int { return len(f.brokers) }

// PublishCallFired keys messages by call id so a partitioned broker keeps the
// events of one call in order.
func (f *FanOut) PublishCallFired(ctx context.Context, event *entity.CallFired) error {
	key := strconv.FormatInt(event.CallID, 10)

	var errs []error
	for _, b := range f.brokers {
		if err := b.Publish(ctx, key, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
