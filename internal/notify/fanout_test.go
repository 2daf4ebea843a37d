package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/ds124wfegd/showcaller/internal/entity"

	"github.com/stretchr/testify/assert"
)

type fakeBroker struct {
	keys []string
	err  error
}

func (b *fakeBroker) Publish(ctx context.Context, key string, message interface{}) error {
	b.keys = append(b.keys, key)
	return b.err
}

func TestFanOutPublishesToEveryBroker(t *testing.T) {
	ok := &fakeBroker{}
	broken := &fakeBroker{err: errors.New("queue closed")}
	f := NewFanOut(ok, nil, broken)
	assert.Equal(t, 2, f.Len())

	err := f.PublishCallFired(context.Background(), &entity.CallFired{CallID: 12})
	assert.ErrorContains(t, err, "queue closed")
	assert.Equal(t, []string{"12"}, ok.keys)
	assert.Equal(t, []string{"12"}, broken.keys)
}
