package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestProducerPublish(t *testing.T) {
	writer := &fakeWriter{}
	p := NewWithWriter(writer, "show-calls")

	err := p.Publish(context.Background(), "call-7", map[string]int{"call_id": 7})
	require.NoError(t, err)
	require.Len(t, writer.messages, 1)
	assert.Equal(t, "call-7", string(writer.messages[0].Key))

	var body map[string]int
	require.NoError(t, json.Unmarshal(writer.messages[0].Value, &body))
	assert.Equal(t, 7, body["call_id"])

	require.NoError(t, p.Close())
	assert.True(t, writer.closed)
}

func TestProducerPublishErrors(t *testing.T) {
	writer := &fakeWriter{err: errors.New("leader not available")}
	p := NewWithWriter(writer, "show-calls")

	err := p.Publish(context.Background(), "k", "v")
	assert.ErrorContains(t, err, "show-calls")

	err = p.Publish(context.Background(), "k", func() {})
	assert.ErrorContains(t, err, "marshal")
}

func TestSplitBrokers(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "", want: nil},
		{in: "localhost:9092", want: []string{"localhost:9092"}},
		{in: " a:1, ,b:2 ", want: []string{"a:1", "b:2"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, splitBrokers(tt.in))
		})
	}
}

func TestNewProducerWithoutBrokersIsMock(t *testing.T) {
	p := NewProducer("", "show-calls")
	_, ok := p.(*mockProducer)
	assert.True(t, ok)
	assert.NoError(t, p.Publish(context.Background(), "k", "v"))
	assert.NoError(t, p.Close())
}
