package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type Producer interface {
	Publish(ctx context.Context, key string, message interface{}) error
	Close() error
}

// MessageWriter is the part of kafka.Writer the producer needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaProducer struct {
	writer MessageWriter
	topic  string
}

// NewProducer connects to the first reachable broker and makes sure the topic
// exists. Without a broker it falls back to a producer that only logs.
func NewProducer(brokers, topic string) Producer {
	addrs := splitBrokers(brokers)
	if len(addrs) == 0 {
		logrus.Warn("No Kafka brokers configured, using mock producer")
		return &mockProducer{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := kafka.DialContext(ctx, "tcp", addrs[0])
	if err != nil {
		logrus.Warnf("Kafka connection failed: %v", err)
		logrus.Warn("Using mock producer instead")
		return &mockProducer{}
	}
	defer conn.Close()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		logrus.Infof("Could not create topic (might already exist): %v", err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(addrs...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	logrus.Infof("Connected to Kafka at %s, topic %s", brokers, topic)
	return NewWithWriter(writer, topic)
}

func NewWithWriter(writer MessageWriter, topic string) Producer {
	return &kafkaProducer{writer: writer, topic: topic}
}

func (p *kafkaProducer) Publish(ctx context.Context, key string, message interface{}) error {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: messageBytes,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to topic %s: %w", p.topic, err)
	}

	logrus.Debugf("Message %s sent to topic: %s", key, p.topic)
	return nil
}

func (p *kafkaProducer) Close() error {
	return p.writer.Close()
}

func splitBrokers(brokers string) []string {
	var addrs []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			addrs = append(addrs, b)
		}
	}
	return addrs
}

// mockProducer keeps the app running without Kafka
type mockProducer struct{}

func (m *mockProducer) Publish(ctx context.Context, key string, message interface{}) error {
	logrus.Infof("MOCK: message %s: %v", key, message)
	return nil
}

func (m *mockProducer) Close() error {
	return nil
}
