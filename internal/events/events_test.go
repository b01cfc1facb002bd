package events

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	require.NoError(t, r.Publish(context.Background(), TopicOrders, "o1", New(OrderCreated, nil)))
	require.NoError(t, r.Publish(context.Background(), TopicProducts, "p1", New(ProductCreated, nil)))

	assert.Equal(t, []string{OrderCreated}, r.Types(TopicOrders))
	assert.Len(t, r.Events(), 2)

	r.Err = errors.New("broker down")
	assert.Error(t, r.Publish(context.Background(), TopicOrders, "o2", New(OrderCancelled, nil)))
	assert.Len(t, r.Events(), 3)

	assert.NoError(t, Nop{}.Publish(context.Background(), TopicUsers, "", New(UserRegistered, nil)))
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer(nil)
	assert.Error(t, err)
}

func TestProducer_Kafka(t *testing.T) {
	brokers := os.Getenv("KAFKA_TEST_BROKERS")
	if brokers == "" {
		t.Skip("KAFKA_TEST_BROKERS is required for kafka tests")
	}
	addr := strings.Split(brokers, ",")[0]
	topic := "order_events_test"
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	p, err := NewProducer(strings.Split(brokers, ","))
	require.NoError(t, err)
	defer p.Close()

	key := uuid.NewString()
	require.NoError(t, p.Publish(ctx, topic, key, New(OrderCreated, map[string]string{"id": key})))

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{addr},
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})
	defer r.Close()
	require.NoError(t, r.SetOffset(kafka.FirstOffset))

	for {
		msg, err := r.ReadMessage(ctx)
		require.NoError(t, err)
		if string(msg.Key) != key {
			continue
		}
		var ev Event
		require.NoError(t, json.Unmarshal(msg.Value, &ev))
		assert.Equal(t, OrderCreated, ev.Type)
		return
	}
}
