package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/resilience"
)

type sample struct {
	DocumentID string `json:"document_id"`
	Count      int    `json:"count"`
}

func TestDecodeJSON(t *testing.T) {
	got, err := DecodeJSON[sample]([]byte(`{"document_id":"d1","count":3}`))
	require.NoError(t, err)
	assert.Equal(t, sample{DocumentID: "d1", Count: 3}, got)

	_, err = DecodeJSON[sample]([]byte(`{"document_id":`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding kafka message")
}

func TestEncode(t *testing.T) {
	msgs, err := encode([]Event{
		{Key: "d1", Value: sample{DocumentID: "d1", Count: 1}},
		{Key: "d2", Value: map[string]int{"n": 2}},
	})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "d1", string(msgs[0].Key))
	assert.JSONEq(t, `{"document_id":"d1","count":1}`, string(msgs[0].Value))
	assert.JSONEq(t, `{"n":2}`, string(msgs[1].Value))

	_, err = encode([]Event{{Key: "bad", Value: make(chan int)}})
	require.Error(t, err)
}

func testConsumer(handler MessageHandler) *Consumer {
	return &Consumer{
		logger:  logger.WithComponent("kafka-consumer"),
		handler: handler,
		retry: resilience.RetryConfig{
			MaxAttempts:  2,
			InitialDelay: time.Millisecond,
			MaxDelay:     time.Millisecond,
		},
	}
}

func TestProcessRetriesSameMessageUntilSuccess(t *testing.T) {
	var keys []string
	calls := 0
	c := testConsumer(func(_ context.Context, key, _ []byte) error {
		calls++
		keys = append(keys, string(key))
		if calls < 5 {
			return errors.New("store unavailable")
		}
		return nil
	})

	msg := kafka.Message{Key: []byte("doc-10"), Value: []byte(`{}`), Offset: 10}
	require.NoError(t, c.process(context.Background(), msg))
	// Five calls span three retry rounds and all see the same message.
	assert.Equal(t, 5, calls)
	for _, k := range keys {
		assert.Equal(t, "doc-10", k)
	}
}

func TestProcessStopsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	c := testConsumer(func(context.Context, []byte, []byte) error {
		calls++
		if calls == 3 {
			cancel()
		}
		return errors.New("broker down")
	})

	err := c.process(ctx, kafka.Message{Key: []byte("d1")})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, calls)
}
