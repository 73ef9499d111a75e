package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-bookstore/internal/domains/inventory/domain"
)

func TestPublisher_RoutesAndKeysEvents(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	publisher := NewPublisher(producer, "", "", nil)
	occurred := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		assert.Equal(t, "bookstore.inventory.stock", msg.Topic)
		key, err := msg.Key.Encode()
		require.NoError(t, err)
		assert.Equal(t, "1573222453", string(key))
		assert.Equal(t, "inventory.stock.received", headerValue(msg, "event-type"))
		assert.NotEmpty(t, headerValue(msg, "event-id"))

		body, err := msg.Value.Encode()
		require.NoError(t, err)
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(body, &decoded))
		assert.Equal(t, float64(4), decoded["quantity"])
		return nil
	})
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		assert.Equal(t, "bookstore.inventory.carts", msg.Topic)
		return nil
	})

	ctx := context.Background()
	require.NoError(t, publisher.Publish(ctx, domain.StockReceived{
		BaseEvent: domain.BaseEvent{Timestamp: occurred},
		ISBN:      "1573222453",
		Quantity:  4,
		OnHand:    4,
	}))
	require.NoError(t, publisher.Publish(ctx, domain.ItemReserved{
		BaseEvent: domain.BaseEvent{Timestamp: occurred},
		Shopper:   "alice",
		ISBN:      "1573222453",
		Quantity:  1,
	}))
	require.NoError(t, publisher.Close())
}

func TestPublisher_ReturnsProducerErrors(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	publisher := NewPublisher(producer, "stock", "carts", nil)
	producer.ExpectSendMessageAndFail(errors.New("leader not available"))

	err := publisher.Publish(context.Background(), domain.StockReduced{ISBN: "1573222453", Quantity: 1})
	require.ErrorContains(t, err, "leader not available")
	require.NoError(t, publisher.Close())
}

func TestPublisher_HonoursCancelledContext(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	publisher := NewPublisher(producer, "stock", "carts", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, publisher.Publish(ctx, domain.StockReduced{ISBN: "1573222453"}), context.Canceled)
	require.NoError(t, publisher.Close())
}

func headerValue(msg *sarama.ProducerMessage, key string) string {
	for _, h := range msg.Headers {
		if string(h.Key) == key {
			return string(h.Value)
		}
	}
	return ""
}
