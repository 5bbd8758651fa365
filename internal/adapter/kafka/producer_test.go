package kafka_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/niksmo/storefront/internal/adapter/kafka"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

type MockProducerClient struct {
	mock.Mock
}

// TryProduce completes the promise in place with the configured error.
func (c *MockProducerClient) TryProduce(
	ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error),
) {
	args := c.Called(ctx, r)
	promise(r, args.Error(0))
}

func (c *MockProducerClient) Flush(ctx context.Context) error {
	args := c.Called(ctx)
	return args.Error(0)
}

func (c *MockProducerClient) Close() {
	c.Called()
}

type MockEncoder struct {
	mock.Mock
}

func (e *MockEncoder) Encode(v any) ([]byte, error) {
	args := e.Called(v)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

var occurredAt = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func cartEvent() domain.CartEvent {
	return domain.CartEvent{
		SessionID:  "6f1c2a",
		Kind:       domain.CartItemAdded,
		ProductID:  1,
		Size:       "M",
		Color:      "Black",
		Quantity:   2,
		UnitPrice:  9.99,
		CartItems:  2,
		CartTotal:  19.98,
		OccurredAt: occurredAt,
	}
}

func TestNewCartEventsProducer(t *testing.T) {
	t.Run("TooFewOpts", func(t *testing.T) {
		assert.Panics(t, func() {
			kafka.NewCartEventsProducer(
				kafka.ProducerEncoderOpt(new(MockEncoder)),
			)
		})
	})

	t.Run("NilEncoder", func(t *testing.T) {
		_, err := kafka.NewCartEventsProducer(
			kafka.ProducerRawClientOpt(new(MockProducerClient)),
			kafka.ProducerEncoderOpt(nil),
		)
		require.Error(t, err)
	})

	t.Run("NoBrokers", func(t *testing.T) {
		_, err := kafka.NewCartEventsProducer(
			kafka.ProducerClientOpt(t.Context(), nil, "cart-events", nil),
			kafka.ProducerEncoderOpt(new(MockEncoder)),
		)
		require.Error(t, err)
	})
}

func TestProduceCartEvent(t *testing.T) {
	t.Run("Ordinary", func(t *testing.T) {
		cl := new(MockProducerClient)
		encoder := new(MockEncoder)

		want := schema.CartEventV1{
			SessionID:    "6f1c2a",
			Kind:         "added",
			ProductID:    1,
			Size:         "M",
			Color:        "Black",
			Quantity:     2,
			UnitPrice:    9.99,
			CartItems:    2,
			CartTotal:    19.98,
			OccurredAtMs: occurredAt.UnixMilli(),
		}
		encoder.On("Encode", want).Return([]byte("payload"), nil)

		var produced []*kgo.Record
		cl.On("TryProduce", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				produced = append(produced, args.Get(1).(*kgo.Record))
			}).
			Return(nil)

		p, err := kafka.NewCartEventsProducer(
			kafka.ProducerRawClientOpt(cl),
			kafka.ProducerEncoderOpt(encoder),
		)
		require.NoError(t, err)

		require.NoError(t, p.ProduceCartEvent(t.Context(), cartEvent()))
		require.Len(t, produced, 1)
		assert.Equal(t, []byte("6f1c2a"), produced[0].Key)
		assert.Equal(t, []byte("payload"), produced[0].Value)
		assert.Equal(t, occurredAt, produced[0].Timestamp)
		assert.Equal(t, []kgo.RecordHeader{
			{Key: "kind", Value: []byte("added")},
		}, produced[0].Headers)
		encoder.AssertExpectations(t)
		cl.AssertExpectations(t)
	})

	t.Run("EncodeError", func(t *testing.T) {
		cl := new(MockProducerClient)
		encoder := new(MockEncoder)
		encoder.On("Encode", mock.Anything).Return(nil, errors.New("bad value"))

		p, err := kafka.NewCartEventsProducer(
			kafka.ProducerRawClientOpt(cl),
			kafka.ProducerEncoderOpt(encoder),
		)
		require.NoError(t, err)

		assert.Error(t, p.ProduceCartEvent(t.Context(), cartEvent()))
		cl.AssertNotCalled(t, "TryProduce", mock.Anything, mock.Anything)
	})

	t.Run("DeliveryErrorIsNotReturned", func(t *testing.T) {
		cl := new(MockProducerClient)
		encoder := new(MockEncoder)
		encoder.On("Encode", mock.Anything).Return([]byte("payload"), nil)
		cl.On("TryProduce", mock.Anything, mock.Anything).
			Return(errors.New("not enough replicas")).Once()

		p, err := kafka.NewCartEventsProducer(
			kafka.ProducerRawClientOpt(cl),
			kafka.ProducerEncoderOpt(encoder),
		)
		require.NoError(t, err)

		assert.NoError(t, p.ProduceCartEvent(t.Context(), cartEvent()))
		cl.AssertExpectations(t)
	})

	t.Run("RecordOutlivesRequest", func(t *testing.T) {
		cl := new(MockProducerClient)
		encoder := new(MockEncoder)
		encoder.On("Encode", mock.Anything).Return([]byte("payload"), nil)

		ctx, cancel := context.WithCancel(t.Context())
		var recordCtx context.Context
		cl.On("TryProduce", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				recordCtx = args.Get(0).(context.Context)
			}).
			Return(nil)

		p, err := kafka.NewCartEventsProducer(
			kafka.ProducerRawClientOpt(cl),
			kafka.ProducerEncoderOpt(encoder),
		)
		require.NoError(t, err)

		require.NoError(t, p.ProduceCartEvent(ctx, cartEvent()))
		cancel()
		require.NotNil(t, recordCtx)
		assert.NoError(t, recordCtx.Err())
	})

	t.Run("CanceledContext", func(t *testing.T) {
		cl := new(MockProducerClient)
		encoder := new(MockEncoder)

		p, err := kafka.NewCartEventsProducer(
			kafka.ProducerRawClientOpt(cl),
			kafka.ProducerEncoderOpt(encoder),
		)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		err = p.ProduceCartEvent(ctx, cartEvent())
		assert.ErrorIs(t, err, context.Canceled)
		encoder.AssertNotCalled(t, "Encode", mock.Anything)
	})
}

func TestCartEventsProducerClose(t *testing.T) {
	t.Run("FlushesBeforeClose", func(t *testing.T) {
		cl := new(MockProducerClient)
		var calls []string
		cl.On("Flush", mock.Anything).
			Run(func(mock.Arguments) { calls = append(calls, "Flush") }).
			Return(nil).Once()
		cl.On("Close").
			Run(func(mock.Arguments) { calls = append(calls, "Close") }).
			Once()

		p, err := kafka.NewCartEventsProducer(
			kafka.ProducerRawClientOpt(cl),
			kafka.ProducerEncoderOpt(new(MockEncoder)),
		)
		require.NoError(t, err)

		p.Close()
		cl.AssertExpectations(t)
		assert.Equal(t, []string{"Flush", "Close"}, calls)
	})

	t.Run("FlushTimeout", func(t *testing.T) {
		cl := new(MockProducerClient)
		cl.On("Flush", mock.Anything).Return(context.DeadlineExceeded).Once()
		cl.On("Close").Once()

		p, err := kafka.NewCartEventsProducer(
			kafka.ProducerRawClientOpt(cl),
			kafka.ProducerEncoderOpt(new(MockEncoder)),
		)
		require.NoError(t, err)

		p.Close()
		cl.AssertExpectations(t)
	})
}
