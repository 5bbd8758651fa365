package kafka

import (
	"context"
	"log/slog"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/twmb/franz-go/pkg/kgo"
)

var _ port.CartEventsProducer = (*CartEventsProducer)(nil)

// A CartEventsProducer writes [domain.CartEvent] records keyed by session id,
// so events of one cart keep their order within a partition.
type CartEventsProducer struct {
	cl       ProducerClient
	encoder  Encoder
	opPrefix string
}

// NewCartEventsProducer requires a client option and [ProducerEncoderOpt].
func NewCartEventsProducer(
	opts ...ProducerOpt,
) (CartEventsProducer, error) {
	const op = "NewCartEventsProducer"

	if len(opts) != 2 {
		panic(opErr(ErrTooFewOpts, op)) // develop mistake
	}

	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return CartEventsProducer{}, opErr(err, op)
		}
	}

	if options.cl == nil || options.encoder == nil {
		panic(opErr(ErrTooFewOpts, op)) // develop mistake
	}

	return CartEventsProducer{
		cl:       options.cl,
		encoder:  options.encoder,
		opPrefix: "CartEventsProducer",
	}, nil
}

// flushTimeout bounds how long Close waits for buffered records.
const flushTimeout = 5 * time.Second

func (p CartEventsProducer) Close() {
	const op = "Close"
	log := slog.With("op", makeOp(p.opPrefix, op))
	log.Info("closing producer...")

	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := p.cl.Flush(ctx); err != nil {
		log.Warn("buffered cart events are dropped", "err", err)
	}

	p.cl.Close()
	log.Info("producer is closed")
}

// ProduceCartEvent buffers evt and returns without waiting for the broker.
// Delivery failures, a full buffer included, are logged by the promise.
// The record outlives ctx cancellation.
func (p CartEventsProducer) ProduceCartEvent(
	ctx context.Context, evt domain.CartEvent,
) error {
	const op = "ProduceCartEvent"

	if err := ctx.Err(); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	r, err := p.createRecord(evt)
	if err != nil {
		return opErr(err, p.opPrefix, op)
	}

	p.cl.TryProduce(context.WithoutCancel(ctx), r, p.logFailure)
	return nil
}

func (p CartEventsProducer) logFailure(r *kgo.Record, err error) {
	if err == nil {
		return
	}
	slog.Warn("failed to deliver cart event",
		"op", makeOp(p.opPrefix, "ProduceCartEvent"),
		"session", string(r.Key),
		"err", err,
	)
}

func (p CartEventsProducer) createRecord(
	evt domain.CartEvent,
) (*kgo.Record, error) {
	const op = "createRecord"

	s := cartEventToSchemaV1(evt)
	b, err := p.encoder.Encode(s)
	if err != nil {
		return nil, opErr(err, p.opPrefix, op)
	}

	return &kgo.Record{
		Key:       []byte(s.SessionID),
		Value:     b,
		Timestamp: evt.OccurredAt,
		Headers: []kgo.RecordHeader{
			{Key: "kind", Value: []byte(s.Kind)},
		},
	}, nil
}
