package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/xenking/acme-basket/internal/domain/basket"
)

// Quote outcomes recorded on the basket.quotes counter.
const (
	outcomeOK       = "ok"
	outcomeInvalid  = "invalid"
	outcomeNotFound = "not_found"
	outcomeError    = "error"
)

type quoteMetrics struct {
	quotes metric.Int64Counter
	items  metric.Int64Histogram
	totals metric.Float64Histogram
}

func newQuoteMetrics(meter metric.Meter) (*quoteMetrics, error) {
	quotes, err := meter.Int64Counter("basket.quotes",
		metric.WithDescription("Basket quotes by outcome"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "quotes counter")
	}
	items, err := meter.Int64Histogram("basket.items",
		metric.WithDescription("Items per quoted basket"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "items histogram")
	}
	totals, err := meter.Float64Histogram("basket.total",
		metric.WithDescription("Quoted basket totals"),
		metric.WithUnit("USD"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "totals histogram")
	}
	return &quoteMetrics{quotes: quotes, items: items, totals: totals}, nil
}

func (m *quoteMetrics) record(ctx context.Context, outcome string) {
	m.quotes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// decodeQuoteRequest reads {"items":["R01", ...]}. A missing items field is an
// empty basket.
func decodeQuoteRequest(data []byte) ([]string, error) {
	var codes []string
	err := jx.DecodeBytes(data).ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "items":
			return d.Arr(func(d *jx.Decoder) error {
				code, err := d.Str()
				if err != nil {
					return errors.Wrap(err, "item code")
				}
				codes = append(codes, code)
				return nil
			})
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return nil, err
	}
	return codes, nil
}

// Quote prices the posted item codes with a fresh basket.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "basket.Quote")
	defer span.End()

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.metrics.record(ctx, outcomeInvalid)
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	codes, err := decodeQuoteRequest(data)
	if err != nil {
		h.metrics.record(ctx, outcomeInvalid)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	span.SetAttributes(attribute.Int("basket.items", len(codes)))

	b := basket.New(h.pricing.Catalogue, h.pricing.Delivery, h.pricing.Offers)
	for _, code := range codes {
		if err := b.Add(code); err != nil {
			var notFound *basket.ProductNotFoundError
			if errors.As(err, &notFound) {
				h.metrics.record(ctx, outcomeNotFound)
				span.SetAttributes(attribute.String("basket.unknown_code", notFound.Code))
				writeError(w, http.StatusUnprocessableEntity, notFound.Error())
				return
			}
			h.fail(ctx, w, r, span, err)
			return
		}
	}

	q, err := b.Quote()
	if err != nil {
		h.fail(ctx, w, r, span, errors.Wrap(err, "price basket"))
		return
	}

	h.metrics.record(ctx, outcomeOK)
	h.metrics.items.Record(ctx, int64(len(q.Items)))
	h.metrics.totals.Record(ctx, q.Total.Decimal().InexactFloat64())
	span.SetAttributes(attribute.String("basket.total", q.Total.String()))

	var e jx.Encoder
	encodeQuote(&e, q)
	writeJSON(w, http.StatusOK, &e)
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, r *http.Request, span trace.Span, err error) {
	h.metrics.record(ctx, outcomeError)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	writeInternal(w, r.WithContext(ctx), err)
}

func encodeQuote(e *jx.Encoder, q *basket.Quote) {
	e.ObjStart()
	e.FieldStart("items")
	e.ArrStart()
	for _, p := range q.Items {
		encodeProduct(e, p)
	}
	e.ArrEnd()
	e.FieldStart("subtotal")
	e.Str(amount(q.Subtotal))
	e.FieldStart("discount")
	e.Str(amount(q.Discount))
	e.FieldStart("delivery")
	e.Str(amount(q.Delivery))
	e.FieldStart("total")
	e.Str(q.Total.StringFixed(2))
	e.FieldStart("offers")
	e.ArrStart()
	for _, o := range q.Offers {
		e.Str(o.Name())
	}
	e.ArrEnd()
	e.ObjEnd()
}
