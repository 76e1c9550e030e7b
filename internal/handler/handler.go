// Package handler implements the JSON HTTP API over the pricing domain.
package handler

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/acme-basket/internal/domain/basket"
	"github.com/xenking/acme-basket/internal/domain/money"
	"github.com/xenking/acme-basket/internal/domain/offer"
	"github.com/xenking/acme-basket/internal/domain/product"
)

const maxBodyBytes = 1 << 20

// Catalogue is the product lookup the API serves from.
type Catalogue interface {
	basket.Catalogue
	All() []product.Product
}

// Pricing is the shared, read-only configuration every quote is priced with.
type Pricing struct {
	Catalogue Catalogue
	Delivery  basket.DeliveryPolicy
	Offers    []offer.Offer
}

// Handler serves the product and quote endpoints.
type Handler struct {
	pricing Pricing
	tracer  trace.Tracer
	metrics *quoteMetrics
}

// New creates a Handler. Providers may be no-op implementations.
func New(pricing Pricing, tp trace.TracerProvider, mp metric.MeterProvider) (*Handler, error) {
	m, err := newQuoteMetrics(mp.Meter("github.com/xenking/acme-basket/internal/handler"))
	if err != nil {
		return nil, err
	}
	return &Handler{
		pricing: pricing,
		tracer:  tp.Tracer("github.com/xenking/acme-basket/internal/handler"),
		metrics: m,
	}, nil
}

// Register mounts the API routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("GET /api/products/{code}", h.GetProduct)
	mux.HandleFunc("POST /api/baskets/quote", h.Quote)
}

func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func writeError(w http.ResponseWriter, status int, message string) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("code")
	e.Int(status)
	e.FieldStart("message")
	e.Str(message)
	e.ObjEnd()
	writeJSON(w, status, &e)
}

// writeInternal logs err and hides it from the client.
func writeInternal(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("Request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func encodeProduct(e *jx.Encoder, p product.Product) {
	e.ObjStart()
	e.FieldStart("code")
	e.Str(p.Code)
	e.FieldStart("name")
	e.Str(p.Name)
	e.FieldStart("price")
	e.Str(amount(p.Price))
	e.ObjEnd()
}

// amount renders an exact amount with at least two decimal places, so 65.9
// reads "65.90" while 16.475 keeps its third place.
func amount(m money.Money) string {
	places := -m.Decimal().Exponent()
	if places < 2 {
		places = 2
	}
	return m.StringFixed(places)
}
