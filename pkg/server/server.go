// Package server exposes the query surface over HTTP: natural-language
// queries, the approximate invoice count and the date-range lookup.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/invo/pkg/model"
)

// ChatService answers natural-language questions within a session
type ChatService interface {
	Ask(ctx context.Context, sessionID, question string) (string, error)
}

// InvoiceService is the non-conversational query surface
type InvoiceService interface {
	Count(ctx context.Context) (int, error)
	ByDateRange(ctx context.Context, startDate, endDate string) ([]*model.Invoice, error)
}

// New builds the HTTP handler with routing and middleware configured
func New(chatSvc ChatService, invoiceSvc InvoiceService) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(3 * time.Minute))

	h := &handler{
		chat:     chatSvc,
		invoices: invoiceSvc,
	}

	r.Get("/health", h.health)
	r.Post("/query", h.query)
	r.Get("/count", h.count)
	r.Post("/invoices/date-range", h.dateRange)

	return r
}
