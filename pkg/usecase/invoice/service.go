// Package invoice implements the retrieval-deduplication-aggregation
// pipeline: raw vector-search fragments in, unique countable invoices out.
package invoice

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/invo/pkg/model"
)

// genericQuery is the fixed query used when the caller wants "everything":
// broad enough that the top-K window is filled with invoice chunks.
const genericQuery = "invoice document financial"

// Service exposes the non-conversational query surface over the pipeline
type Service struct {
	retriever *Retriever
}

func New(retriever *Retriever) (*Service, error) {
	if retriever == nil {
		return nil, goerr.New("retriever is required")
	}
	return &Service{retriever: retriever}, nil
}

// Count returns the number of unique invoices reachable through one
// similarity search with the generic query. It is an approximation bounded
// by top-K, not a true index total.
func (s *Service) Count(ctx context.Context) (int, error) {
	fragments, err := s.retriever.Search(ctx, genericQuery)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to retrieve invoices for count")
	}
	return len(Deduplicate(fragments)), nil
}

// ByDateRange retrieves with the generic query, deduplicates and keeps the
// invoices whose document date falls within the inclusive range.
func (s *Service) ByDateRange(ctx context.Context, startDate, endDate string) ([]*model.Invoice, error) {
	fragments, err := s.retriever.Search(ctx, genericQuery)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to retrieve invoices for date range")
	}

	return FilterByDateRange(Deduplicate(fragments), startDate, endDate)
}
