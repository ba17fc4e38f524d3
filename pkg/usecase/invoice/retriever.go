package invoice

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/invo/pkg/adapter"
	"github.com/m-mizutani/invo/pkg/model"
)

// DefaultTopK bounds every similarity search. The pipeline can never see
// more candidate fragments than this per query.
const DefaultTopK = 50

const retrievalTimeout = 30 * time.Second

// Retriever turns a free-text query into fragments: embed the query, then
// similarity-search the vector index with a fixed top-K.
type Retriever struct {
	gemini adapter.Gemini
	index  adapter.VectorIndex
	topK   int
}

func NewRetriever(gemini adapter.Gemini, index adapter.VectorIndex, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{
		gemini: gemini,
		index:  index,
		topK:   topK,
	}
}

func (r *Retriever) Search(ctx context.Context, query string) ([]*model.Fragment, error) {
	ctx, cancel := context.WithTimeout(ctx, retrievalTimeout)
	defer cancel()

	vector, err := r.gemini.Embedding(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query", goerr.V("query", query))
	}

	fragments, err := r.index.Query(ctx, vector, r.topK)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query vector index")
	}

	return fragments, nil
}
