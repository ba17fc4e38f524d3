// Package indexer loads invoice JSON exports, prepares embeddable
// documents and upserts them into the vector index.
package indexer

import (
	"context"
	"encoding/json"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/invo/pkg/adapter"
	"github.com/m-mizutani/invo/pkg/utils/logging"
)

// upsertBatchSize bounds one upsert request
const upsertBatchSize = 100

type Indexer struct {
	gemini adapter.Gemini
	index  adapter.VectorIndex

	chunkSize int
	chunking  bool
}

type Option func(*Indexer)

// WithoutChunking disables splitting of long documents
func WithoutChunking() Option {
	return func(ix *Indexer) {
		ix.chunking = false
	}
}

// WithChunkSize overrides the maximum characters per chunk
func WithChunkSize(size int) Option {
	return func(ix *Indexer) {
		if size > 0 {
			ix.chunkSize = size
		}
	}
}

func New(gemini adapter.Gemini, index adapter.VectorIndex, opts ...Option) (*Indexer, error) {
	if gemini == nil {
		return nil, goerr.New("gemini adapter is required")
	}
	if index == nil {
		return nil, goerr.New("vector index is required")
	}

	ix := &Indexer{
		gemini:    gemini,
		index:     index,
		chunkSize: defaultChunkSize,
		chunking:  true,
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix, nil
}

// LoadRecords reads an invoice JSON export. Both a bare array and the OData
// envelope {"d": {"results": [...]}} are accepted.
func LoadRecords(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read invoice file", goerr.V("path", path))
	}

	var records []map[string]any
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	var envelope struct {
		D struct {
			Results []map[string]any `json:"results"`
		} `json:"d"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, goerr.Wrap(err, "invoice file is neither a JSON array nor an OData envelope", goerr.V("path", path))
	}
	if envelope.D.Results == nil {
		return nil, goerr.New("no invoice records found in file", goerr.V("path", path))
	}

	return envelope.D.Results, nil
}

// Run prepares documents from the records, optionally chunks them, embeds
// each chunk and upserts everything into the index. Returns the number of
// vectors written.
func (ix *Indexer) Run(ctx context.Context, records []map[string]any) (int, error) {
	logger := logging.From(ctx)

	docs := make([]*Document, 0, len(records))
	for _, record := range records {
		docs = append(docs, NewDocument(record))
	}

	if ix.chunking {
		docs = ChunkDocuments(docs, ix.chunkSize)
	}
	logger.Info("prepared documents", "records", len(records), "documents", len(docs))

	batch := make([]*adapter.Vector, 0, upsertBatchSize)
	total := 0
	for _, doc := range docs {
		values, err := ix.gemini.Embedding(ctx, doc.Content)
		if err != nil {
			return total, goerr.Wrap(err, "failed to embed document", goerr.V("id", doc.ID))
		}

		metadata := make(map[string]string, len(doc.Metadata)+1)
		for k, v := range doc.Metadata {
			metadata[k] = v
		}
		metadata["text"] = doc.Content

		batch = append(batch, &adapter.Vector{
			ID:       doc.ID,
			Values:   values,
			Metadata: metadata,
		})

		if len(batch) == upsertBatchSize {
			if err := ix.index.Upsert(ctx, batch); err != nil {
				return total, err
			}
			total += len(batch)
			logger.Info("upserted batch", "total", total)
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := ix.index.Upsert(ctx, batch); err != nil {
			return total, err
		}
		total += len(batch)
	}

	logger.Info("indexing completed", "vectors", total)
	return total, nil
}
