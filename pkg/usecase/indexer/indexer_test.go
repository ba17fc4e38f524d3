package indexer_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/invo/pkg/adapter"
	"github.com/m-mizutani/invo/pkg/model"
	"github.com/m-mizutani/invo/pkg/usecase/indexer"
	"google.golang.org/genai"
)

type mockEmbedder struct {
	embedded []string
	err      error
}

func (m *mockEmbedder) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return nil, goerr.New("not implemented")
}

func (m *mockEmbedder) Embedding(ctx context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.embedded = append(m.embedded, text)
	return []float32{0.1, 0.2, 0.3}, nil
}

type mockIndex struct {
	upserts [][]*adapter.Vector
	err     error
}

func (m *mockIndex) Query(ctx context.Context, vector []float32, topK int) ([]*model.Fragment, error) {
	return nil, nil
}

func (m *mockIndex) Upsert(ctx context.Context, vectors []*adapter.Vector) error {
	if m.err != nil {
		return m.err
	}
	batch := make([]*adapter.Vector, len(vectors))
	copy(batch, vectors)
	m.upserts = append(m.upserts, batch)
	return nil
}

func (m *mockIndex) Stats(ctx context.Context) (*adapter.IndexStats, error) {
	return &adapter.IndexStats{}, nil
}

func (m *mockIndex) DeleteAll(ctx context.Context) error {
	return nil
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadRecordsArray(t *testing.T) {
	path := writeTemp(t, "invoices.json", `[
		{"invoiceNumber": "1", "companyCode": "MF01"},
		{"invoiceNumber": "2", "companyCode": "ZSYK"}
	]`)

	records, err := indexer.LoadRecords(path)
	gt.NoError(t, err)
	gt.A(t, records).Length(2)
	gt.Equal(t, records[0]["invoiceNumber"], "1")
}

func TestLoadRecordsODataEnvelope(t *testing.T) {
	path := writeTemp(t, "export.json", `{
		"d": {"results": [
			{"DocumentNumber": "5105600001", "CompanyCode": "MF01"}
		]}
	}`)

	records, err := indexer.LoadRecords(path)
	gt.NoError(t, err)
	gt.A(t, records).Length(1)
	gt.Equal(t, records[0]["DocumentNumber"], "5105600001")
}

func TestLoadRecordsRejectsOtherShapes(t *testing.T) {
	path := writeTemp(t, "bad.json", `{"results": []}`)
	_, err := indexer.LoadRecords(path)
	gt.Error(t, err)

	_, err = indexer.LoadRecords(filepath.Join(t.TempDir(), "missing.json"))
	gt.Error(t, err)
}

func TestIndexerRun(t *testing.T) {
	embedder := &mockEmbedder{}
	index := &mockIndex{}
	ix, err := indexer.New(embedder, index)
	gt.NoError(t, err)

	records := []map[string]any{
		{"invoiceNumber": "1", "companyCode": "MF01", "fiscalYear": "2024"},
		{"invoiceNumber": "2", "companyCode": "ZSYK", "fiscalYear": "2024"},
	}

	total, err := ix.Run(context.Background(), records)
	gt.NoError(t, err)
	gt.Equal(t, total, 2)

	gt.A(t, index.upserts).Length(1)
	vectors := index.upserts[0]
	gt.A(t, vectors).Length(2)
	gt.Equal(t, vectors[0].ID, "invoice_1_MF01_2024")
	gt.Equal(t, vectors[1].ID, "invoice_2_ZSYK_2024")

	// Content travels in metadata under "text" for retrieval
	gt.S(t, vectors[0].Metadata["text"]).Contains("Invoice Number: 1")
	gt.Equal(t, vectors[0].Metadata["companyCode"], "MF01")
	gt.A(t, embedder.embedded).Length(2)
}

func TestIndexerRunEmbeddingFailure(t *testing.T) {
	embedder := &mockEmbedder{err: goerr.New("quota exceeded")}
	index := &mockIndex{}
	ix, err := indexer.New(embedder, index)
	gt.NoError(t, err)

	_, err = ix.Run(context.Background(), []map[string]any{{"invoiceNumber": "1"}})
	gt.Error(t, err)
	gt.A(t, index.upserts).Length(0)
}

func TestIndexerNewValidation(t *testing.T) {
	_, err := indexer.New(nil, &mockIndex{})
	gt.Error(t, err)

	_, err = indexer.New(&mockEmbedder{}, nil)
	gt.Error(t, err)
}
