package adapter_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/invo/pkg/adapter"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *adapter.PineconeClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := adapter.NewPinecone(adapter.PineconeConfig{
		Host:      srv.URL,
		APIKey:    "test-key",
		Namespace: "invoice-documents",
	})
	gt.NoError(t, err)
	return client
}

func TestPineconeQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gt.Equal(t, r.URL.Path, "/query")
		gt.Equal(t, r.Header.Get("Api-Key"), "test-key")

		var req map[string]any
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gt.Equal(t, req["namespace"], "invoice-documents")
		gt.Equal[any](t, req["topK"], float64(50))
		gt.Equal(t, req["includeMetadata"], true)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"matches": []map[string]any{
				{
					"id":    "invoice_100_MF01_2024",
					"score": 0.92,
					"metadata": map[string]any{
						"text":          "Invoice Number: 100",
						"invoiceNumber": "100",
						"companyCode":   "MF01",
						"fiscalYear":    "2024",
						"amount":        1500.5,
					},
				},
			},
		})
	})

	fragments, err := client.Query(context.Background(), []float32{0.1, 0.2}, 50)
	gt.NoError(t, err)
	gt.A(t, fragments).Length(1)

	frag := fragments[0]
	gt.Equal(t, frag.Content, "Invoice Number: 100")
	gt.Equal(t, frag.Meta("invoiceNumber"), "100")
	gt.Equal(t, frag.Meta("amount"), "1500.5")
	// text is content, not metadata
	gt.Equal(t, frag.Meta("text"), "")
}

func TestPineconeQueryError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "index not found", http.StatusNotFound)
	})

	_, err := client.Query(context.Background(), []float32{0.1}, 10)
	gt.Error(t, err)
	gt.S(t, err.Error()).Contains("pinecone query failed")
}

func TestPineconeUpsert(t *testing.T) {
	var got struct {
		Vectors []struct {
			ID       string            `json:"id"`
			Values   []float32         `json:"values"`
			Metadata map[string]string `json:"metadata"`
		} `json:"vectors"`
		Namespace string `json:"namespace"`
	}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gt.Equal(t, r.URL.Path, "/vectors/upsert")
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{"upsertedCount": len(got.Vectors)})
	})

	err := client.Upsert(context.Background(), []*adapter.Vector{
		{
			ID:       "invoice_100_MF01_2024",
			Values:   []float32{0.1, 0.2},
			Metadata: map[string]string{"invoiceNumber": "100"},
		},
	})
	gt.NoError(t, err)
	gt.A(t, got.Vectors).Length(1)
	gt.Equal(t, got.Vectors[0].ID, "invoice_100_MF01_2024")
	gt.Equal(t, got.Namespace, "invoice-documents")
}

func TestPineconeStats(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gt.Equal(t, r.URL.Path, "/describe_index_stats")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"dimension":        512,
			"totalVectorCount": 1234,
			"namespaces": map[string]any{
				"invoice-documents": map[string]any{"vectorCount": 1234},
			},
		})
	})

	stats, err := client.Stats(context.Background())
	gt.NoError(t, err)
	gt.Equal(t, stats.Dimension, 512)
	gt.Equal(t, stats.TotalVectorCount, 1234)
	gt.Equal(t, stats.NamespaceCount, 1)
}

func TestPineconeDeleteAll(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gt.Equal(t, r.URL.Path, "/vectors/delete")
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{})
	})

	gt.NoError(t, client.DeleteAll(context.Background()))
	gt.Equal(t, got["deleteAll"], true)
	gt.Equal(t, got["namespace"], "invoice-documents")
}

func TestPineconeConfigValidation(t *testing.T) {
	_, err := adapter.NewPinecone(adapter.PineconeConfig{APIKey: "k"})
	gt.Error(t, err)

	_, err = adapter.NewPinecone(adapter.PineconeConfig{Host: "https://example.test"})
	gt.Error(t, err)
}
