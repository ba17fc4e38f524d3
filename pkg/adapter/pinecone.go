package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/invo/pkg/model"
)

// VectorIndex is the similarity-search service the retrieval pipeline runs
// against. It is best-effort: no recall or ordering guarantee beyond the
// service's own relevance ranking.
type VectorIndex interface {
	Query(ctx context.Context, vector []float32, topK int) ([]*model.Fragment, error)
	Upsert(ctx context.Context, vectors []*Vector) error
	Stats(ctx context.Context) (*IndexStats, error)
	DeleteAll(ctx context.Context) error
}

// Vector is one record to upsert into the index
type Vector struct {
	ID       string            `json:"id"`
	Values   []float32         `json:"values"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// IndexStats is a subset of the index statistics response
type IndexStats struct {
	Dimension        int
	TotalVectorCount int
	NamespaceCount   int
}

// PineconeClient is a minimal REST client to the Pinecone data plane. It
// speaks to a single index host and namespace fixed at construction.
type PineconeClient struct {
	host      string
	apiKey    string
	namespace string
	client    *http.Client
}

type PineconeConfig struct {
	// Host is the index endpoint, e.g. https://my-index-abc123.svc.pinecone.io
	Host      string
	APIKey    string
	Namespace string
	Timeout   time.Duration
}

func NewPinecone(cfg PineconeConfig) (*PineconeClient, error) {
	if cfg.Host == "" {
		return nil, goerr.New("pinecone host is required")
	}
	if cfg.APIKey == "" {
		return nil, goerr.New("pinecone api key is required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &PineconeClient{
		host:      cfg.Host,
		apiKey:    cfg.APIKey,
		namespace: cfg.Namespace,
		client:    &http.Client{Timeout: timeout},
	}, nil
}

// Query runs a similarity search and maps the matches to fragments. The
// "text" metadata field becomes the fragment content, everything else stays
// in the metadata bag.
func (p *PineconeClient) Query(ctx context.Context, vector []float32, topK int) ([]*model.Fragment, error) {
	if topK <= 0 {
		topK = 50
	}

	req := map[string]any{
		"vector":          vector,
		"topK":            topK,
		"namespace":       p.namespace,
		"includeMetadata": true,
	}

	var resp struct {
		Matches []struct {
			ID       string         `json:"id"`
			Score    float64        `json:"score"`
			Metadata map[string]any `json:"metadata"`
		} `json:"matches"`
	}
	if err := p.postJSON(ctx, "/query", req, &resp); err != nil {
		return nil, goerr.Wrap(err, "pinecone query failed")
	}

	fragments := make([]*model.Fragment, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		frag := &model.Fragment{Metadata: make(map[string]string, len(m.Metadata))}
		for k, v := range m.Metadata {
			if k == "text" {
				frag.Content, _ = v.(string)
				continue
			}
			frag.Metadata[k] = stringifyMetadata(v)
		}
		fragments = append(fragments, frag)
	}

	return fragments, nil
}

func (p *PineconeClient) Upsert(ctx context.Context, vectors []*Vector) error {
	req := map[string]any{
		"vectors":   vectors,
		"namespace": p.namespace,
	}
	if err := p.postJSON(ctx, "/vectors/upsert", req, nil); err != nil {
		return goerr.Wrap(err, "pinecone upsert failed", goerr.V("count", len(vectors)))
	}
	return nil
}

func (p *PineconeClient) Stats(ctx context.Context) (*IndexStats, error) {
	var resp struct {
		Dimension        int `json:"dimension"`
		TotalVectorCount int `json:"totalVectorCount"`
		Namespaces       map[string]struct {
			VectorCount int `json:"vectorCount"`
		} `json:"namespaces"`
	}
	if err := p.postJSON(ctx, "/describe_index_stats", map[string]any{}, &resp); err != nil {
		return nil, goerr.Wrap(err, "pinecone stats failed")
	}

	return &IndexStats{
		Dimension:        resp.Dimension,
		TotalVectorCount: resp.TotalVectorCount,
		NamespaceCount:   len(resp.Namespaces),
	}, nil
}

// DeleteAll wipes every vector in the configured namespace
func (p *PineconeClient) DeleteAll(ctx context.Context) error {
	req := map[string]any{
		"deleteAll": true,
		"namespace": p.namespace,
	}
	if err := p.postJSON(ctx, "/vectors/delete", req, nil); err != nil {
		return goerr.Wrap(err, "pinecone delete failed", goerr.V("namespace", p.namespace))
	}
	return nil
}

func (p *PineconeClient) postJSON(ctx context.Context, path string, reqBody any, respBody any) error {
	data, err := json.Marshal(reqBody)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.host+path, bytes.NewReader(data))
	if err != nil {
		return goerr.Wrap(err, "failed to create request")
	}
	req.Header.Set("Api-Key", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return goerr.Wrap(err, "request failed", goerr.V("path", path))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return goerr.New("unexpected status from pinecone",
			goerr.V("path", path),
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(body)))
	}

	if respBody == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
		return goerr.Wrap(err, "failed to decode response", goerr.V("path", path))
	}
	return nil
}

// stringifyMetadata flattens a JSON metadata value to the string form used
// throughout the pipeline. Pinecone stores numbers as float64.
func stringifyMetadata(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
