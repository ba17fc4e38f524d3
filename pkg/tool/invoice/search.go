// Package invoice provides the single retrieval tool exposed to the agent:
// similarity search over the invoice index, deduplicated and pre-aggregated
// into a structured report.
package invoice

import (
	"context"
	"fmt"

	"github.com/m-mizutani/invo/pkg/usecase/invoice"
	"github.com/m-mizutani/invo/pkg/utils/logging"
	"google.golang.org/genai"
)

// ToolName is the function-call name registered with the agent
const ToolName = "search_invoice_documents"

// SearchInvoices wraps retrieval, dedup and aggregation as one agent tool
type SearchInvoices struct {
	retriever *invoice.Retriever
}

func NewSearchInvoices(retriever *invoice.Retriever) *SearchInvoices {
	return &SearchInvoices{retriever: retriever}
}

func (s *SearchInvoices) Spec() *genai.Tool {
	return &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        ToolName,
				Description: "Search SAP invoice documents and return summarized results. Each invoice may appear as multiple chunks - automatically deduplicates by ID field. Use this to find invoices, count totals, or filter by criteria. Returns ALL matching invoices with full details.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"query": {
							Type:        genai.TypeString,
							Description: "Free-text search query describing the invoices to find",
						},
					},
					Required: []string{"query"},
				},
			},
		},
	}
}

// Execute runs the retrieval pipeline. It never returns an error: upstream
// failures become a human-readable result string so the agent can relay the
// problem instead of aborting the turn.
func (s *SearchInvoices) Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error) {
	query, _ := fc.Args["query"].(string)
	if query == "" {
		return response(fc.Name, "Error: query parameter is required"), nil
	}

	fragments, err := s.retriever.Search(ctx, query)
	if err != nil {
		logging.From(ctx).Warn("invoice retrieval failed", "error", err, "query", query)
		return response(fc.Name, fmt.Sprintf("Error: invoice search failed: %v", err)), nil
	}

	report := invoice.Summarize(invoice.Deduplicate(fragments))
	logging.From(ctx).Debug("invoice search completed",
		"query", query,
		"fragments", len(fragments))

	return response(fc.Name, report), nil
}

func (s *SearchInvoices) Prompt(ctx context.Context) string {
	return ""
}

func response(name, result string) *genai.FunctionResponse {
	return &genai.FunctionResponse{
		Name:     name,
		Response: map[string]any{"result": result},
	}
}
