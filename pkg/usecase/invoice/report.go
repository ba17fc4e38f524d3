package invoice

import (
	"fmt"
	"sort"
	"strings"

	"github.com/m-mizutani/invo/pkg/model"
)

// NoInvoicesFound is returned by Summarize for an empty invoice set
const NoInvoicesFound = "No invoices found matching your query."

// Summarize renders a deduplicated invoice set as the structured report the
// agent is prompted to read. The layout is load-bearing: the system prompt
// instructs the model to answer counting and filtering questions from the
// breakdown sections rather than counting list lines itself.
func Summarize(invoices []*model.Invoice) string {
	if len(invoices) == 0 {
		return NoInvoicesFound
	}

	byYear := make(map[string]int)
	byCompany := make(map[string]int)
	byDocType := make(map[string]int)
	for _, inv := range invoices {
		byYear[orDefault(inv.FiscalYear, "Unknown")]++
		byCompany[orDefault(inv.CompanyCode, "N/A")]++
		byDocType[orDefault(inv.DocumentType, "N/A")]++
	}

	var b strings.Builder
	fmt.Fprintf(&b, "TOTAL: %d unique invoices found.\n\n", len(invoices))

	b.WriteString("Breakdown by Fiscal Year:\n")
	for _, fy := range sortedKeys(byYear) {
		fmt.Fprintf(&b, "  FY%s: %d invoices\n", fy, byYear[fy])
	}

	fmt.Fprintf(&b, "\nComplete List of All %d Invoices:\n", len(invoices))
	for i, inv := range invoices {
		docDate := orDefault(inv.DocumentDateConverted, orDefault(inv.DocumentDate, "N/A"))
		postDate := orDefault(inv.PostingDateConverted, orDefault(inv.PostingDate, "N/A"))
		fmt.Fprintf(&b, "%d. #%s | %s | FY%s | DocDate:%s | PostDate:%s | Amt:%s %s | Type:%s | Ref:%s | Updated:%s\n",
			i+1,
			inv.InvoiceNumber,
			inv.CompanyCode,
			inv.FiscalYear,
			docDate,
			postDate,
			orDefault(inv.Amount, "0"),
			orDefault(inv.Currency, "USD"),
			orDefault(inv.DocumentType, "N/A"),
			orDefault(inv.Reference, "N/A"),
			orDefault(inv.ExtraField("lastUpdated"), "N/A"),
		)
	}

	b.WriteString("\n\nCompany Breakdown: ")
	b.WriteString(formatBreakdown(byCompany))
	b.WriteString("\nDocument Type Breakdown: ")
	b.WriteString(formatBreakdown(byDocType))

	return b.String()
}

// formatBreakdown renders count-by-category pairs as "KEY(count)" sorted by
// key ascending, comma separated
func formatBreakdown(counts map[string]int) string {
	parts := make([]string, 0, len(counts))
	for _, k := range sortedKeys(counts) {
		parts = append(parts, fmt.Sprintf("%s(%d)", k, counts[k]))
	}
	return strings.Join(parts, ", ")
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
