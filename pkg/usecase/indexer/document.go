package indexer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Document is one embeddable unit: the text content plus the flat metadata
// that travels with it into the vector index
type Document struct {
	ID       string
	Content  string
	Metadata map[string]string
}

// Invoice exports come from the OData service with either camelCase or SAP
// PascalCase field names; both are accepted.
var fieldAliases = map[string][]string{
	"invoiceNumber": {"invoiceNumber", "DocumentNumber"},
	"companyCode":   {"companyCode", "CompanyCode"},
	"fiscalYear":    {"fiscalYear", "FiscalYear"},
	"amount":        {"amount", "Amount"},
	"currency":      {"currency", "Currency"},
	"documentDate":  {"documentDate", "DocumentDate"},
	"postingDate":   {"postingDate", "PostingDate"},
	"documentType":  {"documentType", "DocumentType"},
	"reference":     {"reference", "Reference"},
	"businessArea":  {"businessArea", "BusinessArea"},
}

func pick(record map[string]any, key string) string {
	for _, alias := range fieldAliases[key] {
		if v, ok := record[alias]; ok {
			return scalarString(v)
		}
	}
	return ""
}

// NewDocument builds the embedding text and metadata for one raw invoice
// record, mirroring the layout the retrieval pipeline expects
func NewDocument(record map[string]any) *Document {
	invoiceNumber := orUnknown(pick(record, "invoiceNumber"))
	companyCode := orUnknown(pick(record, "companyCode"))
	fiscalYear := orUnknown(pick(record, "fiscalYear"))
	amount := pick(record, "amount")
	if amount == "" {
		amount = "0"
	}
	currency := pick(record, "currency")
	if currency == "" {
		currency = "USD"
	}

	metadata := map[string]string{
		"invoiceNumber": invoiceNumber,
		"companyCode":   companyCode,
		"fiscalYear":    fiscalYear,
		"amount":        amount,
		"currency":      currency,
		"documentDate":  pick(record, "documentDate"),
		"postingDate":   pick(record, "postingDate"),
		"documentType":  pick(record, "documentType"),
		"reference":     pick(record, "reference"),
		"businessArea":  pick(record, "businessArea"),
		"source":        "SAP_S4HANA",
	}

	var content strings.Builder
	fmt.Fprintf(&content, "Invoice Number: %s\n", invoiceNumber)
	fmt.Fprintf(&content, "Company Code: %s\n", companyCode)
	fmt.Fprintf(&content, "Fiscal Year: %s\n", fiscalYear)
	fmt.Fprintf(&content, "Document Type: %s\n", metadata["documentType"])
	fmt.Fprintf(&content, "Amount: %s %s\n", amount, currency)
	fmt.Fprintf(&content, "Document Date: %s\n", metadata["documentDate"])
	fmt.Fprintf(&content, "Posting Date: %s\n", metadata["postingDate"])
	fmt.Fprintf(&content, "Business Area: %s\n", metadata["businessArea"])
	fmt.Fprintf(&content, "Reference: %s", metadata["reference"])

	// Longer free-text fields enrich the embedding; scalar extras only
	// travel as metadata. Keys are sorted for deterministic content.
	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := record[k]
		switch v.(type) {
		case map[string]any, []any:
			continue
		}
		sv := scalarString(v)
		if _, known := metadata[k]; !known {
			metadata[k] = sv
		}
		if s, ok := v.(string); ok && len(s) > 10 && !isCoreField(k) {
			fmt.Fprintf(&content, "\n%s: %s", k, s)
		}
	}

	id := fmt.Sprintf("invoice_%s_%s_%s", invoiceNumber, companyCode, fiscalYear)
	metadata["ID"] = id

	return &Document{
		ID:       id,
		Content:  content.String(),
		Metadata: metadata,
	}
}

func isCoreField(key string) bool {
	switch key {
	case "invoiceNumber", "companyCode", "fiscalYear", "documentDate",
		"postingDate", "documentType", "reference", "businessArea":
		return true
	}
	return false
}

func orUnknown(v string) string {
	if v == "" {
		return "Unknown"
	}
	return v
}

func scalarString(v any) string {
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
