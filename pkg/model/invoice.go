package model

import "strings"

// InvoiceID is the composite business identity of an invoice:
// invoiceNumber, companyCode and fiscalYear joined by "_". Fragments of the
// same logical invoice share the same InvoiceID.
type InvoiceID string

// NewInvoiceID builds the composite identity from its three parts
func NewInvoiceID(invoiceNumber, companyCode, fiscalYear string) InvoiceID {
	return InvoiceID(strings.Join([]string{invoiceNumber, companyCode, fiscalYear}, "_"))
}

// Fragment is one chunk returned by the vector index: the embedded text plus
// the flat metadata bag attached at indexing time. A single invoice may be
// split across several fragments.
type Fragment struct {
	Content  string
	Metadata map[string]string
}

// Meta returns the metadata value for key, or an empty string if absent
func (f *Fragment) Meta(key string) string {
	if f.Metadata == nil {
		return ""
	}
	return f.Metadata[key]
}

// Invoice is the canonical record for one InvoiceID, built from the first
// fragment seen with that identity. Raw SAP date strings are kept under
// their original names next to the converted YYYY-MM-DD fields.
type Invoice struct {
	ID InvoiceID `json:"ID"`

	InvoiceNumber string `json:"invoiceNumber"`
	CompanyCode   string `json:"companyCode"`
	FiscalYear    string `json:"fiscalYear"`

	Amount       string `json:"amount,omitempty"`
	Currency     string `json:"currency,omitempty"`
	DocumentType string `json:"documentType,omitempty"`
	Reference    string `json:"reference,omitempty"`
	BusinessArea string `json:"businessArea,omitempty"`

	DocumentDate string `json:"documentDate,omitempty"`
	PostingDate  string `json:"postingDate,omitempty"`
	LastChanged  string `json:"lastChanged,omitempty"`

	DocumentDateConverted string `json:"documentDateConverted,omitempty"`
	PostingDateConverted  string `json:"postingDateConverted,omitempty"`
	LastChangedConverted  string `json:"lastChangedConverted,omitempty"`

	Text string `json:"text,omitempty"`

	// Extra holds passthrough metadata fields that have no typed slot above
	Extra map[string]string `json:"extra,omitempty"`
}

// knownMetadataKeys are the metadata fields mapped to typed Invoice fields.
// Everything else lands in Extra.
var knownMetadataKeys = map[string]bool{
	"ID":            true,
	"invoiceNumber": true,
	"companyCode":   true,
	"fiscalYear":    true,
	"amount":        true,
	"currency":      true,
	"documentType":  true,
	"reference":     true,
	"businessArea":  true,
	"documentDate":  true,
	"postingDate":   true,
	"lastChanged":   true,
}

// NewInvoice builds an Invoice from a fragment's metadata and text content.
// Date conversion is left to the caller.
func NewInvoice(f *Fragment) *Invoice {
	inv := &Invoice{
		InvoiceNumber: f.Meta("invoiceNumber"),
		CompanyCode:   f.Meta("companyCode"),
		FiscalYear:    f.Meta("fiscalYear"),
		Amount:        f.Meta("amount"),
		Currency:      f.Meta("currency"),
		DocumentType:  f.Meta("documentType"),
		Reference:     f.Meta("reference"),
		BusinessArea:  f.Meta("businessArea"),
		DocumentDate:  f.Meta("documentDate"),
		PostingDate:   f.Meta("postingDate"),
		LastChanged:   f.Meta("lastChanged"),
		Text:          f.Content,
	}
	inv.ID = NewInvoiceID(inv.InvoiceNumber, inv.CompanyCode, inv.FiscalYear)

	for k, v := range f.Metadata {
		if knownMetadataKeys[k] {
			continue
		}
		if inv.Extra == nil {
			inv.Extra = make(map[string]string)
		}
		inv.Extra[k] = v
	}

	return inv
}

// ExtraField returns a passthrough metadata value, or empty string
func (inv *Invoice) ExtraField(key string) string {
	if inv.Extra == nil {
		return ""
	}
	return inv.Extra[key]
}
