package invoice

import (
	"github.com/m-mizutani/invo/pkg/model"
)

// Deduplicate collapses retrieved fragments into unique invoices keyed by
// (invoiceNumber, companyCode, fiscalYear). Fragments come in retrieval
// relevance order; the first fragment seen for an identity wins and later
// ones are ignored entirely. Fragments without an invoice number are
// discarded. The result preserves first-seen order.
func Deduplicate(fragments []*model.Fragment) []*model.Invoice {
	seen := make(map[model.InvoiceID]bool, len(fragments))
	invoices := make([]*model.Invoice, 0, len(fragments))

	for _, f := range fragments {
		if f.Meta("invoiceNumber") == "" {
			continue
		}

		id := model.NewInvoiceID(f.Meta("invoiceNumber"), f.Meta("companyCode"), f.Meta("fiscalYear"))
		if seen[id] {
			continue
		}
		seen[id] = true

		inv := model.NewInvoice(f)
		if inv.DocumentDate != "" {
			inv.DocumentDateConverted = ConvertSAPDate(inv.DocumentDate)
		}
		if inv.PostingDate != "" {
			inv.PostingDateConverted = ConvertSAPDate(inv.PostingDate)
		}
		if inv.LastChanged != "" {
			inv.LastChangedConverted = ConvertSAPDate(inv.LastChanged)
		}

		invoices = append(invoices, inv)
	}

	return invoices
}
