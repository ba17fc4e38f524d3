package invoice_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/invo/pkg/model"
	"github.com/m-mizutani/invo/pkg/usecase/invoice"
)

func fragment(content string, metadata map[string]string) *model.Fragment {
	return &model.Fragment{Content: content, Metadata: metadata}
}

func TestDeduplicateUniqueness(t *testing.T) {
	fragments := []*model.Fragment{
		fragment("chunk a", map[string]string{"invoiceNumber": "100", "companyCode": "MF01", "fiscalYear": "2024"}),
		fragment("chunk b", map[string]string{"invoiceNumber": "100", "companyCode": "MF01", "fiscalYear": "2024"}),
		fragment("chunk c", map[string]string{"invoiceNumber": "100", "companyCode": "MF01", "fiscalYear": "2023"}),
		fragment("chunk d", map[string]string{"invoiceNumber": "200", "companyCode": "MF01", "fiscalYear": "2024"}),
	}

	invoices := invoice.Deduplicate(fragments)
	gt.A(t, invoices).Length(3)

	seen := map[model.InvoiceID]bool{}
	for _, inv := range invoices {
		gt.False(t, seen[inv.ID])
		seen[inv.ID] = true
	}
}

func TestDeduplicateFirstSeenWins(t *testing.T) {
	fragments := []*model.Fragment{
		fragment("first chunk", map[string]string{
			"invoiceNumber": "100", "companyCode": "MF01", "fiscalYear": "2024",
			"amount": "1000", "currency": "EUR",
		}),
		fragment("second chunk", map[string]string{
			"invoiceNumber": "100", "companyCode": "MF01", "fiscalYear": "2024",
			"amount": "9999", "currency": "JPY",
		}),
	}

	invoices := invoice.Deduplicate(fragments)
	gt.A(t, invoices).Length(1)
	gt.Equal(t, invoices[0].Amount, "1000")
	gt.Equal(t, invoices[0].Currency, "EUR")
	gt.Equal(t, invoices[0].Text, "first chunk")
}

func TestDeduplicateEmptyInvoiceNumber(t *testing.T) {
	fragments := []*model.Fragment{
		fragment("no number", map[string]string{"companyCode": "MF01", "fiscalYear": "2024"}),
		fragment("empty number", map[string]string{"invoiceNumber": "", "companyCode": "MF01"}),
		fragment("valid", map[string]string{"invoiceNumber": "100", "companyCode": "MF01", "fiscalYear": "2024"}),
	}

	invoices := invoice.Deduplicate(fragments)
	gt.A(t, invoices).Length(1)
	gt.Equal(t, invoices[0].InvoiceNumber, "100")
}

func TestDeduplicateConvertsDates(t *testing.T) {
	fragments := []*model.Fragment{
		fragment("inv", map[string]string{
			"invoiceNumber": "100",
			"companyCode":   "MF01",
			"fiscalYear":    "2024",
			"documentDate":  "/Date(1718712000000)/", // 2024-06-18T12:00:00Z
			"postingDate":   "/Date(1718798400000)/", // 2024-06-19T12:00:00Z
		}),
	}

	invoices := invoice.Deduplicate(fragments)
	gt.A(t, invoices).Length(1)
	gt.Equal(t, invoices[0].DocumentDateConverted, "2024-06-18")
	gt.Equal(t, invoices[0].PostingDateConverted, "2024-06-19")
	gt.Equal(t, invoices[0].DocumentDate, "/Date(1718712000000)/")
	gt.Equal(t, invoices[0].LastChangedConverted, "")
}

func TestDeduplicatePassthroughMetadata(t *testing.T) {
	fragments := []*model.Fragment{
		fragment("inv", map[string]string{
			"invoiceNumber": "100",
			"companyCode":   "MF01",
			"fiscalYear":    "2024",
			"lastUpdated":   "2024-07-01",
			"source":        "SAP_S4HANA",
		}),
	}

	invoices := invoice.Deduplicate(fragments)
	gt.A(t, invoices).Length(1)
	gt.Equal(t, invoices[0].ExtraField("lastUpdated"), "2024-07-01")
	gt.Equal(t, invoices[0].ExtraField("source"), "SAP_S4HANA")
}

func TestDeduplicateEmptyInput(t *testing.T) {
	gt.A(t, invoice.Deduplicate(nil)).Length(0)
	gt.A(t, invoice.Deduplicate([]*model.Fragment{})).Length(0)
}

func TestDeduplicateOrderPreserved(t *testing.T) {
	fragments := []*model.Fragment{
		fragment("c", map[string]string{"invoiceNumber": "300", "companyCode": "A", "fiscalYear": "2024"}),
		fragment("a", map[string]string{"invoiceNumber": "100", "companyCode": "A", "fiscalYear": "2024"}),
		fragment("b", map[string]string{"invoiceNumber": "200", "companyCode": "A", "fiscalYear": "2024"}),
	}

	invoices := invoice.Deduplicate(fragments)
	gt.A(t, invoices).Length(3)
	gt.Equal(t, invoices[0].InvoiceNumber, "300")
	gt.Equal(t, invoices[1].InvoiceNumber, "100")
	gt.Equal(t, invoices[2].InvoiceNumber, "200")
}
