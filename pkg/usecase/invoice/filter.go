package invoice

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/invo/pkg/model"
)

const dateLayout = "2006-01-02"

// FilterByDateRange returns the invoices whose converted document date falls
// within [startDate, endDate], both bounds inclusive, preserving input order.
// If either bound is empty the input is returned as-is. Invoices whose
// converted date is missing or unparseable never match a range. Malformed
// bounds are an error for the caller.
func FilterByDateRange(invoices []*model.Invoice, startDate, endDate string) ([]*model.Invoice, error) {
	if startDate == "" || endDate == "" {
		return invoices, nil
	}

	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid start date", goerr.V("start_date", startDate))
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid end date", goerr.V("end_date", endDate))
	}

	filtered := make([]*model.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if inv.DocumentDateConverted == "" {
			continue
		}
		docDate, err := time.Parse(dateLayout, inv.DocumentDateConverted)
		if err != nil {
			continue
		}
		if !docDate.Before(start) && !docDate.After(end) {
			filtered = append(filtered, inv)
		}
	}

	return filtered, nil
}
