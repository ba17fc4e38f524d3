package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"
)

func rangeCommand() *cli.Command {
	var (
		cfg       config
		startDate string
		endDate   string
		asJSON    bool
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "start",
			Usage:       "Start date (YYYY-MM-DD), inclusive",
			Destination: &startDate,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "end",
			Usage:       "End date (YYYY-MM-DD), inclusive",
			Destination: &endDate,
			Required:    true,
		},
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "Output full invoice records as JSON",
			Destination: &asJSON,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "range",
		Usage: "List invoices whose document date falls within a range",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := cfg.setup(); err != nil {
				return err
			}

			svc, err := cfg.newInvoiceService(ctx)
			if err != nil {
				return err
			}

			invoices, err := svc.ByDateRange(ctx, startDate, endDate)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(c.Root().Writer)
				enc.SetIndent("", "  ")
				return enc.Encode(invoices)
			}

			for _, inv := range invoices {
				fmt.Fprintf(c.Root().Writer, "%s\t%s\t%s\t%s\t%s %s\n",
					inv.InvoiceNumber,
					inv.CompanyCode,
					inv.FiscalYear,
					inv.DocumentDateConverted,
					inv.Amount,
					inv.Currency,
				)
			}
			fmt.Fprintf(c.Root().Writer, "%d invoice(s)\n", len(invoices))
			return nil
		},
	}
}
