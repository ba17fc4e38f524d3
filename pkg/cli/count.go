package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func countCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "count",
		Usage: "Print the approximate number of unique invoices in the index",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := cfg.setup(); err != nil {
				return err
			}

			svc, err := cfg.newInvoiceService(ctx)
			if err != nil {
				return err
			}

			count, err := svc.Count(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "%d\n", count)
			return nil
		},
	}
}
