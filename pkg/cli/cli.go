package cli

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	// Local development reads credentials from .env; absence is fine
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:  "invo",
		Usage: "Invoice retrieval and Q&A agent over a vector index",
		Commands: []*cli.Command{
			chatCommand(),
			serveCommand(),
			indexCommand(),
			countCommand(),
			rangeCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
