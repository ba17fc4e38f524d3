package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func chatCommand() *cli.Command {
	var (
		cfg       config
		sessionID string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "session-id",
			Aliases:     []string{"s"},
			Usage:       "Session ID for conversation history (random if omitted)",
			Sources:     cli.EnvVars("INVO_SESSION_ID"),
			Destination: &sessionID,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Interactive Q&A over the invoice index",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := cfg.setup(); err != nil {
				return err
			}

			svc, err := cfg.newChatService(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize chat service")
			}

			if sessionID == "" {
				sessionID = uuid.New().String()
			}

			rl, err := readline.New("> ")
			if err != nil {
				return goerr.Wrap(err, "failed to initialize readline")
			}
			defer rl.Close()

			fmt.Fprintf(c.Root().Writer, "Chat session started (session: %s). Type 'exit' to quit.\n", sessionID)

			for {
				line, err := rl.Readline()
				if err == readline.ErrInterrupt || err == io.EOF {
					break
				}
				if err != nil {
					return goerr.Wrap(err, "failed to read input")
				}
				if line == "exit" || line == "quit" {
					break
				}
				if line == "" {
					continue
				}

				sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
				sp.Suffix = " thinking..."
				sp.Start()

				answer, err := svc.Ask(ctx, sessionID, line)
				sp.Stop()
				if err != nil {
					fmt.Fprintf(c.Root().Writer, "error: %v\n", err)
					continue
				}

				fmt.Fprintf(c.Root().Writer, "%s\n", answer)
			}

			fmt.Fprintf(c.Root().Writer, "\nChat session completed\n")
			return nil
		},
	}
}
