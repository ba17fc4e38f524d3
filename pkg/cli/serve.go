package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/invo/pkg/server"
	"github.com/m-mizutani/invo/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func serveCommand() *cli.Command {
	var (
		cfg  config
		addr string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Listen address",
			Value:       "127.0.0.1:8000",
			Sources:     cli.EnvVars("INVO_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API server",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := cfg.setup(); err != nil {
				return err
			}

			chatSvc, err := cfg.newChatService(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize chat service")
			}
			invoiceSvc, err := cfg.newInvoiceService(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize invoice service")
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           server.New(chatSvc, invoiceSvc),
				ReadHeaderTimeout: 10 * time.Second,
			}

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			logging.Default().Info("starting HTTP server", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return goerr.Wrap(err, "server failed")
			}
			return nil
		},
	}
}
