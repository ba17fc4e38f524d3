package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/invo/pkg/usecase/indexer"
	"github.com/urfave/cli/v3"
)

func indexCommand() *cli.Command {
	var (
		cfg       config
		inputFile string
		noChunk   bool
		clear     bool
		stats     bool
		chunkSize int64
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "file",
			Aliases:     []string{"f"},
			Usage:       "Path to invoice JSON export",
			Sources:     cli.EnvVars("INVO_INDEX_FILE"),
			Destination: &inputFile,
		},
		&cli.BoolFlag{
			Name:        "no-chunk",
			Usage:       "Disable splitting of long documents",
			Destination: &noChunk,
		},
		&cli.IntFlag{
			Name:        "chunk-size",
			Usage:       "Max characters per chunk",
			Value:       1000,
			Destination: &chunkSize,
		},
		&cli.BoolFlag{
			Name:        "clear",
			Usage:       "Delete all vectors in the namespace before exiting",
			Destination: &clear,
		},
		&cli.BoolFlag{
			Name:        "stats",
			Usage:       "Print index statistics and exit",
			Destination: &stats,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "index",
		Usage: "Load invoices into the vector index",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := cfg.setup(); err != nil {
				return err
			}

			index, err := cfg.newVectorIndex()
			if err != nil {
				return err
			}

			if stats {
				st, err := index.Stats(ctx)
				if err != nil {
					return goerr.Wrap(err, "failed to get index stats")
				}
				fmt.Fprintf(c.Root().Writer, "dimension: %d\nvectors: %d\nnamespaces: %d\n",
					st.Dimension, st.TotalVectorCount, st.NamespaceCount)
				return nil
			}

			if clear {
				if err := index.DeleteAll(ctx); err != nil {
					return goerr.Wrap(err, "failed to clear namespace")
				}
				fmt.Fprintf(c.Root().Writer, "namespace %s cleared\n", cfg.PineconeNamespace)
				return nil
			}

			if inputFile == "" {
				return goerr.New("--file is required unless --clear or --stats is given")
			}

			records, err := indexer.LoadRecords(inputFile)
			if err != nil {
				return err
			}

			gemini, err := cfg.newGemini(ctx)
			if err != nil {
				return err
			}

			opts := []indexer.Option{indexer.WithChunkSize(int(chunkSize))}
			if noChunk {
				opts = append(opts, indexer.WithoutChunking())
			}
			ix, err := indexer.New(gemini, index, opts...)
			if err != nil {
				return err
			}

			total, err := ix.Run(ctx, records)
			if err != nil {
				return goerr.Wrap(err, "indexing failed")
			}

			fmt.Fprintf(c.Root().Writer, "indexed %d records as %d vectors\n", len(records), total)
			return nil
		},
	}
}
