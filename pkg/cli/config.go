package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/invo/pkg/adapter"
	"github.com/m-mizutani/invo/pkg/tool"
	toolinvoice "github.com/m-mizutani/invo/pkg/tool/invoice"
	"github.com/m-mizutani/invo/pkg/usecase/chat"
	"github.com/m-mizutani/invo/pkg/usecase/invoice"
	"github.com/m-mizutani/invo/pkg/utils/logging"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Flag defaults, shared with merge so a file value can tell whether the
// flag was left untouched
const (
	defaultGenerativeModel   = "gemini-2.5-flash"
	defaultEmbeddingModel    = "gemini-embedding-001"
	defaultEmbeddingDim      = 512
	defaultPineconeNamespace = "invoice-documents"
)

// config holds configuration shared across commands
type config struct {
	configFile string
	logLevel   string

	// Gemini
	GeminiAPIKey    string `yaml:"gemini_api_key"`
	GenerativeModel string `yaml:"generative_model"`
	EmbeddingModel  string `yaml:"embedding_model"`
	EmbeddingDim    int64  `yaml:"embedding_dimension"`

	// Pinecone
	PineconeHost      string `yaml:"pinecone_host"`
	PineconeAPIKey    string `yaml:"pinecone_api_key"`
	PineconeNamespace string `yaml:"pinecone_namespace"`

	// Retrieval
	TopK int64 `yaml:"top_k"`
}

// globalFlags returns flags common to every command, bound to cfg
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to YAML config file",
			Sources:     cli.EnvVars("INVO_CONFIG"),
			Destination: &cfg.configFile,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("INVO_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "gemini-api-key",
			Usage:       "Gemini API key",
			Sources:     cli.EnvVars("GEMINI_API_KEY"),
			Destination: &cfg.GeminiAPIKey,
		},
		&cli.StringFlag{
			Name:        "generative-model",
			Usage:       "Gemini model for answering",
			Value:       defaultGenerativeModel,
			Sources:     cli.EnvVars("INVO_GENERATIVE_MODEL"),
			Destination: &cfg.GenerativeModel,
		},
		&cli.StringFlag{
			Name:        "embedding-model",
			Usage:       "Gemini model for embeddings",
			Value:       defaultEmbeddingModel,
			Sources:     cli.EnvVars("INVO_EMBEDDING_MODEL"),
			Destination: &cfg.EmbeddingModel,
		},
		&cli.IntFlag{
			Name:        "embedding-dimension",
			Usage:       "Embedding dimensionality, must match the index",
			Value:       defaultEmbeddingDim,
			Sources:     cli.EnvVars("INVO_EMBEDDING_DIMENSION"),
			Destination: &cfg.EmbeddingDim,
		},
		&cli.StringFlag{
			Name:        "pinecone-host",
			Usage:       "Pinecone index host URL",
			Sources:     cli.EnvVars("PINECONE_INDEX_HOST"),
			Destination: &cfg.PineconeHost,
		},
		&cli.StringFlag{
			Name:        "pinecone-api-key",
			Usage:       "Pinecone API key",
			Sources:     cli.EnvVars("PINECONE_API_KEY"),
			Destination: &cfg.PineconeAPIKey,
		},
		&cli.StringFlag{
			Name:        "pinecone-namespace",
			Usage:       "Pinecone namespace holding invoice documents",
			Value:       defaultPineconeNamespace,
			Sources:     cli.EnvVars("PINECONE_NAMESPACE"),
			Destination: &cfg.PineconeNamespace,
		},
		&cli.IntFlag{
			Name:        "top-k",
			Usage:       "Max fragments per similarity search",
			Value:       invoice.DefaultTopK,
			Sources:     cli.EnvVars("INVO_TOP_K"),
			Destination: &cfg.TopK,
		},
	}
}

// setup loads the optional config file and installs the logger. Call it at
// the top of every command action.
func (cfg *config) setup() error {
	if cfg.configFile != "" {
		data, err := os.ReadFile(cfg.configFile)
		if err != nil {
			return goerr.Wrap(err, "failed to read config file", goerr.V("path", cfg.configFile))
		}
		// Flags and env vars take precedence over file values
		var fileCfg config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return goerr.Wrap(err, "failed to parse config file", goerr.V("path", cfg.configFile))
		}
		cfg.merge(&fileCfg)
	}

	logging.SetDefault(logging.New(cfg.logLevel, os.Stderr))
	return nil
}

// merge fills in values from the config file. A file value only applies
// when the corresponding flag still holds its default, so flags and env
// vars keep precedence over the file.
func (cfg *config) merge(file *config) {
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = file.GeminiAPIKey
	}
	if cfg.PineconeHost == "" {
		cfg.PineconeHost = file.PineconeHost
	}
	if cfg.PineconeAPIKey == "" {
		cfg.PineconeAPIKey = file.PineconeAPIKey
	}
	if file.PineconeNamespace != "" && cfg.PineconeNamespace == defaultPineconeNamespace {
		cfg.PineconeNamespace = file.PineconeNamespace
	}
	if file.GenerativeModel != "" && cfg.GenerativeModel == defaultGenerativeModel {
		cfg.GenerativeModel = file.GenerativeModel
	}
	if file.EmbeddingModel != "" && cfg.EmbeddingModel == defaultEmbeddingModel {
		cfg.EmbeddingModel = file.EmbeddingModel
	}
	if file.EmbeddingDim != 0 && cfg.EmbeddingDim == defaultEmbeddingDim {
		cfg.EmbeddingDim = file.EmbeddingDim
	}
	if file.TopK != 0 && cfg.TopK == invoice.DefaultTopK {
		cfg.TopK = file.TopK
	}
}

// newGemini creates the Gemini adapter
func (cfg *config) newGemini(ctx context.Context) (adapter.Gemini, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, goerr.New("gemini-api-key is required")
	}
	return adapter.NewGemini(ctx, cfg.GeminiAPIKey,
		adapter.WithGenerativeModel(cfg.GenerativeModel),
		adapter.WithEmbeddingModel(cfg.EmbeddingModel),
		adapter.WithEmbeddingDimension(int32(cfg.EmbeddingDim)),
	)
}

// newVectorIndex creates the Pinecone client
func (cfg *config) newVectorIndex() (adapter.VectorIndex, error) {
	return adapter.NewPinecone(adapter.PineconeConfig{
		Host:      cfg.PineconeHost,
		APIKey:    cfg.PineconeAPIKey,
		Namespace: cfg.PineconeNamespace,
	})
}

// newInvoiceService wires retriever and query service
func (cfg *config) newInvoiceService(ctx context.Context) (*invoice.Service, error) {
	gemini, err := cfg.newGemini(ctx)
	if err != nil {
		return nil, err
	}
	index, err := cfg.newVectorIndex()
	if err != nil {
		return nil, err
	}
	return invoice.New(invoice.NewRetriever(gemini, index, int(cfg.TopK)))
}

// newChatService wires the full agent stack
func (cfg *config) newChatService(ctx context.Context) (*chat.Service, error) {
	gemini, err := cfg.newGemini(ctx)
	if err != nil {
		return nil, err
	}
	index, err := cfg.newVectorIndex()
	if err != nil {
		return nil, err
	}

	retriever := invoice.NewRetriever(gemini, index, int(cfg.TopK))
	registry := tool.New(toolinvoice.NewSearchInvoices(retriever))

	return chat.New(gemini, registry)
}
