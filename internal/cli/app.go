package cli

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"qaforge/config"
	"qaforge/internal/adapter/chunker"
	"qaforge/internal/adapter/dom"
	"qaforge/internal/adapter/embedding"
	"qaforge/internal/adapter/fs"
	"qaforge/internal/adapter/index"
	"qaforge/internal/adapter/llm"
	"qaforge/internal/adapter/parser"
	"qaforge/internal/adapter/store"
	"qaforge/internal/port"
	"qaforge/internal/synth"
	"qaforge/internal/usecase"
)

// checkoutPageFile is the snapshot of the last ingested checkout page,
// stored next to the index so script generation works across invocations.
const checkoutPageFile = "checkout_page.html"

// app is the assembled application: one index strategy, one session, and the
// use cases wired on top. The strategy is chosen here and nowhere else.
type app struct {
	cfg      *config.Config
	session  *usecase.Session
	ingest   *usecase.IngestUseCase
	retrieve *usecase.RetrieveUseCase
	generate *usecase.GenerateUseCase

	closeFn func() error
}

func newApp(cfg *config.Config) (*app, error) {
	if err := cfg.EnsurePersistDir(); err != nil {
		return nil, fmt.Errorf("failed to create persist directory: %w", err)
	}

	idx, closeFn, err := buildIndex(cfg)
	if err != nil {
		return nil, err
	}

	extractor := dom.New()
	session := usecase.NewSession()
	loadCheckoutPage(cfg, extractor, session)

	generator := buildGenerator(cfg)

	ingestUC := usecase.NewIngestUseCase(
		parser.New(),
		chunker.New(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap),
		idx,
		extractor,
		fs.NewWalker(cfg.Ingest.Includes, cfg.Ingest.Excludes),
		session,
		cfg.Ingest.CheckoutPage,
	)
	retrieveUC := usecase.NewRetrieveUseCase(idx, cfg.Index.TopK)
	generateUC := usecase.NewGenerateUseCase(
		retrieveUC,
		synth.NewTestCaseSynthesizer(generator, cfg.Generation.MaxTokens),
		synth.NewScriptSynthesizer(generator, cfg.Generation.MaxTokens),
		session,
	)

	return &app{
		cfg:      cfg,
		session:  session,
		ingest:   ingestUC,
		retrieve: retrieveUC,
		generate: generateUC,
		closeFn:  closeFn,
	}, nil
}

func (a *app) Close() error {
	if a.closeFn != nil {
		return a.closeFn()
	}
	return nil
}

// buildIndex is the strategy selection point.
func buildIndex(cfg *config.Config) (port.Index, func() error, error) {
	switch cfg.Index.Strategy {
	case "", "lexical":
		idx, err := index.NewLexical(cfg.CollectionPath(), cfg.Index.Collection)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open lexical index: %w", err)
		}
		return idx, nil, nil

	case "dense":
		embedder, err := buildEmbedder(cfg)
		if err != nil {
			return nil, nil, err
		}
		vs, err := store.Open(cfg.VectorDBPath(), embedder.Dimension())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open vector store: %w", err)
		}
		return index.NewDense(embedder, vs, cfg.Index.Collection), vs.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported index strategy: %s", cfg.Index.Strategy)
	}
}

func buildEmbedder(cfg *config.Config) (port.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "openai", "ollama", "jina":
		embedder, err := embedding.NewClient(
			cfg.Embedding.APIKeyEnv,
			cfg.Embedding.Model,
			cfg.Embedding.BaseURL,
			cfg.Embedding.Dimension,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create embedder: %w", err)
		}
		return embedder, nil
	case "mock":
		return &embedding.Mock{Dim: cfg.Embedding.Dimension}, nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
}

// buildGenerator creates the generation client, or nil for template-only
// operation. A misconfigured provider degrades to templates with a warning
// rather than failing the command.
func buildGenerator(cfg *config.Config) port.Generator {
	if cfg.Generation.Provider == "" {
		return nil
	}

	client, err := llm.NewClient(
		cfg.Generation.APIKeyEnv,
		cfg.Generation.Model,
		cfg.Generation.BaseURL,
		time.Duration(cfg.Generation.TimeoutSeconds)*time.Second,
	)
	if err != nil {
		log.Printf("generation provider unavailable, using templates: %v", err)
		return nil
	}
	return client
}

// loadCheckoutPage restores the session's DOM catalog from the persisted
// checkout page snapshot, if one exists.
func loadCheckoutPage(cfg *config.Config, extractor *dom.Extractor, session *usecase.Session) {
	path := filepath.Join(cfg.Index.PersistDir, checkoutPageFile)
	content, err := os.ReadFile(path)
	if err != nil {
		return
	}
	session.SetCheckoutPage(string(content), extractor.Extract(string(content)))
}

// saveCheckoutPage persists the session's checkout page snapshot.
func saveCheckoutPage(cfg *config.Config, session *usecase.Session) error {
	if !session.HasCheckoutPage() {
		return nil
	}
	path := filepath.Join(cfg.Index.PersistDir, checkoutPageFile)
	return os.WriteFile(path, []byte(session.CheckoutHTML()), 0644)
}
