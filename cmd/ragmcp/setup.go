package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/dshills/ragmcp/internal/config"
	"github.com/dshills/ragmcp/internal/dispatcher"
	"github.com/dshills/ragmcp/internal/embed"
	"github.com/dshills/ragmcp/internal/ingest"
	"github.com/dshills/ragmcp/internal/pathvalidator"
	"github.com/dshills/ragmcp/internal/search"
	"github.com/dshills/ragmcp/internal/store"
)

// app is every long-lived component a subcommand needs, wired once from
// config and torn down by its caller via Close.
type app struct {
	cfg        *config.Config
	store      store.Store
	ingester   *ingest.Ingester
	embedder   *embed.Embedder
	fusion     *search.Fusion
	validator  *pathvalidator.Validator
	dispatcher *dispatcher.Dispatcher
}

func (a *app) Close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

// configFlag registers the --config flag every subcommand accepts, in
// the spirit of the teacher's own minimal, cobra-free flag handling.
func configFlag(fs *flag.FlagSet) *string {
	return fs.String("config", "ragmcp.toml", "path to the TOML configuration file")
}

func buildApp(ctx context.Context, cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	st, err := store.Open(ctx, cfg.RAGMCP.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", cfg.RAGMCP.DBPath, err)
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("migrating store: %w", err)
	}

	provider := embed.NewHTTPProvider(
		providerBaseURL(cfg.Embeddings.Provider),
		cfg.Embeddings.APIKey,
		cfg.Embeddings.Model,
		cfg.Embeddings.Dimensions,
	)
	cache := embed.NewCache(10000)
	embedder := embed.New(provider, st, cache, cfg.Embeddings.BatchSize)

	ig := ingest.New(st, ingest.Config{Root: cfg.RAGMCP.RAGFolder})

	fusion := search.New(
		&search.BM25{Store: st},
		&search.Vector{Store: st, Provider: provider, Cache: cache},
		st,
	)

	validator, err := pathvalidator.New(cfg.RAGMCP.RAGFolder, pathvalidator.DefaultWritableExtensions)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("building path validator: %w", err)
	}

	disp := dispatcher.New(st, fusion, ig, embedder, validator, dispatcher.SearchDefaults{
		K:            cfg.Search.DefaultK,
		MinScore:     cfg.Search.MinScore,
		BM25Weight:   cfg.Search.HybridBM25Weight,
		VectorWeight: cfg.Search.HybridVectorWeight,
	})

	return &app{
		cfg:        cfg,
		store:      st,
		ingester:   ig,
		embedder:   embedder,
		fusion:     fusion,
		validator:  validator,
		dispatcher: disp,
	}, nil
}

// providerBaseURL maps a configured provider name to its OpenAI-compatible
// embeddings endpoint. Anything unrecognized is treated as a literal base
// URL, so self-hosted and compatible third-party endpoints work unchanged.
func providerBaseURL(provider string) string {
	switch provider {
	case "openai", "":
		return "https://api.openai.com/v1/embeddings"
	case "jina":
		return "https://api.jina.ai/v1/embeddings"
	default:
		return provider
	}
}
