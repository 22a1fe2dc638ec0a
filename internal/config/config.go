// Package config loads the five-table TOML configuration spec.md §6
// describes, following the shape of custodia-labs-sercha-cli's
// config/file.ConfigStore but unmarshalling into a typed struct: this
// config has a fixed schema, so struct tags serve it better than that
// store's dot-notation map lookups.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/ragmcp/internal/chunker"
	"github.com/dshills/ragmcp/internal/embed"
)

// Config is the fully-resolved configuration: TOML file values layered
// over defaults, with environment-variable overrides applied last.
type Config struct {
	RAGMCP      RAGMCP      `toml:"ragmcp"`
	Embeddings  Embeddings  `toml:"embeddings"`
	Search      Search      `toml:"search"`
	Performance Performance `toml:"performance"`
	HTTPServer  HTTPServer  `toml:"http_server"`
}

// RAGMCP is the [ragmcp] table.
type RAGMCP struct {
	RAGFolder string `toml:"rag_folder"`
	DBPath    string `toml:"db_path"`
	LogLevel  string `toml:"log_level"`
}

// Embeddings is the [embeddings] table. APIKey is resolved from the
// environment variable named by APIKeyEnv and is never read from or
// written to the TOML file.
type Embeddings struct {
	Provider   string `toml:"provider"`
	Model      string `toml:"model"`
	APIKeyEnv  string `toml:"api_key_env"`
	BatchSize  int    `toml:"batch_size"`
	Dimensions int    `toml:"dimensions"`
	APIKey     string `toml:"-"`
}

// Search is the [search] table.
type Search struct {
	DefaultK           int     `toml:"default_k"`
	MinScore           float64 `toml:"min_score"`
	HybridBM25Weight   float64 `toml:"hybrid_bm25_weight"`
	HybridVectorWeight float64 `toml:"hybrid_vector_weight"`
}

// Performance is the [performance] table.
type Performance struct {
	MaxLatencyMS       int `toml:"max_latency_ms"`
	ChunkSizeTokens    int `toml:"chunk_size_tokens"`
	ChunkOverlapTokens int `toml:"chunk_overlap_tokens"`
}

// HTTPServer is the [http_server] table. BearerToken is resolved from
// RAGMCP_API_KEY and is never read from or written to the TOML file.
type HTTPServer struct {
	Authless    bool `toml:"authless"`
	Port        int  `toml:"port"`
	BearerToken string `toml:"-"`
}

// DefaultLogLevel, DefaultProvider, and DefaultModel anchor the values
// Default returns; named so callers checking "was this overridden" have
// something to compare against.
const (
	DefaultLogLevel = "info"
	DefaultProvider = "openai"
	DefaultModel    = "text-embedding-3-small"
	DefaultAPIKeyEnv = "OPENAI_API_KEY"
	DefaultPort     = 8081
)

// Default returns the baseline configuration every table falls back to
// before the TOML file and environment are layered on.
func Default() *Config {
	return &Config{
		RAGMCP: RAGMCP{
			RAGFolder: ".",
			DBPath:    "ragmcp.db",
			LogLevel:  DefaultLogLevel,
		},
		Embeddings: Embeddings{
			Provider:   DefaultProvider,
			Model:      DefaultModel,
			APIKeyEnv:  DefaultAPIKeyEnv,
			BatchSize:  embed.DefaultBatchSize,
			Dimensions: 1536,
		},
		Search: Search{
			DefaultK:           5,
			MinScore:           0.65,
			HybridBM25Weight:   0.5,
			HybridVectorWeight: 0.5,
		},
		Performance: Performance{
			MaxLatencyMS:       30000,
			ChunkSizeTokens:    chunker.DefaultTargetTokens,
			ChunkOverlapTokens: chunker.DefaultOverlapTokens,
		},
		HTTPServer: HTTPServer{
			Authless: false,
			Port:     DefaultPort,
		},
	}
}

// Load reads path (if non-empty and it exists) over Default, then
// applies environment-variable overrides. A missing file at a
// caller-supplied path is not an error: defaults plus environment still
// produce a usable configuration, matching the teacher corpus's general
// preference for a workable zero-config start.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// fall through with defaults
		default:
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv resolves the two secrets spec.md §6 names as environment
// variables. Neither has a TOML counterpart: committing a key to disk
// alongside the rest of the config would be a needless leak surface.
func applyEnv(cfg *Config) {
	keyEnv := cfg.Embeddings.APIKeyEnv
	if keyEnv == "" {
		keyEnv = DefaultAPIKeyEnv
	}
	cfg.Embeddings.APIKey = os.Getenv(keyEnv)
	cfg.HTTPServer.BearerToken = os.Getenv("RAGMCP_API_KEY")
}

// Validate rejects a configuration that would make a running server
// behave unpredictably rather than fail fast at startup.
func (c *Config) Validate() error {
	if c.RAGMCP.LogLevel != "" {
		switch c.RAGMCP.LogLevel {
		case "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("ragmcp.log_level: unknown level %q", c.RAGMCP.LogLevel)
		}
	}
	if c.Search.DefaultK < 0 || c.Search.DefaultK > 20 {
		return fmt.Errorf("search.default_k: must be between 0 and 20, got %d", c.Search.DefaultK)
	}
	if c.Search.MinScore < 0 || c.Search.MinScore > 1 {
		return fmt.Errorf("search.min_score: must be between 0 and 1, got %v", c.Search.MinScore)
	}
	if c.Performance.ChunkOverlapTokens >= c.Performance.ChunkSizeTokens && c.Performance.ChunkSizeTokens > 0 {
		return fmt.Errorf("performance.chunk_overlap_tokens (%d) must be smaller than chunk_size_tokens (%d)",
			c.Performance.ChunkOverlapTokens, c.Performance.ChunkSizeTokens)
	}
	if c.HTTPServer.Port <= 0 || c.HTTPServer.Port > 65535 {
		return fmt.Errorf("http_server.port: must be between 1 and 65535, got %d", c.HTTPServer.Port)
	}
	if !c.HTTPServer.Authless && c.HTTPServer.BearerToken == "" {
		return fmt.Errorf("http_server: RAGMCP_API_KEY must be set unless authless is true")
	}
	return nil
}
