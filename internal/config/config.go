// Package config collects environment-driven settings for the tutor.
package config

import (
	"fmt"
	"os"
	"strconv"

	"coursetutor/internal/llm"
)

// Config holds all tunables. Zero values are replaced by defaults in FromEnv.
type Config struct {
	// CatalogPath is the TOML unit catalog file.
	CatalogPath string
	// AssetsDir is the base directory for relative catalog paths.
	AssetsDir string

	// Model is the default generation model.
	Model string
	// TopK chunks are retrieved per query.
	TopK int
	// ChunkSize and ChunkOverlap are segmentation parameters in runes.
	ChunkSize    int
	ChunkOverlap int
	// ContextBudget caps retrieved context characters in the prompt.
	ContextBudget int
	// MaxCallsPerMinute paces generation requests.
	MaxCallsPerMinute int
	// Temperature for generation; negative means provider default.
	Temperature float64
	// MaxOutputTokens caps answer length; zero means provider default.
	MaxOutputTokens int64
	// MinRelevance rejects queries whose best retrieved score falls below it.
	// Zero disables the gate.
	MinRelevance float64
	// ResetOnUnitChange clears conversation memory when the unit changes.
	ResetOnUnitChange bool

	// Qdrant settings for the optional persistent index backend.
	UseQdrant  bool
	QdrantHost string
	QdrantPort int

	// GitHub settings for the optional remote document source.
	UseGitHub      bool
	GitHubOwner    string
	GitHubRepo     string
	GitHubBasePath string
}

// FromEnv builds a Config from environment variables with defaults suitable
// for local development.
func FromEnv() Config {
	return Config{
		CatalogPath:       getEnv("TUTOR_CATALOG", "units.toml"),
		AssetsDir:         getEnv("TUTOR_ASSETS_DIR", "."),
		Model:             getEnv("TUTOR_MODEL", llm.DefaultModel),
		TopK:              getEnvInt("TUTOR_TOP_K", 4),
		ChunkSize:         getEnvInt("TUTOR_CHUNK_SIZE", 800),
		ChunkOverlap:      getEnvInt("TUTOR_CHUNK_OVERLAP", 120),
		ContextBudget:     getEnvInt("TUTOR_CONTEXT_BUDGET", 6000),
		MaxCallsPerMinute: getEnvInt("TUTOR_MAX_CALLS_PER_MINUTE", 20),
		Temperature:       getEnvFloat("TUTOR_TEMPERATURE", -1),
		MaxOutputTokens:   int64(getEnvInt("TUTOR_MAX_OUTPUT_TOKENS", 0)),
		MinRelevance:      getEnvFloat("TUTOR_MIN_RELEVANCE", 0),
		ResetOnUnitChange: getEnvBool("TUTOR_RESET_ON_UNIT_CHANGE", false),
		UseQdrant:         getEnvBool("TUTOR_USE_QDRANT", false),
		QdrantHost:        getEnv("QDRANT_HOST", "localhost"),
		QdrantPort:        getEnvInt("QDRANT_PORT", 6334),
		UseGitHub:         getEnvBool("TUTOR_USE_GITHUB", false),
		GitHubOwner:       getEnv("TUTOR_GITHUB_OWNER", ""),
		GitHubRepo:        getEnv("TUTOR_GITHUB_REPO", ""),
		GitHubBasePath:    getEnv("TUTOR_GITHUB_PATH", ""),
	}
}

// Validate rejects configurations that would fail mid-pipeline.
func (c Config) Validate() error {
	if !llm.SupportedModels[c.Model] {
		return fmt.Errorf("%w: %q", llm.ErrUnsupportedModel, c.Model)
	}
	if c.ChunkSize <= 0 || c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("invalid chunk parameters: size=%d overlap=%d", c.ChunkSize, c.ChunkOverlap)
	}
	if c.TopK < 1 {
		return fmt.Errorf("top-k must be at least 1, got %d", c.TopK)
	}
	if c.UseGitHub && (c.GitHubOwner == "" || c.GitHubRepo == "") {
		return fmt.Errorf("github source requires TUTOR_GITHUB_OWNER and TUTOR_GITHUB_REPO")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}
