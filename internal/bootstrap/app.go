// Package bootstrap assembles the tutor's components from configuration.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"coursetutor/internal/config"
	"coursetutor/internal/embedding"
	"coursetutor/internal/index"
	"coursetutor/internal/llm"
	"coursetutor/internal/mcp"
	"coursetutor/internal/prompt"
	"coursetutor/internal/retrieval"
	"coursetutor/internal/session"
	"coursetutor/internal/source"
	"coursetutor/internal/splitter"
)

// App bundles the wired components behind one constructor so the CLI and the
// MCP server share identical setup.
type App struct {
	Config  config.Config
	Catalog *source.Catalog
	Session *session.Session
	Cache   *index.Cache
	Source  source.Source
	Embed   embedding.Func
	Store   *index.QdrantStore // nil unless the Qdrant backend is enabled

	markdown *splitter.MarkdownSplitter
	logger   *slog.Logger
}

// New validates cfg and wires the full pipeline: document source, embedding
// capability, index cache, retriever, assembler, rate-limited generator, and
// the session that orchestrates them.
func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	catalog, err := source.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}

	var src source.Source
	if cfg.UseGitHub {
		src, err = source.NewGitHubSource(catalog, cfg.GitHubOwner, cfg.GitHubRepo, cfg.GitHubBasePath)
		if err != nil {
			return nil, err
		}
	} else {
		src = source.NewLocalSource(catalog, cfg.AssetsDir)
	}
	src = source.Cached(src)

	client, err := llm.NewOpenAIClient("")
	if err != nil {
		return nil, err
	}
	embedder := embedding.NewEmbedder(client.Client(), 0)

	app := &App{
		Config:   cfg,
		Catalog:  catalog,
		Source:   src,
		Embed:    embedder.Embed,
		markdown: splitter.NewMarkdownSplitter(),
		logger:   logger,
	}

	if cfg.UseQdrant {
		store, err := index.NewQdrantStore(cfg.QdrantHost, cfg.QdrantPort)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureCollection(context.Background()); err != nil {
			store.Close()
			return nil, err
		}
		app.Store = store
	}

	app.Cache = index.NewCache(app.buildIndex, logger)

	generator := llm.NewGenerator(client, llm.Options{
		MaxCallsPerMinute: cfg.MaxCallsPerMinute,
		Temperature:       cfg.Temperature,
		MaxOutputTokens:   cfg.MaxOutputTokens,
	}, logger)

	app.Session, err = session.New(
		catalog,
		app.Cache,
		retrieval.NewRetriever(app.Embed),
		prompt.NewAssembler("", cfg.ContextBudget),
		generator,
		cfg.Model,
		session.Options{
			TopK:              cfg.TopK,
			MinRelevance:      cfg.MinRelevance,
			ResetOnUnitChange: cfg.ResetOnUnitChange,
		},
		logger,
	)
	if err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// Close releases backend connections.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// buildIndex is the cache's build function: load text, segment, embed, and
// either keep the vectors in memory or push them into Qdrant.
func (a *App) buildIndex(ctx context.Context, key string) (index.Index, error) {
	chunks, err := a.splitUnit(ctx, key)
	if err != nil {
		return nil, err
	}

	if a.Store == nil {
		return index.Build(ctx, chunks, a.Embed)
	}

	// Reuse a previously persisted index when the chunking matches.
	count, err := a.Store.Count(ctx, key)
	if err != nil {
		return nil, err
	}
	if count == len(chunks) && count > 0 {
		return a.Store.Unit(key, count), nil
	}

	return a.rebuildStored(ctx, key, chunks)
}

// IndexUnit force-rebuilds a unit's persisted index. Used by the index
// subcommand; requires the Qdrant backend.
func (a *App) IndexUnit(ctx context.Context, key string) (int, error) {
	if a.Store == nil {
		return 0, fmt.Errorf("persistent indexing requires the qdrant backend (TUTOR_USE_QDRANT=true)")
	}
	chunks, err := a.splitUnit(ctx, key)
	if err != nil {
		return 0, err
	}
	if _, err := a.rebuildStored(ctx, key, chunks); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

func (a *App) rebuildStored(ctx context.Context, key string, chunks []index.Chunk) (index.Index, error) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := a.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}

	if err := a.Store.DeleteUnit(ctx, key); err != nil {
		return nil, err
	}
	if err := a.Store.UpsertChunks(ctx, key, chunks, vectors); err != nil {
		return nil, err
	}
	return a.Store.Unit(key, len(chunks)), nil
}

// splitUnit loads a unit's text and segments it, using the section-aware
// splitter for markdown documents.
func (a *App) splitUnit(ctx context.Context, key string) ([]index.Chunk, error) {
	unit, ok := a.Catalog.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", source.ErrUnknownUnit, key)
	}

	text, err := a.Source.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}

	ext := strings.ToLower(filepath.Ext(unit.Path))
	if ext == ".md" || ext == ".markdown" {
		return a.markdown.Split(text, a.Config.ChunkSize, a.Config.ChunkOverlap)
	}
	return splitter.Split(text, a.Config.ChunkSize, a.Config.ChunkOverlap)
}

// MCPServer builds the MCP serving surface over this app's session.
func (a *App) MCPServer() *mcp.Server {
	return mcp.NewServer(&mcp.Config{
		Session: a.Session,
		Catalog: a.Catalog,
	})
}
