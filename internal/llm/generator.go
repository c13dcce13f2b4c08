// Package llm provides the rate-limited streaming generation layer over the
// OpenAI chat completions API.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// DefaultModel is used when no model has been selected.
const DefaultModel = "gpt-4o"

// SupportedModels is the set of model identifiers the tutor accepts.
// Anything else is rejected before a request is issued.
var SupportedModels = map[string]bool{
	"gpt-4o":       true,
	"gpt-4o-mini":  true,
	"gpt-4.1":      true,
	"gpt-4.1-mini": true,
}

// Options tunes generation behavior.
type Options struct {
	// MaxCallsPerMinute caps generation request pacing. Zero disables pacing.
	MaxCallsPerMinute int
	// Temperature for sampling; negative means provider default.
	Temperature float64
	// MaxOutputTokens caps answer length. Zero means provider default.
	MaxOutputTokens int64
}

// Generator issues generation requests, enforcing a minimum spacing between
// consecutive calls so a chatty session stays inside provider rate limits.
type Generator struct {
	client  ChatClient
	limiter *rate.Limiter
	opts    Options
	logger  *slog.Logger
}

// NewGenerator creates a Generator around the given chat client. With
// MaxCallsPerMinute = n, consecutive calls start at least 60/n seconds apart;
// the first call is never delayed.
func NewGenerator(client ChatClient, opts Options, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.MaxCallsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.MaxCallsPerMinute)), 1)
	}
	return &Generator{
		client:  client,
		limiter: limiter,
		opts:    opts,
		logger:  logger,
	}
}

// Generate validates the model, waits out the pacing interval, and starts a
// streaming completion. The caller owns the returned stream and must drain or
// close it.
func (g *Generator) Generate(ctx context.Context, model string, messages []Message) (Stream, error) {
	if !SupportedModels[model] {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedModel, model)
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	g.logger.Debug("starting generation", "model", model, "messages", len(messages))
	stream, err := g.client.StreamChat(ctx, model, messages, g.opts.Temperature, g.opts.MaxOutputTokens)
	if err != nil {
		return nil, fmt.Errorf("start generation: %w", err)
	}
	return stream, nil
}
