// Package session owns per-session state and runs the question pipeline:
// retrieve, assemble, generate, remember.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"coursetutor/internal/conversation"
	"coursetutor/internal/index"
	"coursetutor/internal/llm"
	"coursetutor/internal/prompt"
	"coursetutor/internal/retrieval"
	"coursetutor/internal/source"
)

var (
	// ErrBusy reports a query submitted while another is still streaming.
	// Overlapping queries in one session are not supported.
	ErrBusy = errors.New("session is processing another question")

	// ErrNoUnit reports a question asked before any unit was selected.
	ErrNoUnit = errors.New("no unit selected")

	// ErrOutOfScope reports a question whose best retrieved match scored
	// below the configured relevance floor.
	ErrOutOfScope = errors.New("question is not covered by the selected unit")
)

// State of the session's query loop.
type State int

const (
	// StateReady accepts unit/model changes and new questions.
	StateReady State = iota
	// StateActive means a question is mid-generation.
	StateActive
)

// Options tunes session behavior.
type Options struct {
	// TopK chunks retrieved per question.
	TopK int
	// MinRelevance rejects questions whose best match scores below it.
	// Zero disables the gate.
	MinRelevance float64
	// ResetOnUnitChange clears memory when the unit changes. Off by default:
	// a topic switch is treated as conversation-continuous.
	ResetOnUnitChange bool
}

// Session holds the active model, active unit, and conversation memory for
// one user. All state is explicit and in-memory; nothing survives the
// process.
type Session struct {
	id        string
	catalog   *source.Catalog
	cache     *index.Cache
	retriever *retrieval.Retriever
	assembler *prompt.Assembler
	generator *llm.Generator
	opts      Options
	logger    *slog.Logger

	mu     sync.Mutex
	state  State
	model  string
	unit   string
	memory *conversation.Memory
}

// New creates a Ready session with the given default model. The session has
// no unit selected yet; Ask fails with ErrNoUnit until SelectUnit is called.
func New(
	catalog *source.Catalog,
	cache *index.Cache,
	retriever *retrieval.Retriever,
	assembler *prompt.Assembler,
	generator *llm.Generator,
	model string,
	opts Options,
	logger *slog.Logger,
) (*Session, error) {
	if !llm.SupportedModels[model] {
		return nil, fmt.Errorf("%w: %q", llm.ErrUnsupportedModel, model)
	}
	if opts.TopK < 1 {
		opts.TopK = retrieval.DefaultTopK
	}
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.New().String()
	return &Session{
		id:        id,
		catalog:   catalog,
		cache:     cache,
		retriever: retriever,
		assembler: assembler,
		generator: generator,
		opts:      opts,
		logger:    logger.With("session", id),
		model:     model,
		memory:    conversation.NewMemory(),
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Model returns the active model.
func (s *Session) Model() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

// Unit returns the active unit key, empty before selection.
func (s *Session) Unit() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unit
}

// Turns returns a copy of the conversation so far.
func (s *Session) Turns() []conversation.Turn {
	return s.memory.Turns()
}

// SelectUnit switches the active unit. Memory is cleared only under the
// ResetOnUnitChange policy; by default the conversation continues across
// units.
func (s *Session) SelectUnit(key string) error {
	unit, ok := s.catalog.Lookup(key)
	if !ok {
		return fmt.Errorf("%w: %q", source.ErrUnknownUnit, key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateActive {
		return ErrBusy
	}
	changed := s.unit != "" && s.unit != unit.Key
	s.unit = unit.Key
	if changed && s.opts.ResetOnUnitChange {
		s.memory.Clear()
	}
	return nil
}

// SetModel switches the active model and clears memory: prior turns were
// produced under a different model identity and do not carry over. A no-op
// when the model is unchanged.
func (s *Session) SetModel(model string) error {
	if !llm.SupportedModels[model] {
		return fmt.Errorf("%w: %q", llm.ErrUnsupportedModel, model)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateActive {
		return ErrBusy
	}
	if s.model == model {
		return nil
	}
	s.model = model
	s.memory.Clear()
	return nil
}

// Clear empties the conversation memory. Idempotent; the session stays Ready.
func (s *Session) Clear() {
	s.memory.Clear()
}

// Ask runs the full pipeline for one question. Fragments are forwarded to
// sink as they arrive; sink may be nil when only the final answer matters.
// The user and assistant turns are committed to memory only after the stream
// completes cleanly, so cancelled or failed generations leave memory exactly
// as it was. Returns the complete answer text.
func (s *Session) Ask(ctx context.Context, question string, sink func(fragment string) error) (string, error) {
	s.mu.Lock()
	if s.state == StateActive {
		s.mu.Unlock()
		return "", ErrBusy
	}
	if s.unit == "" {
		s.mu.Unlock()
		return "", ErrNoUnit
	}
	s.state = StateActive
	unit, model := s.unit, s.model
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.state = StateReady
		s.mu.Unlock()
	}()

	answer, err := s.run(ctx, unit, model, question, sink)
	if err != nil {
		s.logger.Warn("question failed", "unit", unit, "model", model, "error", err)
		return "", err
	}

	s.memory.Append(conversation.Turn{Role: conversation.RoleUser, Content: question})
	s.memory.Append(conversation.Turn{Role: conversation.RoleAssistant, Content: answer})
	return answer, nil
}

func (s *Session) run(ctx context.Context, unit, model, question string, sink func(string) error) (string, error) {
	idx, err := s.cache.GetOrBuild(ctx, unit)
	if err != nil {
		return "", fmt.Errorf("index %s: %w", unit, err)
	}

	retrieved, err := s.retriever.Retrieve(ctx, idx, question, s.opts.TopK)
	if err != nil {
		return "", fmt.Errorf("retrieve: %w", err)
	}

	if s.opts.MinRelevance > 0 {
		if len(retrieved) == 0 || retrieved[0].Score < s.opts.MinRelevance {
			return "", ErrOutOfScope
		}
	}

	messages := s.assembler.Assemble(retrieved, s.memory.Turns(), question)

	stream, err := s.generator.Generate(ctx, model, messages)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var full []byte
	for stream.Next() {
		fragment := stream.Current()
		full = append(full, fragment...)
		if sink != nil {
			if err := sink(fragment); err != nil {
				return "", fmt.Errorf("deliver fragment: %w", err)
			}
		}
	}
	if err := stream.Err(); err != nil {
		return "", fmt.Errorf("generation stream: %w", err)
	}

	return string(full), nil
}
