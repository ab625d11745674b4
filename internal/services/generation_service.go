// Package services – GenerationService
//
// This file implements the fallback-aware generation orchestrator, the
// heart of the workflow execution pipeline. One invocation maps a
// (workflow ID, raw input) pair to a compiled prompt, walks an explicit
// ordered provider chain until one attempt succeeds, and records the
// outcome as an immutable history entry.
//
// Failure policy: each provider is tried exactly once per invocation, in
// order, strictly sequentially. A later provider is never contacted once
// an earlier one has succeeded, which bounds outbound requests to one at a
// time and keeps the happy path at a single call. There is no
// retry-with-backoff inside an attempt; that is a deliberate simplicity
// and latency trade-off, not an oversight. When the chain is exhausted the
// caller receives a single AllProvidersError synthesized from the
// normalized per-attempt failures.
//
// Observability: Execute is OpenTelemetry-instrumented; spans carry the
// workflow and user identifiers plus which provider ultimately served the
// request.
package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/automate-gpt/go-workflow-backend/internal/domain"
	"github.com/automate-gpt/go-workflow-backend/internal/provider"
	"github.com/automate-gpt/go-workflow-backend/internal/workflow"
)

// ResultStore is the persistence contract the orchestrator depends on.
// *store.Store satisfies it; tests substitute fakes.
type ResultStore interface {
	// SaveResult appends one history record, evicting oldest at the cap.
	SaveResult(ctx context.Context, record domain.WorkflowResult, userID string) error
	// GetSettings returns the effective settings for the namespace.
	GetSettings(ctx context.Context, userID string) (domain.AppSettings, error)
}

// GenerationService orchestrates provider attempts and records outcomes.
//
// Providers is the explicit fallback chain in attempt order; adding a
// third fallback is appending to the slice. All dependencies are injected;
// the service holds no process-wide state and no shared mutable state
// across invocations.
type GenerationService struct {
	Providers []provider.Provider
	Store     ResultStore

	// MaxInputRunes guards against unbounded request bodies. Zero disables
	// the guard.
	MaxInputRunes int

	// MaxFieldRunes caps the input/output stored per history record.
	// Zero means DefaultMaxFieldRunes.
	MaxFieldRunes int
}

// DefaultMaxFieldRunes is the storage truncation threshold for the input
// and output fields of a history record.
const DefaultMaxFieldRunes = 10000

// NewGenerationService constructs the orchestrator over the given provider
// chain and store.
func NewGenerationService(providers []provider.Provider, st ResultStore) *GenerationService {
	return &GenerationService{
		Providers:     providers,
		Store:         st,
		MaxInputRunes: 50000,
		MaxFieldRunes: DefaultMaxFieldRunes,
	}
}

// Execute runs one pipeline invocation for userID (empty for the anonymous
// namespace): validate input, compile the prompt, walk the provider chain,
// and on success persist and return the history record.
//
// Error contract:
//   - ErrEmptyInput / ErrInputTooLong: rejected before any provider call.
//   - workflow.ErrTemplateNotFound: unknown workflow ID (contract bug).
//   - *AllProvidersError: every provider attempt failed.
//
// A degraded history write never fails a successful generation.
func (s *GenerationService) Execute(ctx context.Context, workflowID, rawInput, userID string) (*domain.WorkflowResult, error) {
	tr := otel.Tracer("services/GenerationService")
	ctx, span := tr.Start(ctx, "Execute",
		trace.WithAttributes(
			attribute.String("workflow.id", workflowID),
			attribute.String("user.id", userID),
		),
	)
	defer span.End()

	input := strings.TrimSpace(rawInput)
	if input == "" {
		return nil, ErrEmptyInput
	}
	if s.MaxInputRunes > 0 && utf8.RuneCountInString(input) > s.MaxInputRunes {
		return nil, ErrInputTooLong
	}

	tpl, err := workflow.Get(workflowID)
	if err != nil {
		return nil, err
	}

	settings, err := s.Store.GetSettings(ctx, userID)
	if err != nil {
		// Settings are advisory; fall back to defaults rather than failing
		// the invocation.
		log.Warn().Err(err).Str("user_id", userID).Msg("settings unavailable, using defaults")
		settings = domain.DefaultSettings()
	}

	prompt := workflow.Compile(tpl, input)

	outcome, genErr := s.runChain(ctx, prompt, settings.MaxTokens)
	if genErr != nil {
		return nil, genErr
	}

	record := s.record(workflowID, input, outcome)
	if err := s.Store.SaveResult(ctx, record, userID); err != nil {
		// The store recovers capacity problems internally; anything that
		// still escapes is logged and swallowed so the generation stays
		// successful for the caller.
		log.Error().Err(err).Str("result_id", record.ID).Msg("history write failed")
	}

	span.SetAttributes(attribute.Int("generation.tokens", outcome.TokenCount))
	return &record, nil
}

// runChain walks the provider list sequentially, returning the first
// successful outcome. Failures are normalized and collected; an unexpected
// non-Failure error from a provider is treated as a generic service error
// so nothing raw escapes the orchestrator.
func (s *GenerationService) runChain(ctx context.Context, prompt string, maxTokens int) (*domain.GenerationOutcome, error) {
	failures := make([]*provider.Failure, 0, len(s.Providers))

	for i, p := range s.Providers {
		outcome, err := p.Generate(ctx, prompt, maxTokens)
		if err == nil {
			if i > 0 {
				// Diagnostic only: the caller is not told a fallback occurred.
				log.Info().
					Str("provider", p.Name()).
					Int("attempt", i+1).
					Msg("generation served by fallback provider")
			}
			return outcome, nil
		}

		var f *provider.Failure
		if !errors.As(err, &f) {
			f = &provider.Failure{
				Provider: p.Name(),
				Kind:     provider.KindServiceError,
				Message:  "The generation service failed unexpectedly.",
			}
		}
		failures = append(failures, f)
		log.Warn().
			Str("provider", p.Name()).
			Str("kind", string(f.Kind)).
			Msg("provider attempt failed, falling through")
	}

	return nil, &AllProvidersError{Failures: failures}
}

// record builds the immutable history entry for a successful outcome,
// truncating oversized fields before storage.
func (s *GenerationService) record(workflowID, input string, outcome *domain.GenerationOutcome) domain.WorkflowResult {
	max := s.MaxFieldRunes
	if max <= 0 {
		max = DefaultMaxFieldRunes
	}
	return domain.WorkflowResult{
		ID:         uuid.NewString(),
		WorkflowID: workflowID,
		Input:      truncateRunes(input, max),
		Output:     truncateRunes(outcome.Content, max),
		Timestamp:  time.Now().UTC(),
		TokenCount: outcome.TokenCount,
	}
}

// truncateRunes clips s to at most max runes.
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
