// Package provider defines the generation provider capability contract and
// its implementations. A provider maps (prompt, token budget) to generated
// text plus a token count, or to a typed Failure. Providers are stateless
// with respect to the orchestrator beyond their own connection and
// credential configuration, which makes them freely substitutable.
//
// Implementations in this package:
//
//   - OpenAI: primary hosted chat-completions client with fine-grained
//     failure classification (credentials, quota, rate limit, service,
//     network).
//   - HuggingFace: secondary hosted inference client built on langchaingo;
//     by design every failure collapses to a generic service error.
//   - Local: deterministic offline synthesizer that never fails, used as
//     the terminal fallback when no hosted service is reachable or
//     configured.
package provider

import (
	"context"
	"fmt"

	"github.com/automate-gpt/go-workflow-backend/internal/domain"
)

// Provider is the capability contract every generation backend satisfies.
//
// Generate must not return raw transport or SDK errors for expected failure
// conditions (bad credentials, quota exhaustion, rate limiting, transient
// service or network problems); those are reported as a *Failure so the
// orchestrator can reason about them. maxTokens is a positive upper bound
// on requested output length; a provider may clamp it to its own ceiling.
type Provider interface {
	// Name identifies the provider in logs and failure messages.
	Name() string
	// Generate produces text for the prompt, honoring ctx for cancellation.
	Generate(ctx context.Context, prompt string, maxTokens int) (*domain.GenerationOutcome, error)
}

// FailureKind categorizes a single provider attempt's failure. The kinds
// mirror the distinguishable upstream conditions; everything that cannot
// be told apart collapses to KindServiceError.
type FailureKind string

const (
	KindInvalidCredentials FailureKind = "invalid_credentials"
	KindQuotaExceeded      FailureKind = "quota_exceeded"
	KindRateLimited        FailureKind = "rate_limited"
	KindServiceError       FailureKind = "service_error"
	KindNetworkError       FailureKind = "network_error"
)

// Transient reports whether the kind describes a condition that may clear
// on its own (service down, network blip, rate limit), as opposed to a
// configuration or account problem that will keep failing until fixed.
func (k FailureKind) Transient() bool {
	switch k {
	case KindRateLimited, KindServiceError, KindNetworkError:
		return true
	default:
		return false
	}
}

// Failure is the typed error a provider returns for an expected failure
// condition. Message is already normalized to user-presentable text; raw
// upstream payloads never travel past the provider boundary.
type Failure struct {
	Provider string
	Kind     FailureKind
	Message  string
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s: %s", f.Provider, f.Kind, f.Message)
}

// UserMessage returns the short, human-readable text safe to surface.
func (f *Failure) UserMessage() string { return f.Message }

// newFailure builds a Failure for the named provider.
func newFailure(name string, kind FailureKind, msg string) *Failure {
	return &Failure{Provider: name, Kind: kind, Message: msg}
}

// EstimateTokens approximates a token count from text length. Both the
// secondary and the offline providers use it when the upstream response
// carries no usage accounting. Four characters per token is the same rough
// heuristic hosted tokenizers advertise for English text.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}
