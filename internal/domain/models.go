// Package domain defines the core data model of the workflow backend:
// workflow templates, generation requests and outcomes, persisted history
// records, per-user settings, and local account records.
//
// These types are plain values serialized to JSON by the persistence layer;
// none of them carry behavior beyond construction helpers and defaults.
package domain

import "time"

// InputMarker is the single substitution point every workflow prompt
// pattern must contain exactly once.
const InputMarker = "{input}"

// WorkflowTemplate is an immutable, pre-authored prompt pattern with one
// input substitution point. Templates are defined at process start and
// never mutated; lookup is by ID.
//
// Fields:
//   - ID: unique registry key (e.g. "summarizer").
//   - Title: display name shown in clients.
//   - Description: one-line explanation of what the workflow produces.
//   - Placeholder: hint text for the input box.
//   - PromptPattern: prompt text containing InputMarker exactly once.
type WorkflowTemplate struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Placeholder   string `json:"placeholder"`
	PromptPattern string `json:"prompt_pattern"`
}

// GenerationRequest is the transient value handed to a provider: the fully
// compiled prompt and an upper bound on output length. Constructed fresh
// per invocation and never persisted.
type GenerationRequest struct {
	PromptText string
	MaxTokens  int
}

// GenerationOutcome is the successful result of a single provider call.
// A provider call yields exactly one of: a GenerationOutcome, or a typed
// failure. Never both, never a partially filled value.
type GenerationOutcome struct {
	// Content is the generated text, used exactly as returned.
	Content string `json:"content"`
	// TokenCount is the provider-reported (or estimated) token usage, >= 0.
	TokenCount int `json:"token_count"`
}

// WorkflowResult is one persisted history record capturing a completed,
// successful generation. Records are created exactly once by the recorder,
// never mutated, and only removed by bulk clear or oldest-first eviction.
type WorkflowResult struct {
	ID         string    `json:"id"`
	WorkflowID string    `json:"workflow_id"`
	Input      string    `json:"input"`
	Output     string    `json:"output"`
	Timestamp  time.Time `json:"timestamp"`
	TokenCount int       `json:"tokens,omitempty"`
}

// Settings bounds for MaxTokens. Values outside the range are clamped on
// read and rejected on save.
const (
	MinMaxTokens = 100
	MaxMaxTokens = 4000
)

// AppSettings is the per-user (or global, when unnamespaced) generation
// configuration. Saved wholesale; one logical copy per namespace.
type AppSettings struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
}

// DefaultSettings returns the settings used before a user ever saves any.
func DefaultSettings() AppSettings {
	return AppSettings{
		Model:     "gpt-3.5-turbo",
		MaxTokens: 1000,
	}
}

// Valid reports whether the settings are acceptable for saving.
func (s AppSettings) Valid() bool {
	return s.Model != "" && s.MaxTokens >= MinMaxTokens && s.MaxTokens <= MaxMaxTokens
}

// Clamp returns a copy with MaxTokens forced into [MinMaxTokens, MaxMaxTokens]
// and an empty model replaced by the default. Used on read so that stale or
// hand-edited stored values never leak out of range.
func (s AppSettings) Clamp() AppSettings {
	out := s
	if out.Model == "" {
		out.Model = DefaultSettings().Model
	}
	if out.MaxTokens < MinMaxTokens {
		out.MaxTokens = MinMaxTokens
	}
	if out.MaxTokens > MaxMaxTokens {
		out.MaxTokens = MaxMaxTokens
	}
	return out
}

// UserAccount is a local credential record owned exclusively by the account
// service. The generation pipeline never reads or writes accounts; it only
// receives a user ID for namespacing persisted results.
//
// PasswordHash is a salted one-way digest (bcrypt); plain-text passwords
// are never stored or compared.
type UserAccount struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"password_hash"`
	CreatedAt      time.Time `json:"created_at"`
	LastSignedInAt time.Time `json:"last_signed_in_at"`
}

// PublicAccount is the externally visible projection of a UserAccount,
// with the credential digest stripped.
type PublicAccount struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	LastSignedInAt time.Time `json:"last_signed_in_at"`
}

// Public returns the account without its credential digest.
func (u UserAccount) Public() PublicAccount {
	return PublicAccount{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		LastSignedInAt: u.LastSignedInAt,
	}
}

// HistoryExport is the downloadable artifact produced by the export
// operation: a timestamped snapshot of the full ordered history list.
type HistoryExport struct {
	ExportedAt time.Time        `json:"exported_at"`
	UserID     string           `json:"user_id,omitempty"`
	Count      int              `json:"count"`
	Results    []WorkflowResult `json:"results"`
}
