package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/automate-gpt/go-workflow-backend/internal/domain"
)

// DefaultHistoryCap is the number of history records kept per namespace
// before oldest-first eviction kicks in.
const DefaultHistoryCap = 50

// Store exposes the application-level persistence operations (history,
// settings, accounts, session) on top of a KV backend.
//
// Every mutation is a whole-value read-modify-write cycle; mu serializes
// those cycles so the eviction and ordering invariants hold even when the
// HTTP layer runs handlers concurrently.
type Store struct {
	kv KV
	mu sync.Mutex

	// HistoryCap bounds the stored history list. Zero means DefaultHistoryCap.
	HistoryCap int
}

// New returns a Store over the given KV backend with the default cap.
func New(kv KV) *Store {
	return &Store{kv: kv, HistoryCap: DefaultHistoryCap}
}

func (s *Store) cap() int {
	if s.HistoryCap > 0 {
		return s.HistoryCap
	}
	return DefaultHistoryCap
}

// --- History ---

// SaveResult prepends record to the namespaced history list, evicting the
// oldest entries once the list exceeds the cap.
//
// Write failures are recovered locally: the list is shrunk by half and the
// write retried until it either succeeds or nothing is left to shrink. A
// degraded history write is logged but never surfaced to the caller; a
// successful generation must always reach the user as successful.
func (s *Store) SaveResult(ctx context.Context, record domain.WorkflowResult, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.loadHistory(ctx, userID)
	if err != nil {
		// Unreadable history is treated as empty rather than blocking the save.
		log.Warn().Err(err).Str("user_id", userID).Msg("history unreadable, starting fresh")
		history = nil
	}

	history = append([]domain.WorkflowResult{record}, history...)
	if max := s.cap(); len(history) > max {
		history = history[:max]
	}

	for len(history) > 0 {
		if err := s.writeHistory(ctx, history, userID); err == nil {
			return nil
		}
		// Storage capacity exceeded (or similar): halve and retry.
		history = history[:len(history)/2]
	}
	log.Error().Str("user_id", userID).Msg("history write degraded, record dropped")
	return nil
}

// GetHistory returns the namespaced history list, newest first. A missing
// or unreadable list yields an empty slice, never an error to the UI path.
func (s *Store) GetHistory(ctx context.Context, userID string) ([]domain.WorkflowResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	history, err := s.loadHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []domain.WorkflowResult{}
	}
	return history, nil
}

// ClearHistory removes the namespaced history list entirely.
func (s *Store) ClearHistory(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kv.Delete(ctx, namespacedKey(keyHistory, userID))
}

// ExportHistory serializes the full ordered history list into the
// downloadable export artifact.
func (s *Store) ExportHistory(ctx context.Context, userID string) (*domain.HistoryExport, error) {
	history, err := s.GetHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &domain.HistoryExport{
		ExportedAt: time.Now().UTC(),
		UserID:     userID,
		Count:      len(history),
		Results:    history,
	}, nil
}

func (s *Store) loadHistory(ctx context.Context, userID string) ([]domain.WorkflowResult, error) {
	raw, ok, err := s.kv.Get(ctx, namespacedKey(keyHistory, userID))
	if err != nil || !ok {
		return nil, err
	}
	var out []domain.WorkflowResult
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		// Corrupt stored JSON degrades to an empty list, same as settings:
		// a damaged history entry must not take the UI path down with it.
		log.Warn().Err(err).Str("user_id", userID).Msg("history entry corrupt, treating as empty")
		return nil, nil
	}
	return out, nil
}

func (s *Store) writeHistory(ctx context.Context, history []domain.WorkflowResult, userID string) error {
	raw, err := json.Marshal(history)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, namespacedKey(keyHistory, userID), string(raw))
}

// --- Settings ---

// GetSettings returns the namespaced settings, falling back to defaults
// when none are stored or the stored value is unreadable. Values are
// clamped on the way out so stale entries never escape the valid range.
func (s *Store) GetSettings(ctx context.Context, userID string) (domain.AppSettings, error) {
	raw, ok, err := s.kv.Get(ctx, namespacedKey(keySettings, userID))
	if err != nil {
		return domain.DefaultSettings(), err
	}
	if !ok {
		return domain.DefaultSettings(), nil
	}
	var out domain.AppSettings
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return domain.DefaultSettings(), nil
	}
	return out.Clamp(), nil
}

// SaveSettings overwrites the namespaced settings wholesale.
func (s *Store) SaveSettings(ctx context.Context, settings domain.AppSettings, userID string) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, namespacedKey(keySettings, userID), string(raw))
}

// --- Accounts & session (owned by the account service) ---

// LoadAccounts returns all stored account records.
func (s *Store) LoadAccounts(ctx context.Context) ([]domain.UserAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadAccounts(ctx)
}

// UpdateAccounts applies fn to the stored account list and writes the
// result back, holding the store mutex across the whole cycle so
// concurrent updates never overwrite each other's records. fn receives the
// current list and returns the list to persist; returning an error aborts
// the update without writing.
func (s *Store) UpdateAccounts(ctx context.Context, fn func([]domain.UserAccount) ([]domain.UserAccount, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.loadAccounts(ctx)
	if err != nil {
		return err
	}
	updated, err := fn(accounts)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(updated)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, keyAccounts, string(raw))
}

func (s *Store) loadAccounts(ctx context.Context) ([]domain.UserAccount, error) {
	raw, ok, err := s.kv.Get(ctx, keyAccounts)
	if err != nil || !ok {
		return nil, err
	}
	var out []domain.UserAccount
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CurrentSession returns the user ID the session pointer references, or ""
// when signed out.
func (s *Store) CurrentSession(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok, err := s.kv.Get(ctx, keySession)
	if err != nil || !ok {
		return "", err
	}
	var id string
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		return "", err
	}
	return id, nil
}

// SetCurrentSession points the session at userID; an empty ID clears it.
func (s *Store) SetCurrentSession(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if userID == "" {
		return s.kv.Delete(ctx, keySession)
	}
	raw, err := json.Marshal(userID)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, keySession, string(raw))
}
