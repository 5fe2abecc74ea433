// Package raffle composes the roster, the winner ledger, the draw engine and persistence into one session.
//
// A [Session] is what the CLI and the TUI talk to. Every roster or ledger mutation is saved to the [store.Store]
// on a best-effort basis: a failed save is logged and the in-memory state stays authoritative.
package raffle

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/raffle/internal/draw"
	"github.com/desertthunder/raffle/internal/ledger"
	"github.com/desertthunder/raffle/internal/models"
	"github.com/desertthunder/raffle/internal/registry"
	"github.com/desertthunder/raffle/internal/shared"
	"github.com/desertthunder/raffle/internal/store"
)

const saveTimeout = 5 * time.Second

// DefaultRoster seeds a session when nothing is stored and no seed is configured.
var DefaultRoster = []string{
	"Alice", "Bob", "Cara", "Dmitri", "Elena", "Farah",
	"Gustavo", "Hana", "Ibrahim", "Jun", "Kofi", "Lena",
}

// Options configures [Open].
type Options struct {
	Store  store.Store     // Persistence (default: in-memory)
	Policy draw.Policy     // Pool eligibility rule
	Draw   draw.Options    // Reveal timing; Logger is filled from Logger when unset
	Seed   []string        // Roster used when none is stored (default: DefaultRoster)
	Logger *log.Logger     // Logger (default: discard)
	Ledger []ledger.Option // Extra ledger options, e.g. a fixed clock in tests
}

// Session is a live raffle. Safe for concurrent use.
type Session struct {
	mu       sync.Mutex
	unsynced map[string]bool // keys whose stored value could not be read at Open
	store    store.Store
	policy   draw.Policy
	logger   *log.Logger
	registry *registry.Registry
	ledger   *ledger.Ledger
	engine   *draw.Engine
}

// Open restores the roster and ledger from opts.Store and starts an idle engine.
//
// A roster that cannot be loaded falls back to the seed; a ledger that cannot be loaded starts empty. Both
// failures are logged, not returned, and the fallback is never written over the unread stored value.
func Open(ctx context.Context, opts Options) (*Session, error) {
	if opts.Store == nil {
		opts.Store = store.NewMemoryStore()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Draw.Logger == nil {
		opts.Draw.Logger = shared.WithLogger(opts.Logger, "component", "draw")
	}
	if opts.Policy != draw.WithReplacement && opts.Policy != draw.WithoutReplacement {
		return nil, fmt.Errorf("unknown draw policy %d", opts.Policy)
	}

	s := &Session{
		store:    opts.Store,
		policy:   opts.Policy,
		logger:   opts.Logger,
		unsynced: make(map[string]bool),
	}

	names, ok, err := store.LoadParticipants(ctx, s.store)
	if err != nil {
		s.logger.Warn("failed to load participants, using seed roster", "error", err)
		s.unsynced[store.KeyParticipants] = true
	}
	if !ok {
		names = opts.Seed
		if len(names) == 0 {
			names = DefaultRoster
		}
		s.logger.Debug("seeding roster", "count", len(names))
	}
	seeded := !ok && err == nil

	records, _, err := store.LoadWinners(ctx, s.store)
	if err != nil {
		s.logger.Warn("failed to load winners, starting with an empty ledger", "error", err)
		s.unsynced[store.KeyWinners] = true
		records = nil
	}

	s.registry = registry.New(names, s.saveParticipants)
	s.ledger = ledger.New(records, s.saveWinners, opts.Ledger...)
	s.engine = draw.NewEngine(s.EligiblePool, s.ledger, opts.Draw)

	if seeded {
		s.saveParticipants(s.registry.List())
	}

	s.logger.Info("raffle session opened",
		"participants", s.registry.Len(),
		"winners", s.ledger.TotalCount(),
		"policy", s.policy,
	)
	return s, nil
}

// writable reports whether key may be saved. After a failed load the stored value is unknown, so saves stay
// off until a reload shows that nothing is stored under key.
func (s *Session) writable(ctx context.Context, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.unsynced[key] {
		return true
	}
	_, ok, err := s.store.Load(ctx, key)
	switch {
	case err != nil:
		s.logger.Warn("stored state still unreadable, keeping changes in memory", "key", key, "error", err)
		return false
	case ok:
		s.logger.Warn("stored state was never loaded, not overwriting it", "key", key)
		return false
	}
	delete(s.unsynced, key)
	return true
}

func (s *Session) saveParticipants(names []string) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if !s.writable(ctx, store.KeyParticipants) {
		return
	}
	if err := store.SaveParticipants(ctx, s.store, names); err != nil {
		s.logger.Warn("failed to save participants", "count", len(names), "error", err)
	}
}

func (s *Session) saveWinners(records []models.WinnerRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if !s.writable(ctx, store.KeyWinners) {
		return
	}
	if err := store.SaveWinners(ctx, s.store, records); err != nil {
		s.logger.Warn("failed to save winners", "count", len(records), "error", err)
	}
}

// Policy returns the eligibility rule in force.
func (s *Session) Policy() draw.Policy { return s.policy }

// Participants returns the roster in insertion order.
func (s *Session) Participants() []string { return s.registry.List() }

// Search filters the roster by query, matching against "name - won prize" for winners.
func (s *Session) Search(query string) []string {
	return s.registry.Search(query, s.ledger.CurrentPrizeOf)
}

// AddParticipant adds name to the roster.
func (s *Session) AddParticipant(name string) error {
	if err := s.registry.Add(name); err != nil {
		return err
	}
	s.logger.Debug("participant added", "name", name)
	return nil
}

// ImportParticipants adds names in bulk, skipping blanks and duplicates.
func (s *Session) ImportParticipants(names []string) (int, []error) {
	added, errs := s.registry.AddAll(names)
	s.logger.Info("participants imported", "added", added, "skipped", len(errs))
	return added, errs
}

// RemoveParticipant removes name from the roster. Winner records are kept.
func (s *Session) RemoveParticipant(name string) bool {
	return s.registry.Remove(name)
}

// HasParticipant reports whether name is on the roster.
func (s *Session) HasParticipant(name string) bool {
	return s.registry.Contains(name)
}

// RemoveAllParticipants empties the roster. Winner records are kept.
func (s *Session) RemoveAllParticipants() {
	s.registry.RemoveAll()
	s.logger.Info("all participants removed")
}

// EligiblePool returns the names the next draw picks from.
func (s *Session) EligiblePool() []string {
	return s.policy.Eligible(s.registry.List(), s.ledger.HasWon)
}

// StartDraw starts a draw for prize. See [draw.Engine.StartDraw].
func (s *Session) StartDraw(prize string) (<-chan draw.Event, bool) {
	return s.engine.StartDraw(prize)
}

// Dismiss clears a committed reveal.
func (s *Session) Dismiss() bool { return s.engine.Dismiss() }

// CancelDraw aborts the in-flight draw without recording a winner.
func (s *Session) CancelDraw() { s.engine.Cancel() }

// Status returns the engine state for display.
func (s *Session) Status() draw.Status { return s.engine.Status() }

// ReEnter removes the most recent winner record for name, making them eligible again under
// [draw.WithoutReplacement]. Reports whether a record was removed.
func (s *Session) ReEnter(name string) bool {
	ok := s.ledger.ReEnter(name)
	if ok {
		s.logger.Info("participant re-entered", "name", name)
	}
	return ok
}

// ReEnterFrom removes the most recent record for name within the prize group.
func (s *Session) ReEnterFrom(name, prize string) bool {
	ok := s.ledger.ReEnterFrom(name, prize)
	if ok {
		s.logger.Info("participant re-entered", "name", name, "prize", prize)
	}
	return ok
}

// RemoveRecord deletes the winner record with the given ID. Fails with [shared.ErrNotFound] for unknown IDs.
func (s *Session) RemoveRecord(id string) error {
	if err := s.ledger.Remove(id); err != nil {
		return err
	}
	s.logger.Info("winner record removed", "id", id)
	return nil
}

// Winners returns the ledger grouped by prize.
func (s *Session) Winners() ledger.Groups { return s.ledger.GroupedByPrize() }

// Records returns every winner record in chronological order.
func (s *Session) Records() []models.WinnerRecord { return s.ledger.Records() }

// TotalWinners returns the number of winner records.
func (s *Session) TotalWinners() int { return s.ledger.TotalCount() }

// CurrentPrizeOf returns the latest prize won by name.
func (s *Session) CurrentPrizeOf(name string) (string, bool) { return s.ledger.CurrentPrizeOf(name) }

// ClearWinners drops every winner record.
func (s *Session) ClearWinners() {
	s.ledger.Clear()
	s.logger.Info("winners cleared")
}

// Close stops any in-flight draw. No winner is committed after Close returns.
func (s *Session) Close() error {
	return s.engine.Close()
}
