// Package ledger records who won which prize.
//
// The ledger is an append-only log of [models.WinnerRecord] values, except for re-entry which deletes exactly one
// record. Grouped views ([Groups]) are recomputed from the log on every call rather than maintained in place.
package ledger

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/raffle/internal/models"
	"github.com/desertthunder/raffle/internal/shared"
)

// Ledger is the winner record log. Safe for concurrent use.
type Ledger struct {
	mu       sync.RWMutex
	records  []models.WinnerRecord
	onChange func([]models.WinnerRecord)
	now      func() time.Time
	newID    func() string
}

// Option configures a [Ledger].
type Option func(*Ledger)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDs overrides the record ID generator.
func WithIDs(newID func() string) Option {
	return func(l *Ledger) { l.newID = newID }
}

// New creates a Ledger restored from records, which must be in chronological order.
//
// onChange receives a snapshot after every mutation and may be nil.
func New(records []models.WinnerRecord, onChange func([]models.WinnerRecord), opts ...Option) *Ledger {
	l := &Ledger{
		records:  slices.Clone(records),
		onChange: onChange,
		now:      time.Now,
		newID:    shared.GenerateID,
	}
	for _, opt := range opts {
		opt(l)
	}
	for i := range l.records {
		if l.records[i].ID == "" {
			l.records[i].ID = l.newID()
		}
	}
	return l
}

// Record appends a new winner record stamped with the current time.
func (l *Ledger) Record(name, prize string) (models.WinnerRecord, error) {
	if strings.TrimSpace(name) == "" {
		return models.WinnerRecord{}, shared.ErrEmptyName
	}
	if strings.TrimSpace(prize) == "" {
		return models.WinnerRecord{}, shared.ErrEmptyPrize
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	rec := models.WinnerRecord{
		ID:        l.newID(),
		Name:      name,
		Prize:     strings.TrimSpace(prize),
		Timestamp: l.now(),
	}
	l.records = append(l.records, rec)
	l.notify()
	return rec, nil
}

// ReEnter removes the most recent record for name, returning the participant to the pool.
//
// Reports whether a record was removed.
func (l *Ledger) ReEnter(name string) bool {
	return l.removeLatest(func(rec models.WinnerRecord) bool {
		return models.SameParticipant(rec.Name, name)
	})
}

// ReEnterFrom removes the most recent record for name within prize's group.
func (l *Ledger) ReEnterFrom(name, prize string) bool {
	return l.removeLatest(func(rec models.WinnerRecord) bool {
		return rec.Prize == prize && models.SameParticipant(rec.Name, name)
	})
}

// Remove deletes the record with the given ID.
func (l *Ledger) Remove(id string) error {
	if !l.removeLatest(func(rec models.WinnerRecord) bool { return rec.ID == id }) {
		return fmt.Errorf("%w: record %s", shared.ErrNotFound, id)
	}
	return nil
}

func (l *Ledger) removeLatest(match func(models.WinnerRecord) bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := len(l.records) - 1; i >= 0; i-- {
		if match(l.records[i]) {
			l.records = slices.Delete(l.records, i, i+1)
			l.notify()
			return true
		}
	}
	return false
}

// Clear drops every record.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = nil
	l.notify()
}

// GroupedByPrize returns winner names per prize, latest winner first within each prize.
func (l *Ledger) GroupedByPrize() Groups {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return GroupByPrize(l.records)
}

// CurrentPrizeOf returns the latest prize won by name.
func (l *Ledger) CurrentPrizeOf(name string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for i := len(l.records) - 1; i >= 0; i-- {
		if models.SameParticipant(l.records[i].Name, name) {
			return l.records[i].Prize, true
		}
	}
	return "", false
}

// HasWon reports whether name holds any record.
func (l *Ledger) HasWon(name string) bool {
	_, ok := l.CurrentPrizeOf(name)
	return ok
}

// Records returns a copy of the log in chronological order.
func (l *Ledger) Records() []models.WinnerRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.records)
}

// TotalCount returns the number of records across all prizes.
func (l *Ledger) TotalCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// notify must be called with mu held.
func (l *Ledger) notify() {
	if l.onChange != nil {
		l.onChange(slices.Clone(l.records))
	}
}
