// Package registry owns the ordered set of participants eligible for draws.
//
// Participants are unique under [models.NormalizeName]; the original spelling of each name is kept for display.
// Every mutation hands a snapshot of the roster to the change callback, which the session uses for persistence.
package registry

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/desertthunder/raffle/internal/models"
	"github.com/desertthunder/raffle/internal/shared"
)

// AnnotateFunc reports the prize a participant currently holds, if any.
type AnnotateFunc func(name string) (prize string, won bool)

// Registry is the participant roster. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	names    []string
	onChange func([]string)
}

// New creates a Registry seeded with initial, dropping empty and duplicate entries.
//
// onChange may be nil.
func New(initial []string, onChange func([]string)) *Registry {
	r := &Registry{onChange: onChange}
	for _, name := range initial {
		if r.validate(name) == nil {
			r.names = append(r.names, name)
		}
	}
	return r
}

// validate must be called with mu held.
func (r *Registry) validate(name string) error {
	key := models.NormalizeName(name)
	if key == "" {
		return shared.ErrEmptyName
	}
	if r.indexOf(key) >= 0 {
		return fmt.Errorf("%w: %s", shared.ErrDuplicateName, strings.TrimSpace(name))
	}
	return nil
}

func (r *Registry) indexOf(key string) int {
	return slices.IndexFunc(r.names, func(n string) bool { return models.NormalizeName(n) == key })
}

// Add appends name to the roster.
//
// Fails with [shared.ErrEmptyName] for blank input and [shared.ErrDuplicateName] when a case-insensitive match exists.
func (r *Registry) Add(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.validate(name); err != nil {
		return err
	}
	r.names = append(r.names, name)
	r.notify()
	return nil
}

// AddAll adds each name, skipping invalid ones. Returns the number added and the error for every skipped name.
//
// The change callback fires once for the whole batch.
func (r *Registry) AddAll(names []string) (int, []error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	added := 0
	for _, name := range names {
		if err := r.validate(name); err != nil {
			errs = append(errs, err)
			continue
		}
		r.names = append(r.names, name)
		added++
	}
	if added > 0 {
		r.notify()
	}
	return added, errs
}

// Remove deletes the first participant matching name. Reports whether one was removed.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(models.NormalizeName(name))
	if i < 0 {
		return false
	}
	r.names = slices.Delete(r.names, i, i+1)
	r.notify()
	return true
}

// RemoveAll empties the roster.
func (r *Registry) RemoveAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.names = nil
	r.notify()
}

// List returns a copy of the roster in insertion order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.names)
}

// Len returns the roster size.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}

// Contains reports whether a participant matching name is on the roster.
func (r *Registry) Contains(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.indexOf(models.NormalizeName(name)) >= 0
}

// Search returns the participants whose display text contains every token of query.
//
// The display text is "name", or "name - won prize" when annotate reports a win; matching is case-insensitive
// and tokens may appear in any order. An empty query matches everyone. annotate may be nil.
func (r *Registry) Search(query string, annotate AnnotateFunc) []string {
	tokens := strings.Fields(strings.ToLower(strings.TrimSpace(query)))

	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(tokens) == 0 {
		return slices.Clone(r.names)
	}

	var matches []string
	for _, name := range r.names {
		var prize string
		var won bool
		if annotate != nil {
			prize, won = annotate(name)
		}
		text := strings.ToLower(models.DisplayText(name, prize, won))

		if matchesAll(text, tokens) {
			matches = append(matches, name)
		}
	}
	return matches
}

func matchesAll(text string, tokens []string) bool {
	for _, tok := range tokens {
		if !strings.Contains(text, tok) {
			return false
		}
	}
	return true
}

// notify must be called with mu held so snapshots reach the callback in mutation order.
func (r *Registry) notify() {
	if r.onChange != nil {
		r.onChange(slices.Clone(r.names))
	}
}
