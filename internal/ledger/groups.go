package ledger

import (
	"iter"
	"slices"

	"github.com/desertthunder/raffle/internal/models"
)

// Groups is an ordered multimap from prize to winner names.
//
// Prizes keep the order in which they first appear in the ledger; names within a prize are latest first.
type Groups struct {
	prizes []string
	names  map[string][]string
}

// GroupByPrize builds [Groups] from a record log in chronological order.
func GroupByPrize(records []models.WinnerRecord) Groups {
	g := Groups{names: make(map[string][]string)}
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		g.names[rec.Prize] = append(g.names[rec.Prize], rec.Name)
	}
	seen := make(map[string]bool, len(g.names))
	for _, rec := range records {
		if !seen[rec.Prize] {
			seen[rec.Prize] = true
			g.prizes = append(g.prizes, rec.Prize)
		}
	}
	return g
}

// Prizes returns the prize labels in first-appearance order.
func (g Groups) Prizes() []string { return slices.Clone(g.prizes) }

// Names returns the winners of prize, latest first.
func (g Groups) Names(prize string) []string { return slices.Clone(g.names[prize]) }

// Len returns the number of prize groups.
func (g Groups) Len() int { return len(g.prizes) }

// Total returns the number of names across all groups.
func (g Groups) Total() int {
	n := 0
	for _, names := range g.names {
		n += len(names)
	}
	return n
}

// All iterates prize groups in order.
func (g Groups) All() iter.Seq2[string, []string] {
	return func(yield func(string, []string) bool) {
		for _, prize := range g.prizes {
			if !yield(prize, slices.Clone(g.names[prize])) {
				return
			}
		}
	}
}

