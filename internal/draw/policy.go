package draw

import (
	"fmt"
	"strings"

	"github.com/desertthunder/raffle/internal/shared"
)

// Policy is the pool eligibility rule applied across prizes.
type Policy int

const (
	// WithoutReplacement excludes every participant that already holds a winner record.
	WithoutReplacement Policy = iota
	// WithReplacement draws from the full roster every time.
	WithReplacement
)

func (p Policy) String() string {
	switch p {
	case WithoutReplacement:
		return "without_replacement"
	case WithReplacement:
		return "with_replacement"
	default:
		return ""
	}
}

// ParsePolicy parses a config value. An empty string selects [WithoutReplacement].
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "without_replacement":
		return WithoutReplacement, nil
	case "with_replacement":
		return WithReplacement, nil
	default:
		return WithoutReplacement, fmt.Errorf("%w: unknown draw policy %q", shared.ErrInvalidConfig, s)
	}
}

// Eligible returns the subset of roster the next draw may pick from, preserving roster order.
func (p Policy) Eligible(roster []string, hasWon func(name string) bool) []string {
	pool := make([]string, 0, len(roster))
	for _, name := range roster {
		if p == WithoutReplacement && hasWon != nil && hasWon(name) {
			continue
		}
		pool = append(pool, name)
	}
	return pool
}
