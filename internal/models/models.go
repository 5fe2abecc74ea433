// package models defines the data model for the raffle
package models

import (
	"strings"
	"time"
)

// WinnerRecord is an immutable entry in the winner ledger.
type WinnerRecord struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Prize     string    `json:"prize"`
	Timestamp time.Time `json:"timestamp"`
}

// NormalizeName returns the identity key of a participant name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SameParticipant reports whether a and b denote the same participant.
func SameParticipant(a, b string) bool {
	return NormalizeName(a) == NormalizeName(b)
}

// DisplayText is the text a participant is searched and shown by: "name" or "name - won prize".
func DisplayText(name, prize string, won bool) string {
	if !won {
		return name
	}
	return name + " - won " + prize
}
