package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/raffle/internal/models"
	"github.com/desertthunder/raffle/internal/shared"
)

const (
	KeyParticipants = "participants"
	KeyWinners      = "winners"
)

// Store loads and saves raw values by key.
//
// Load reports ok=false when the key has never been saved.
type Store interface {
	Load(ctx context.Context, key string) (value []byte, ok bool, err error)
	Save(ctx context.Context, key string, value []byte) error
}

// LoadParticipants returns the saved roster. ok is false when nothing was saved yet.
func LoadParticipants(ctx context.Context, s Store) ([]string, bool, error) {
	var names []string
	ok, err := load(ctx, s, KeyParticipants, &names)
	return names, ok, err
}

// SaveParticipants replaces the saved roster.
func SaveParticipants(ctx context.Context, s Store, names []string) error {
	if names == nil {
		names = []string{}
	}
	return save(ctx, s, KeyParticipants, names)
}

// LoadWinners returns the saved ledger in chronological order. ok is false when nothing was saved yet.
func LoadWinners(ctx context.Context, s Store) ([]models.WinnerRecord, bool, error) {
	var records []models.WinnerRecord
	ok, err := load(ctx, s, KeyWinners, &records)
	return records, ok, err
}

// SaveWinners replaces the saved ledger.
func SaveWinners(ctx context.Context, s Store, records []models.WinnerRecord) error {
	if records == nil {
		records = []models.WinnerRecord{}
	}
	return save(ctx, s, KeyWinners, records)
}

func load(ctx context.Context, s Store, key string, v any) (bool, error) {
	data, ok, err := s.Load(ctx, key)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("%w: failed to decode %s: %w", shared.ErrStorage, key, err)
	}
	return true, nil
}

func save(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: failed to encode %s: %w", shared.ErrStorage, key, err)
	}
	return s.Save(ctx, key, data)
}
