// Package store persists raffle state as opaque values under fixed keys.
//
// The contract is a minimal key-value store ([Store]) with two keys: [KeyParticipants] holds the roster as a JSON
// array of names and [KeyWinners] holds the ledger as a JSON array of [models.WinnerRecord]. Every save replaces the
// whole value; there is no partial update.
//
// Implementations:
//   - [SQLiteStore] : one row per key in the state table, with a revision counter bumped on every save
//   - [MemoryStore] : process-local map, used for --memory sessions and tests
//
// The typed helpers ([LoadParticipants], [SaveWinners], ...) own the encoding so implementations only move bytes.
package store
