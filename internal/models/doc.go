// Package models defines the domain entities shared by the raffle packages.
//
//   - Participant identity: names compare case-insensitively after trimming ([NormalizeName], [SameParticipant])
//   - [WinnerRecord] : one participant winning one prize at a point in time
//
// Records are values; the ledger never mutates a record after creating it.
package models
