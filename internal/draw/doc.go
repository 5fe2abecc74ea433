// Package draw runs prize draws: uniform winner selection followed by a timed reveal.
//
// # State Machine
//
// An [Engine] moves through [Idle] → [Drawing] → [Revealed] → [Idle]. [Engine.StartDraw] is only accepted from
// Idle, or from Revealed once the previous winner has been committed. Requests that arrive while a draw is in
// flight, with a blank prize or with an empty pool are ignored: the operator double-clicking "spin" must never
// start two overlapping draws, and an invalid click must never interrupt a live event.
//
// # Selection and Reveal
//
// The winner is picked when the draw starts, from a snapshot of the eligible pool. The reveal then ticks every
// [Options.TickInterval] for [Options.Duration]; every tick but the last shows a random name from the snapshot
// and the last tick always shows the picked winner. After [Options.SettleDelay] the winner is committed through
// the [Recorder]. Roster edits during a draw do not affect the snapshot.
//
// # Progress Reporting
//
// [Engine.StartDraw] returns a channel of [Event] values sized for the whole draw, so sends never block the
// ticker. The channel is closed when the draw commits or is cancelled.
//
// # Cancellation
//
// [Engine.Cancel] aborts the in-flight draw and [Engine.Close] tears the engine down. Both stop the pending timer
// and wait for the draw goroutine; a draw cancelled before its commit leaves no ledger record.
//
// # Eligibility
//
// [Policy] decides who may be drawn: [WithReplacement] keeps winners in the pool, [WithoutReplacement] removes
// anyone holding a record until they are re-entered.
package draw
