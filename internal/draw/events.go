package draw

import (
	"fmt"

	"github.com/desertthunder/raffle/internal/models"
)

// Event reports one step of a draw.
type Event struct {
	Phase   Phase                // Draw phase
	Step    int                  // Current tick, 1-based
	Total   int                  // Total ticks of the reveal
	Prize   string               // Prize being drawn
	Name    string               // Name on display after this step
	Message string               // Human-readable message for display
	Record  *models.WinnerRecord // Committed record (PhaseCommit only)
	Err     error                // Commit failure (PhaseCommit only)
}

// Phase enumerates draw phases.
type Phase int

const (
	PhaseSpin Phase = iota
	PhaseReveal
	PhaseCommit
	PhaseCancel
)

func (p Phase) String() string {
	switch p {
	case PhaseSpin:
		return "spin"
	case PhaseReveal:
		return "reveal"
	case PhaseCommit:
		return "commit"
	case PhaseCancel:
		return "cancel"
	default:
		return ""
	}
}

// Final reports whether no further events follow e.
func (e Event) Final() bool {
	return e.Phase == PhaseCommit || e.Phase == PhaseCancel
}

func spinEvent(r *round, step int, name string) Event {
	return Event{
		Phase:   PhaseSpin,
		Step:    step,
		Total:   r.ticks,
		Prize:   r.prize,
		Name:    name,
		Message: fmt.Sprintf("Spinning for %s... (%d/%d)", r.prize, step, r.ticks),
	}
}

func revealEvent(r *round) Event {
	return Event{
		Phase:   PhaseReveal,
		Step:    r.ticks,
		Total:   r.ticks,
		Prize:   r.prize,
		Name:    r.winner,
		Message: fmt.Sprintf("%s won %s!", r.winner, r.prize),
	}
}

func commitEvent(r *round, rec models.WinnerRecord, err error) Event {
	ev := Event{
		Phase: PhaseCommit,
		Step:  r.ticks,
		Total: r.ticks,
		Prize: r.prize,
		Name:  r.winner,
	}
	if err != nil {
		ev.Err = err
		ev.Message = fmt.Sprintf("Failed to record %s for %s: %v", r.winner, r.prize, err)
		return ev
	}
	ev.Record = &rec
	ev.Message = fmt.Sprintf("Recorded %s as a winner of %s", rec.Name, rec.Prize)
	return ev
}

func cancelEvent(r *round) Event {
	return Event{
		Phase:   PhaseCancel,
		Step:    r.step,
		Total:   r.ticks,
		Prize:   r.prize,
		Name:    r.display,
		Message: fmt.Sprintf("Draw for %s cancelled", r.prize),
	}
}
