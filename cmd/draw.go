package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/raffle/internal/draw"
	"github.com/desertthunder/raffle/internal/shared"
	"github.com/urfave/cli/v3"
)

// Draw runs one draw without the TUI, printing each reveal tick on a single updating line.
//
// Interrupting the command cancels the draw before its winner is committed.
func (r *Runner) Draw(ctx context.Context, cmd *cli.Command) error {
	prize := strings.TrimSpace(cmd.String("prize"))
	if prize == "" {
		return fmt.Errorf("%w: --prize must not be blank", shared.ErrMissingArgument)
	}
	if cmd.IsSet("duration") {
		d := cmd.Duration("duration")
		if d < 0 {
			return fmt.Errorf("%w: --duration must not be negative", shared.ErrInvalidArgument)
		}
		r.config.Draw.Duration = d
	}

	session, done, err := r.openSession(ctx)
	if err != nil {
		return err
	}
	defer done()

	pool := session.EligiblePool()
	if len(pool) == 0 {
		return fmt.Errorf("%w: no eligible participants (%d on roster, policy %s)",
			shared.ErrInvalidDrawRequest, len(session.Participants()), session.Policy())
	}

	events, ok := session.StartDraw(prize)
	if !ok {
		return fmt.Errorf("%w: draw for %s was not started", shared.ErrInvalidDrawRequest, prize)
	}

	asJSON := cmd.Bool("json")
	if !asJSON {
		r.writePlain("Drawing %s from %d eligible participants\n", prize, len(pool))
	}

	width := 0
	for _, name := range pool {
		width = max(width, len(name))
	}

	committed := false
	for {
		select {
		case <-ctx.Done():
			session.CancelDraw()
			late, err := r.finishDraw(events, width, asJSON)
			if err != nil || committed || late {
				return err
			}
			return fmt.Errorf("draw cancelled: %w", ctx.Err())
		case ev, open := <-events:
			if !open {
				return nil
			}
			if err := r.printDrawEvent(ev, width, asJSON); err != nil {
				return err
			}
			committed = committed || ev.Phase == draw.PhaseCommit
		}
	}
}

// finishDraw prints the events left after a cancel request. The winner may already have been committed, in
// which case the draw finished normally.
func (r *Runner) finishDraw(events <-chan draw.Event, width int, asJSON bool) (bool, error) {
	committed := false
	for ev := range events {
		if err := r.printDrawEvent(ev, width, asJSON); err != nil {
			return false, err
		}
		if ev.Phase == draw.PhaseCommit {
			committed = true
		}
	}
	return committed, nil
}

func (r *Runner) printDrawEvent(ev draw.Event, width int, asJSON bool) error {
	switch ev.Phase {
	case draw.PhaseSpin:
		if !asJSON {
			r.writePlain("\r  %-*s  %d/%d", width, ev.Name, ev.Step, ev.Total)
		}
	case draw.PhaseReveal:
		if !asJSON {
			r.writePlain("\r  %-*s  %d/%d\n", width, ev.Name, ev.Step, ev.Total)
			r.writePlain("🎉 %s\n", ev.Message)
		}
	case draw.PhaseCommit:
		if ev.Err != nil {
			return fmt.Errorf("failed to record winner: %w", ev.Err)
		}
		if asJSON {
			return r.writeJSON(ev.Record, false)
		}
		r.writePlain("✓ %s\n", ev.Message)
	case draw.PhaseCancel:
		if !asJSON {
			r.writePlain("\n%s\n", ev.Message)
		}
	}
	return nil
}
