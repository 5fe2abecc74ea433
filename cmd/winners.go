package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/raffle/internal/formatter"
	"github.com/desertthunder/raffle/internal/shared"
	"github.com/urfave/cli/v3"
)

// WinnersList prints winners grouped by prize, or the raw records with --json.
func (r *Runner) WinnersList(ctx context.Context, cmd *cli.Command) error {
	session, done, err := r.openSession(ctx)
	if err != nil {
		return err
	}
	defer done()

	prize := strings.TrimSpace(cmd.String("prize"))

	if cmd.Bool("json") {
		records := session.Records()
		if prize != "" {
			filtered := records[:0]
			for _, rec := range records {
				if rec.Prize == prize {
					filtered = append(filtered, rec)
				}
			}
			records = filtered
		}
		return r.writeJSON(records, cmd.Bool("pretty"))
	}

	groups := session.Winners()
	if groups.Len() == 0 {
		return r.writePlain("No winners yet\n")
	}

	r.writePlainHeader(fmt.Sprintf("Winners (%d)", groups.Total()))
	shown := 0
	for p, names := range groups.All() {
		if prize != "" && p != prize {
			continue
		}
		shown++
		r.writePlainln("%s (%d)", p, len(names))
		for _, name := range names {
			r.writePlain("  • %s\n", name)
		}
	}
	if shown == 0 {
		return r.writePlain("No winners for %s\n", prize)
	}
	return nil
}

// WinnersReEnter removes the most recent record for a participant, optionally within one prize, or the
// record named by --id.
func (r *Runner) WinnersReEnter(ctx context.Context, cmd *cli.Command) error {
	name := strings.TrimSpace(cmd.StringArg("name"))
	id := strings.TrimSpace(cmd.String("id"))
	prize := strings.TrimSpace(cmd.String("prize"))
	if name == "" && id == "" {
		return fmt.Errorf("%w: participant name or --id is required", shared.ErrMissingArgument)
	}

	session, done, err := r.openSession(ctx)
	if err != nil {
		return err
	}
	defer done()

	if id != "" {
		if err := session.RemoveRecord(id); err != nil {
			return err
		}
		return r.writePlain("✓ Record %s removed\n", id)
	}

	var ok bool
	if prize != "" {
		ok = session.ReEnterFrom(name, prize)
	} else {
		ok = session.ReEnter(name)
	}
	if !ok {
		if prize != "" {
			return fmt.Errorf("%w: no %s record for %q", shared.ErrNotFound, prize, name)
		}
		return fmt.Errorf("%w: no winner record for %q", shared.ErrNotFound, name)
	}

	if !session.HasParticipant(name) {
		return r.writePlain("✓ Record removed; %s is no longer on the roster and will not be drawn\n", name)
	}
	return r.writePlain("✓ %s re-entered the draw\n", name)
}

// WinnersExport writes the ledger to a file in the chosen format.
func (r *Runner) WinnersExport(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")

	session, done, err := r.openSession(ctx)
	if err != nil {
		return err
	}
	defer done()

	records := session.Records()
	path, err := formatter.WriteExport(format, records, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("winners exported", "format", format, "path", path, "records", len(records))
	return r.writePlain("✓ Exported %d winners to %s\n", len(records), path)
}

// WinnersClear deletes every winner record. Requires --yes.
func (r *Runner) WinnersClear(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Bool("yes") {
		return fmt.Errorf("%w: pass --yes to delete all winner records", shared.ErrMissingArgument)
	}

	session, done, err := r.openSession(ctx)
	if err != nil {
		return err
	}
	defer done()

	count := session.TotalWinners()
	session.ClearWinners()
	return r.writePlain("✓ Deleted %d winner records\n", count)
}
