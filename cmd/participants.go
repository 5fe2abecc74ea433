package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/raffle/internal/formatter"
	"github.com/desertthunder/raffle/internal/raffle"
	"github.com/desertthunder/raffle/internal/shared"
	"github.com/urfave/cli/v3"
)

// participantView is the JSON shape of a roster entry.
type participantView struct {
	Name  string `json:"name"`
	Prize string `json:"prize,omitempty"`
}

// ParticipantsList prints the roster, annotating anyone who has won with their latest prize.
func (r *Runner) ParticipantsList(ctx context.Context, cmd *cli.Command) error {
	session, done, err := r.openSession(ctx)
	if err != nil {
		return err
	}
	defer done()

	names := session.Participants()
	if cmd.Bool("json") {
		return r.writeJSON(annotate(session, names), cmd.Bool("pretty"))
	}

	if len(names) == 0 {
		return r.writePlain("No participants\n")
	}

	r.writePlainHeader(fmt.Sprintf("Participants (%d, %d eligible, %s)", len(names), len(session.EligiblePool()), session.Policy()))
	for i, p := range annotate(session, names) {
		if p.Prize != "" {
			r.writePlain("%3d. %s - won %s\n", i+1, p.Name, p.Prize)
		} else {
			r.writePlain("%3d. %s\n", i+1, p.Name)
		}
	}
	return nil
}

func annotate(session *raffle.Session, names []string) []participantView {
	views := make([]participantView, 0, len(names))
	for _, name := range names {
		prize, _ := session.CurrentPrizeOf(name)
		views = append(views, participantView{Name: name, Prize: prize})
	}
	return views
}

// ParticipantsAdd adds one participant to the roster.
func (r *Runner) ParticipantsAdd(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: participant name is required", shared.ErrMissingArgument)
	}

	session, done, err := r.openSession(ctx)
	if err != nil {
		return err
	}
	defer done()

	if err := session.AddParticipant(name); err != nil {
		return err
	}
	return r.writePlain("✓ Participant %s added (%d total)\n", name, len(session.Participants()))
}

// ParticipantsRemove removes one participant. Their winner records stay in the ledger.
func (r *Runner) ParticipantsRemove(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: participant name is required", shared.ErrMissingArgument)
	}

	session, done, err := r.openSession(ctx)
	if err != nil {
		return err
	}
	defer done()

	if !session.RemoveParticipant(name) {
		return fmt.Errorf("%w: participant %q", shared.ErrNotFound, name)
	}
	return r.writePlain("✓ Participant %s removed\n", name)
}

// ParticipantsClear empties the roster. Requires --yes.
func (r *Runner) ParticipantsClear(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Bool("yes") {
		return fmt.Errorf("%w: pass --yes to delete all participants", shared.ErrMissingArgument)
	}

	session, done, err := r.openSession(ctx)
	if err != nil {
		return err
	}
	defer done()

	count := len(session.Participants())
	session.RemoveAllParticipants()
	return r.writePlain("✓ Deleted %d participants\n", count)
}

// ParticipantsSearch prints participants matching every word of the query.
func (r *Runner) ParticipantsSearch(ctx context.Context, cmd *cli.Command) error {
	query := strings.Join(cmd.Args().Slice(), " ")

	session, done, err := r.openSession(ctx)
	if err != nil {
		return err
	}
	defer done()

	matches := annotate(session, session.Search(query))
	if cmd.Bool("json") {
		return r.writeJSON(matches, false)
	}

	if len(matches) == 0 {
		return r.writePlain("No participants match %q\n", query)
	}
	for _, p := range matches {
		if p.Prize != "" {
			r.writePlain("%s - won %s\n", p.Name, p.Prize)
		} else {
			r.writePlain("%s\n", p.Name)
		}
	}
	return nil
}

// ParticipantsImport adds every name in a roster file, skipping blanks and duplicates.
func (r *Runner) ParticipantsImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("file")

	names, err := formatter.ReadRoster(path)
	if err != nil {
		return err
	}

	session, done, err := r.openSession(ctx)
	if err != nil {
		return err
	}
	defer done()

	added, errs := session.ImportParticipants(names)
	for _, err := range errs {
		r.logger.Debug("skipped participant", "error", err)
	}

	return r.writePlain("✓ Imported %d participants from %s (%d skipped)\n", added, path, len(errs))
}
