package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/raffle/internal/models"
	"github.com/desertthunder/raffle/internal/shared"
	"github.com/desertthunder/raffle/internal/store"
	tu "github.com/desertthunder/raffle/internal/testing"
)

// cancelOnSave cancels a context as soon as winners are saved, i.e. right after a commit.
type cancelOnSave struct {
	*store.MemoryStore
	cancel context.CancelFunc
}

func (c cancelOnSave) Save(ctx context.Context, key string, value []byte) error {
	err := c.MemoryStore.Save(ctx, key, value)
	if key == store.KeyWinners {
		c.cancel()
	}
	return err
}

type cliHarness struct {
	runner *Runner
	store  *store.MemoryStore
	output *bytes.Buffer
}

func newCLIHarness(t *testing.T) *cliHarness {
	t.Helper()

	config := shared.DefaultConfig()
	config.Draw.TickInterval = time.Millisecond
	config.Draw.Duration = 3 * time.Millisecond
	config.Draw.SettleDelay = time.Millisecond
	config.Roster.Seed = []string{"Alice", "Bob", "Cara"}

	h := &cliHarness{store: store.NewMemoryStore(), output: &bytes.Buffer{}}
	h.runner = NewRunner(RunnerOpts{
		Config: config,
		Store:  h.store,
		Logger: shared.NewLogger(io.Discard),
		Output: h.output,
	})
	return h
}

// run executes one CLI invocation and returns what it printed.
func (h *cliHarness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	h.output.Reset()
	err := rootCommand(h.runner).Run(context.Background(), append([]string{"raffle"}, args...))
	return h.output.String(), err
}

func (h *cliHarness) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := h.run(t, args...)
	if err != nil {
		t.Fatalf("raffle %s failed: %v", strings.Join(args, " "), err)
	}
	return out
}

func TestParticipantsCommands(t *testing.T) {
	t.Run("list shows the seeded roster", func(t *testing.T) {
		h := newCLIHarness(t)
		out := h.mustRun(t, "participants", "list")

		if !strings.Contains(out, "Participants (3, 3 eligible, without_replacement)") {
			t.Errorf("expected roster header, got %s", out)
		}
		for _, name := range []string{"Alice", "Bob", "Cara"} {
			if !strings.Contains(out, name) {
				t.Errorf("expected %s in output, got %s", name, out)
			}
		}
	})

	t.Run("list as JSON", func(t *testing.T) {
		h := newCLIHarness(t)
		out := h.mustRun(t, "participants", "list", "--json")

		var views []participantView
		if err := json.Unmarshal([]byte(out), &views); err != nil {
			t.Fatalf("expected JSON output, got %s: %v", out, err)
		}
		if len(views) != 3 || views[0].Name != "Alice" || views[0].Prize != "" {
			t.Errorf("unexpected participants: %+v", views)
		}
	})

	t.Run("add then duplicate", func(t *testing.T) {
		h := newCLIHarness(t)
		out := h.mustRun(t, "participants", "add", "Dmitri")
		if !strings.Contains(out, "Participant Dmitri added (4 total)") {
			t.Errorf("unexpected add output: %s", out)
		}

		_, err := h.run(t, "p", "add", "dmitri")
		if !errors.Is(err, shared.ErrDuplicateName) {
			t.Errorf("expected ErrDuplicateName, got %v", err)
		}
	})

	t.Run("remove", func(t *testing.T) {
		h := newCLIHarness(t)
		h.mustRun(t, "participants", "rm", "Bob")

		out := h.mustRun(t, "participants", "list", "--json")
		if strings.Contains(out, "Bob") {
			t.Errorf("expected Bob to be removed, got %s", out)
		}

		_, err := h.run(t, "participants", "remove", "Bob")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("clear requires confirmation", func(t *testing.T) {
		h := newCLIHarness(t)

		_, err := h.run(t, "participants", "clear")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Fatalf("expected ErrMissingArgument, got %v", err)
		}

		out := h.mustRun(t, "participants", "clear", "--yes")
		if !strings.Contains(out, "Deleted 3 participants") {
			t.Errorf("unexpected clear output: %s", out)
		}

		if out := h.mustRun(t, "participants", "list"); out != "No participants\n" {
			t.Errorf("expected empty roster, got %q", out)
		}
	})

	t.Run("import", func(t *testing.T) {
		h := newCLIHarness(t)
		path := tu.MustWriteFile(t, t.TempDir(), "late.txt", "Dmitri\n# comment\nalice\nElena\n")

		out := h.mustRun(t, "participants", "import", "--file", path)
		if !strings.Contains(out, "Imported 2 participants") || !strings.Contains(out, "(1 skipped)") {
			t.Errorf("unexpected import output: %s", out)
		}
	})

	t.Run("import requires file flag", func(t *testing.T) {
		h := newCLIHarness(t)
		if _, err := h.run(t, "participants", "import"); err == nil {
			t.Error("expected error without --file")
		}
	})

	t.Run("search", func(t *testing.T) {
		h := newCLIHarness(t)
		out := h.mustRun(t, "participants", "search", "car")

		if strings.TrimSpace(out) != "Cara" {
			t.Errorf("expected only Cara, got %q", out)
		}

		out = h.mustRun(t, "participants", "search", "zed")
		if !strings.Contains(out, `No participants match "zed"`) {
			t.Errorf("unexpected empty search output: %s", out)
		}
	})
}

func TestDrawCommand(t *testing.T) {
	t.Run("prints the reveal and records the winner", func(t *testing.T) {
		h := newCLIHarness(t)
		out := h.mustRun(t, "draw", "--prize", "Mug")

		if !strings.Contains(out, "Drawing Mug from 3 eligible participants") {
			t.Errorf("expected draw header, got %s", out)
		}
		if !strings.Contains(out, "won Mug!") {
			t.Errorf("expected reveal message, got %s", out)
		}
		if !strings.Contains(out, "as a winner of Mug") {
			t.Errorf("expected commit message, got %s", out)
		}

		records, _, err := store.LoadWinners(context.Background(), h.store)
		if err != nil {
			t.Fatalf("LoadWinners failed: %v", err)
		}
		if len(records) != 1 || records[0].Prize != "Mug" {
			t.Errorf("expected one Mug record, got %+v", records)
		}
	})

	t.Run("JSON output is the committed record", func(t *testing.T) {
		h := newCLIHarness(t)
		out := h.mustRun(t, "draw", "--prize", "Sticker", "--json")

		var rec models.WinnerRecord
		if err := json.Unmarshal([]byte(out), &rec); err != nil {
			t.Fatalf("expected a JSON record, got %s: %v", out, err)
		}
		if rec.Prize != "Sticker" || rec.ID == "" {
			t.Errorf("unexpected record: %+v", rec)
		}
	})

	t.Run("pool exhausts without replacement", func(t *testing.T) {
		h := newCLIHarness(t)
		for range 3 {
			h.mustRun(t, "draw", "--prize", "Mug")
		}

		_, err := h.run(t, "draw", "--prize", "Mug")
		if !errors.Is(err, shared.ErrInvalidDrawRequest) {
			t.Fatalf("expected ErrInvalidDrawRequest, got %v", err)
		}

		out := h.mustRun(t, "participants", "list")
		if !strings.Contains(out, "0 eligible") {
			t.Errorf("expected no eligible participants, got %s", out)
		}
	})

	t.Run("blank prize", func(t *testing.T) {
		h := newCLIHarness(t)
		_, err := h.run(t, "draw", "--prize", "  ")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("negative duration", func(t *testing.T) {
		h := newCLIHarness(t)
		_, err := h.run(t, "draw", "--prize", "Mug", "--duration=-1s")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("interrupt after the commit keeps the winner", func(t *testing.T) {
		h := newCLIHarness(t)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		h.runner.store = cancelOnSave{MemoryStore: h.store, cancel: cancel}

		err := rootCommand(h.runner).Run(ctx, []string{"raffle", "draw", "--prize", "Mug"})
		if err != nil {
			t.Fatalf("expected committed draw to succeed, got %v", err)
		}
		if !strings.Contains(h.output.String(), "as a winner of Mug") {
			t.Errorf("expected commit message, got %s", h.output.String())
		}

		records, _, _ := store.LoadWinners(context.Background(), h.store)
		if len(records) != 1 {
			t.Errorf("expected the winner to be recorded, got %+v", records)
		}
	})

	t.Run("cancelled context stops the draw", func(t *testing.T) {
		h := newCLIHarness(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := rootCommand(h.runner).Run(ctx, []string{"raffle", "draw", "--prize", "Mug", "--duration", "1h"})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}

		records, _, _ := store.LoadWinners(context.Background(), h.store)
		if len(records) != 0 {
			t.Errorf("expected nothing recorded, got %+v", records)
		}
	})
}

func TestWinnersCommands(t *testing.T) {
	t.Run("list before any draw", func(t *testing.T) {
		h := newCLIHarness(t)
		if out := h.mustRun(t, "winners", "list"); out != "No winners yet\n" {
			t.Errorf("unexpected output: %q", out)
		}
	})

	t.Run("list, reenter and clear", func(t *testing.T) {
		h := newCLIHarness(t)
		out := h.mustRun(t, "draw", "--prize", "Mug", "--json")

		var rec models.WinnerRecord
		if err := json.Unmarshal([]byte(out), &rec); err != nil {
			t.Fatalf("expected a JSON record, got %s: %v", out, err)
		}

		out = h.mustRun(t, "winners", "list")
		if !strings.Contains(out, "Mug (1)") || !strings.Contains(out, rec.Name) {
			t.Errorf("expected %s under Mug, got %s", rec.Name, out)
		}

		out = h.mustRun(t, "w", "list", "--json", "--prize", "Hat")
		if strings.TrimSpace(out) != "[]" {
			t.Errorf("expected no Hat records, got %s", out)
		}

		_, err := h.run(t, "winners", "reenter", rec.Name, "--prize", "Hat")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound for wrong prize, got %v", err)
		}

		out = h.mustRun(t, "winners", "reenter", rec.Name)
		if !strings.Contains(out, "re-entered the draw") {
			t.Errorf("unexpected reenter output: %s", out)
		}

		h.mustRun(t, "draw", "--prize", "Hat")
		if _, err := h.run(t, "winners", "clear"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		out = h.mustRun(t, "winners", "clear", "-y")
		if !strings.Contains(out, "Deleted 1 winner records") {
			t.Errorf("unexpected clear output: %s", out)
		}
	})

	t.Run("reenter by id", func(t *testing.T) {
		h := newCLIHarness(t)
		var rec models.WinnerRecord
		if err := json.Unmarshal([]byte(h.mustRun(t, "draw", "--prize", "Mug", "--json")), &rec); err != nil {
			t.Fatalf("expected a JSON record: %v", err)
		}

		out := h.mustRun(t, "winners", "reenter", "--id", rec.ID)
		if !strings.Contains(out, "Record "+rec.ID+" removed") {
			t.Errorf("unexpected reenter output: %s", out)
		}
		if out := h.mustRun(t, "winners", "list"); out != "No winners yet\n" {
			t.Errorf("expected empty ledger, got %q", out)
		}

		_, err := h.run(t, "winners", "reenter", "--id", rec.ID)
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound for a removed ID, got %v", err)
		}
		if _, err := h.run(t, "winners", "reenter"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument without name or id, got %v", err)
		}
	})

	t.Run("reenter a removed participant", func(t *testing.T) {
		h := newCLIHarness(t)
		var rec models.WinnerRecord
		if err := json.Unmarshal([]byte(h.mustRun(t, "draw", "--prize", "Mug", "--json")), &rec); err != nil {
			t.Fatalf("expected a JSON record: %v", err)
		}
		h.mustRun(t, "participants", "remove", rec.Name)

		out := h.mustRun(t, "winners", "reenter", rec.Name)
		if !strings.Contains(out, "no longer on the roster") {
			t.Errorf("expected roster warning, got %s", out)
		}
	})

	t.Run("export", func(t *testing.T) {
		h := newCLIHarness(t)
		h.mustRun(t, "draw", "--prize", "Mug")

		path := filepath.Join(t.TempDir(), "out", "winners.md")
		out := h.mustRun(t, "winners", "export", "--format", "markdown", "--output", path)
		if !strings.Contains(out, "Exported 1 winners to "+path) {
			t.Errorf("unexpected export output: %s", out)
		}

		tu.AssertFileExists(t, path)
		if content := tu.MustReadFile(t, path); !strings.Contains(content, "## Mug") {
			t.Errorf("unexpected export content: %s", content)
		}
	})

	t.Run("export with unknown format", func(t *testing.T) {
		h := newCLIHarness(t)
		_, err := h.run(t, "winners", "export", "-f", "xml", "-o", filepath.Join(t.TempDir(), "w.xml"))
		if !errors.Is(err, shared.ErrUnsupportedFormat) {
			t.Errorf("expected ErrUnsupportedFormat, got %v", err)
		}
	})
}

func TestSetupDatabase(t *testing.T) {
	t.Chdir(t.TempDir())

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: output})
	if err := rootCommand(runner).Run(context.Background(), []string{"raffle", "setup", "database"}); err != nil {
		t.Fatalf("setup database failed: %v", err)
	}

	out := output.String()
	if !strings.Contains(out, "Config file created at config.toml") {
		t.Errorf("expected config creation, got %s", out)
	}
	if !strings.Contains(out, "Database ready at ./raffle.db") {
		t.Errorf("expected database path, got %s", out)
	}
	tu.AssertFileExists(t, "config.toml")
	tu.AssertFileExists(t, "raffle.db")

	t.Run("state persists across invocations", func(t *testing.T) {
		first := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: io.Discard})
		if err := rootCommand(first).Run(context.Background(), []string{"raffle", "participants", "add", "Zora"}); err != nil {
			t.Fatalf("participants add failed: %v", err)
		}

		listed := &bytes.Buffer{}
		second := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: listed})
		if err := rootCommand(second).Run(context.Background(), []string{"raffle", "participants", "list", "--json"}); err != nil {
			t.Fatalf("participants list failed: %v", err)
		}

		var views []participantView
		if err := json.Unmarshal(listed.Bytes(), &views); err != nil {
			t.Fatalf("expected JSON output, got %s: %v", listed.String(), err)
		}
		if len(views) != 13 || views[12].Name != "Zora" {
			t.Errorf("expected seeded roster plus Zora, got %+v", views)
		}
	})

	t.Run("memory flag leaves the database alone", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: io.Discard})
		if err := rootCommand(runner).Run(context.Background(), []string{"raffle", "--memory", "participants", "clear", "--yes"}); err != nil {
			t.Fatalf("participants clear failed: %v", err)
		}

		db, err := shared.NewDatabase("raffle.db")
		if err != nil {
			t.Fatalf("NewDatabase failed: %v", err)
		}
		defer db.Close()

		names, _, err := store.LoadParticipants(context.Background(), store.NewSQLiteStore(db))
		if err != nil {
			t.Fatalf("LoadParticipants failed: %v", err)
		}
		if len(names) != 13 {
			t.Errorf("expected stored roster untouched, got %d names", len(names))
		}
	})
}
