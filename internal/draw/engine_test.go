package draw

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/raffle/internal/models"
)

type fakeRecorder struct {
	mu      sync.Mutex
	records []models.WinnerRecord
	err     error
}

func (f *fakeRecorder) Record(name, prize string) (models.WinnerRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.WinnerRecord{}, f.err
	}
	rec := models.WinnerRecord{ID: name + "/" + prize, Name: name, Prize: prize, Timestamp: time.Now()}
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *fakeRecorder) Records() []models.WinnerRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.records)
}

func staticPool(names ...string) PoolFunc {
	return func() []string { return names }
}

func fastOptions() Options {
	return Options{
		TickInterval: time.Millisecond,
		Duration:     5 * time.Millisecond,
		SettleDelay:  time.Millisecond,
		Rand:         rand.New(rand.NewPCG(7, 11)),
	}
}

func drain(t *testing.T, events <-chan Event) []Event {
	t.Helper()
	var got []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return got
			}
			got = append(got, ev)
		case <-timeout:
			t.Fatalf("timed out waiting for draw to finish, got %d events", len(got))
			return got
		}
	}
}

func waitFor(t *testing.T, events <-chan Event, phase Phase) Event {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				t.Fatalf("channel closed before %s event", phase)
			}
			if ev.Phase == phase {
				return ev
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s event", phase)
		}
	}
}

func TestEngineStartDraw(t *testing.T) {
	t.Run("runs the full lifecycle", func(t *testing.T) {
		rec := &fakeRecorder{}
		e := NewEngine(staticPool("Alice", "Bob", "Cara"), rec, fastOptions())
		defer e.Close()

		if got := e.Status().State; got != Idle {
			t.Fatalf("expected Idle before draw, got %s", got)
		}

		events, ok := e.StartDraw("  Mug  ")
		if !ok {
			t.Fatal("expected draw to start")
		}
		if got := e.Status().State; got == Idle {
			t.Fatalf("expected engine to leave Idle, got %s", got)
		}

		got := drain(t, events)
		if len(got) != 6 {
			t.Fatalf("expected 5 ticks and a commit, got %d events", len(got))
		}

		reveal := got[len(got)-2]
		commit := got[len(got)-1]
		if reveal.Phase != PhaseReveal {
			t.Errorf("expected reveal before commit, got %s", reveal.Phase)
		}
		if commit.Phase != PhaseCommit || commit.Err != nil {
			t.Fatalf("expected successful commit, got %s err=%v", commit.Phase, commit.Err)
		}
		if commit.Record == nil || commit.Record.Name != reveal.Name {
			t.Errorf("expected committed name to match revealed %q, got %+v", reveal.Name, commit.Record)
		}
		if commit.Record.Prize != "Mug" {
			t.Errorf("expected trimmed prize, got %q", commit.Record.Prize)
		}
		if !commit.Final() || reveal.Final() {
			t.Error("only the commit event should be final")
		}

		for i, ev := range got[:len(got)-2] {
			if ev.Phase != PhaseSpin {
				t.Errorf("event %d: expected spin, got %s", i, ev.Phase)
			}
			if ev.Step != i+1 || ev.Total != 5 {
				t.Errorf("event %d: expected step %d/5, got %d/%d", i, i+1, ev.Step, ev.Total)
			}
		}

		st := e.Status()
		if st.State != Revealed || st.Winner != reveal.Name || st.Display != reveal.Name {
			t.Errorf("unexpected status after commit: %+v", st)
		}
		if st.Last == nil || st.Last.Name != reveal.Name {
			t.Errorf("expected last record %q, got %+v", reveal.Name, st.Last)
		}

		if !e.Dismiss() {
			t.Fatal("expected Dismiss to succeed after commit")
		}
		if got := e.Status().State; got != Idle {
			t.Errorf("expected Idle after Dismiss, got %s", got)
		}
		if e.Dismiss() {
			t.Error("expected second Dismiss to be a no-op")
		}
		if n := len(rec.Records()); n != 1 {
			t.Errorf("expected 1 record, got %d", n)
		}
	})

	t.Run("starts again from a committed reveal", func(t *testing.T) {
		rec := &fakeRecorder{}
		e := NewEngine(staticPool("Alice", "Bob"), rec, fastOptions())
		defer e.Close()

		events, _ := e.StartDraw("Mug")
		drain(t, events)

		events, ok := e.StartDraw("Hat")
		if !ok {
			t.Fatal("expected draw from committed Revealed state to start")
		}
		drain(t, events)

		records := rec.Records()
		if len(records) != 2 || records[1].Prize != "Hat" {
			t.Errorf("expected Mug and Hat records, got %+v", records)
		}
	})

	t.Run("rejects a second request while drawing", func(t *testing.T) {
		rec := &fakeRecorder{}
		opts := fastOptions()
		opts.Duration = 50 * time.Millisecond
		e := NewEngine(staticPool("Alice", "Bob", "Cara"), rec, opts)
		defer e.Close()

		events, ok := e.StartDraw("Mug")
		if !ok {
			t.Fatal("expected first draw to start")
		}
		if ch, ok := e.StartDraw("Mug"); ok || ch != nil {
			t.Error("expected second draw to be ignored")
		}
		drain(t, events)

		if n := len(rec.Records()); n != 1 {
			t.Errorf("expected exactly 1 record, got %d", n)
		}
	})

	t.Run("ignores invalid requests", func(t *testing.T) {
		tests := []struct {
			name  string
			pool  PoolFunc
			prize string
		}{
			{"empty prize", staticPool("Alice"), ""},
			{"blank prize", staticPool("Alice"), "   "},
			{"empty pool", staticPool(), "Mug"},
			{"nil pool", nil, "Mug"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rec := &fakeRecorder{}
				e := NewEngine(tt.pool, rec, fastOptions())
				defer e.Close()

				if ch, ok := e.StartDraw(tt.prize); ok || ch != nil {
					t.Fatal("expected request to be ignored")
				}
				if got := e.Status().State; got != Idle {
					t.Errorf("expected Idle, got %s", got)
				}
				if n := len(rec.Records()); n != 0 {
					t.Errorf("expected no records, got %d", n)
				}
			})
		}
	})
}

func TestEngineSingleParticipant(t *testing.T) {
	rec := &fakeRecorder{}
	e := NewEngine(staticPool("Alice"), rec, fastOptions())
	defer e.Close()

	events, ok := e.StartDraw("Mug")
	if !ok {
		t.Fatal("expected draw to start with one participant")
	}
	got := drain(t, events)
	if len(got) != 6 {
		t.Fatalf("expected full animation for a single participant, got %d events", len(got))
	}
	for _, ev := range got {
		if ev.Name != "Alice" {
			t.Errorf("expected only Alice on display, got %q", ev.Name)
		}
	}
}

func TestEngineSnapshot(t *testing.T) {
	var mu sync.Mutex
	roster := []string{"Alice", "Bob", "Cara"}
	pool := func() []string {
		mu.Lock()
		defer mu.Unlock()
		return roster
	}

	rec := &fakeRecorder{}
	opts := fastOptions()
	opts.Duration = 20 * time.Millisecond
	e := NewEngine(pool, rec, opts)
	defer e.Close()

	events, ok := e.StartDraw("Mug")
	if !ok {
		t.Fatal("expected draw to start")
	}

	mu.Lock()
	roster = []string{"Zed"}
	mu.Unlock()

	for _, ev := range drain(t, events) {
		if ev.Name == "Zed" {
			t.Fatal("roster edit leaked into an in-flight draw")
		}
	}
	records := rec.Records()
	if len(records) != 1 || !slices.Contains([]string{"Alice", "Bob", "Cara"}, records[0].Name) {
		t.Errorf("expected winner from original snapshot, got %+v", records)
	}
}

func TestEngineCancel(t *testing.T) {
	t.Run("cancel during reveal leaves no record", func(t *testing.T) {
		rec := &fakeRecorder{}
		opts := fastOptions()
		opts.Duration = time.Hour
		opts.TickInterval = time.Second
		e := NewEngine(staticPool("Alice", "Bob"), rec, opts)
		defer e.Close()

		events, ok := e.StartDraw("Mug")
		if !ok {
			t.Fatal("expected draw to start")
		}
		e.Cancel()

		got := drain(t, events)
		if len(got) == 0 || got[len(got)-1].Phase != PhaseCancel {
			t.Fatalf("expected trailing cancel event, got %+v", got)
		}
		if got := e.Status().State; got != Idle {
			t.Errorf("expected Idle after cancel, got %s", got)
		}
		if n := len(rec.Records()); n != 0 {
			t.Errorf("expected no records after cancel, got %d", n)
		}

		e.opts = fastOptions()
		events, ok = e.StartDraw("Mug")
		if !ok {
			t.Fatal("expected a new draw after cancel")
		}
		drain(t, events)
		if n := len(rec.Records()); n != 1 {
			t.Errorf("expected 1 record after second draw, got %d", n)
		}
	})

	t.Run("cancel without a draw is a no-op", func(t *testing.T) {
		e := NewEngine(staticPool("Alice"), &fakeRecorder{}, fastOptions())
		defer e.Close()
		e.Cancel()
		if got := e.Status().State; got != Idle {
			t.Errorf("expected Idle, got %s", got)
		}
	})
}

func TestEngineSettle(t *testing.T) {
	t.Run("rejects draws until the winner is committed", func(t *testing.T) {
		rec := &fakeRecorder{}
		opts := fastOptions()
		opts.SettleDelay = time.Hour
		e := NewEngine(staticPool("Alice", "Bob"), rec, opts)

		events, ok := e.StartDraw("Mug")
		if !ok {
			t.Fatal("expected draw to start")
		}
		reveal := waitFor(t, events, PhaseReveal)

		st := e.Status()
		if st.State != Revealed || st.Winner != reveal.Name {
			t.Errorf("expected Revealed with winner %q, got %+v", reveal.Name, st)
		}
		if _, ok := e.StartDraw("Hat"); ok {
			t.Error("expected draw to be rejected before commit")
		}
		if e.Dismiss() {
			t.Error("expected Dismiss to be rejected before commit")
		}

		if err := e.Close(); err != nil {
			t.Fatalf("Close returned error: %v", err)
		}
		got := drain(t, events)
		if len(got) != 1 || got[0].Phase != PhaseCancel {
			t.Errorf("expected a single cancel event after close, got %+v", got)
		}
		if n := len(rec.Records()); n != 0 {
			t.Errorf("expected no commit after close, got %d records", n)
		}
		if _, ok := e.StartDraw("Hat"); ok {
			t.Error("expected closed engine to reject draws")
		}
	})

	t.Run("commit failure returns to idle", func(t *testing.T) {
		rec := &fakeRecorder{err: errors.New("boom")}
		e := NewEngine(staticPool("Alice"), rec, fastOptions())
		defer e.Close()

		events, _ := e.StartDraw("Mug")
		got := drain(t, events)
		last := got[len(got)-1]
		if last.Phase != PhaseCommit || last.Err == nil || last.Record != nil {
			t.Errorf("expected failed commit event, got %+v", last)
		}
		if st := e.Status(); st.State != Idle || st.Last != nil {
			t.Errorf("expected Idle without last record, got %+v", st)
		}
	})
}

func TestEngineClose(t *testing.T) {
	t.Run("idle engine", func(t *testing.T) {
		e := NewEngine(staticPool("Alice"), &fakeRecorder{}, fastOptions())
		if err := e.Close(); err != nil {
			t.Fatalf("Close returned error: %v", err)
		}
		if err := e.Close(); err != nil {
			t.Errorf("second Close returned error: %v", err)
		}
		if _, ok := e.StartDraw("Mug"); ok {
			t.Error("expected closed engine to reject draws")
		}
	})

	t.Run("while ticking", func(t *testing.T) {
		rec := &fakeRecorder{}
		opts := fastOptions()
		opts.TickInterval = 10 * time.Millisecond
		opts.Duration = 10 * time.Second
		e := NewEngine(staticPool("Alice", "Bob", "Cara"), rec, opts)

		events, ok := e.StartDraw("Mug")
		if !ok {
			t.Fatal("expected draw to start")
		}
		waitFor(t, events, PhaseSpin)

		if err := e.Close(); err != nil {
			t.Fatalf("Close returned error: %v", err)
		}
		rest := drain(t, events)
		if len(rest) == 0 || rest[len(rest)-1].Phase != PhaseCancel {
			t.Errorf("expected draw to end with a cancel event, got %+v", rest)
		}
		if n := len(rec.Records()); n != 0 {
			t.Errorf("expected no commit after close, got %d records", n)
		}
		if st := e.Status(); st.State != Idle {
			t.Errorf("expected Idle after close, got %s", st.State)
		}
	})

	t.Run("while settling", func(t *testing.T) {
		rec := &fakeRecorder{}
		opts := fastOptions()
		opts.SettleDelay = time.Hour
		e := NewEngine(staticPool("Alice", "Bob"), rec, opts)

		events, ok := e.StartDraw("Mug")
		if !ok {
			t.Fatal("expected draw to start")
		}
		waitFor(t, events, PhaseReveal)

		if err := e.Close(); err != nil {
			t.Fatalf("Close returned error: %v", err)
		}
		rest := drain(t, events)
		if len(rest) != 1 || rest[0].Phase != PhaseCancel {
			t.Errorf("expected a single cancel event, got %+v", rest)
		}
		if n := len(rec.Records()); n != 0 {
			t.Errorf("expected no commit after close, got %d records", n)
		}
		if st := e.Status(); st.State != Idle || st.Last != nil {
			t.Errorf("expected Idle without a committed record, got %+v", st)
		}
	})
}

func TestEnginePick(t *testing.T) {
	roster := []string{"Alice", "Bob", "Cara", "Dmitri", "Elena", "Farah"}
	const draws = 12000

	for n := 1; n <= len(roster); n++ {
		t.Run(fmt.Sprintf("%d participants", n), func(t *testing.T) {
			names := roster[:n]
			e := NewEngine(staticPool(names...), &fakeRecorder{}, Options{Rand: rand.New(rand.NewPCG(1, uint64(n)))})

			counts := make(map[string]int, n)
			for range draws {
				counts[e.pick(names)]++
			}

			p := 1 / float64(n)
			want := float64(draws) * p
			tolerance := 5*math.Sqrt(float64(draws)*p*(1-p)) + 1
			for _, name := range names {
				if got := float64(counts[name]); math.Abs(got-want) > tolerance {
					t.Errorf("%s drawn %.0f times, expected %.0f ± %.0f", name, got, want, tolerance)
				}
			}
		})
	}
}

func TestOptionsTicks(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
		duration time.Duration
		want     int
	}{
		{"reference timing", 30 * time.Millisecond, 5 * time.Second, 167},
		{"exact division", 10 * time.Millisecond, 100 * time.Millisecond, 10},
		{"rounds down", 30 * time.Millisecond, 100 * time.Millisecond, 3},
		{"rounds up", 40 * time.Millisecond, 100 * time.Millisecond, 3},
		{"zero duration", 30 * time.Millisecond, 0, 1},
		{"duration below interval", 30 * time.Millisecond, 10 * time.Millisecond, 1},
		{"zero interval", 0, time.Second, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{TickInterval: tt.interval, Duration: tt.duration}
			if got := opts.Ticks(); got != tt.want {
				t.Errorf("Ticks() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Idle, "idle"},
		{Drawing, "drawing"},
		{Revealed, "revealed"},
		{State(99), ""},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
