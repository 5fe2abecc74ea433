// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// ErrInjected is returned by the failing test doubles.
var ErrInjected = errors.New("injected failure")

// FailingStore is a test double for [store.Store] whose calls fail on demand.
//
// Successful saves are kept so a test can flip FailSave off and inspect what was written.
type FailingStore struct {
	mu       sync.Mutex
	FailLoad bool
	FailSave bool
	values   map[string][]byte
	saves    int
	failures int
}

func NewFailingStore(failLoad, failSave bool) *FailingStore {
	return &FailingStore{FailLoad: failLoad, FailSave: failSave, values: make(map[string][]byte)}
}

func (f *FailingStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailLoad {
		return nil, false, ErrInjected
	}
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *FailingStore) Save(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailSave {
		f.failures++
		return ErrInjected
	}
	f.saves++
	f.values[key] = append([]byte(nil), value...)
	return nil
}

// SetFailLoad toggles load failures.
func (f *FailingStore) SetFailLoad(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FailLoad = fail
}

// SetFailSave toggles save failures.
func (f *FailingStore) SetFailSave(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FailSave = fail
}

// Saves returns the number of successful and failed saves.
func (f *FailingStore) Saves() (ok, failed int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves, f.failures
}

// Value returns the last successfully saved value for key.
func (f *FailingStore) Value(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v, ok
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MustWriteFile writes content to name inside dir and returns the full path.
func MustWriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
	return path
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
