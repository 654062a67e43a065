package history

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/analizador-es/analizador/pkg/compiler"
)

func openTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := Open(context.Background(), MemoryPath, opts...)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndGet(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := openTestStore(t, WithClock(func() time.Time { return fixed }))
	ctx := context.Background()

	stored, err := s.Record(ctx, Entry{Source: "1 + 1", Result: "2", Tokens: 3, Duration: time.Millisecond})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if _, err := uuid.Parse(stored.ID); err != nil {
		t.Errorf("ID %q is not a UUID: %v", stored.ID, err)
	}
	if !stored.CreatedAt.Equal(fixed) {
		t.Errorf("CreatedAt = %v, want %v", stored.CreatedAt, fixed)
	}

	got, err := s.Get(ctx, stored.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != stored.ID || got.Source != "1 + 1" || got.Result != "2" ||
		got.Tokens != 3 || got.Duration != time.Millisecond || !got.CreatedAt.Equal(fixed) {
		t.Errorf("Get = %+v, want %+v", got, stored)
	}

	if _, err := s.Get(ctx, "nada"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(nada) error = %v, want ErrNotFound", err)
	}
}

func TestRecentOrderAndLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := s.Record(ctx, Entry{Source: fmt.Sprintf("%d", i), Result: fmt.Sprintf("%d", i)}); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	entries, err := s.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, want := range []string{"4", "3", "2"} {
		if entries[i].Source != want {
			t.Errorf("entries[%d].Source = %q, want %q", i, entries[i].Source, want)
		}
	}

	all, err := s.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("default limit returned %d entries", len(all))
	}

	n, err := s.Count(ctx)
	if err != nil || n != 5 {
		t.Errorf("Count = %d, %v", n, err)
	}
}

func TestRecentEmpty(t *testing.T) {
	s := openTestStore(t)

	entries, err := s.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Errorf("Recent = %#v, want empty non-nil slice", entries)
	}
}

func TestOpenFilePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "historial.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := s.Record(ctx, Entry{Source: "x", Error: "Variable x no definida", Line: 1}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	s.Close()

	s, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()

	entries, err := s.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Error != "Variable x no definida" || entries[0].Line != 1 {
		t.Errorf("entries = %+v", entries)
	}
}

func TestConcurrentRecord(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	const workers = 10
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Record(ctx, Entry{Source: "1"}); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if n, _ := s.Count(ctx); n != workers {
		t.Errorf("Count = %d, want %d", n, workers)
	}
}

func TestNewEntry(t *testing.T) {
	result, err := compiler.Analyze("1 + 1")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	e := NewEntry("1 + 1", result, nil, time.Second)
	if e.Result != "2" || e.Error != "" || e.Tokens != 3 || e.Duration != time.Second {
		t.Errorf("success entry = %+v", e)
	}

	source := "entero b = 0\n1 / b"
	_, err = compiler.Analyze(source)
	e = NewEntry(source, nil, err, 0)
	if e.Error != "División por cero" || e.Line != 2 || e.Tokens != 7 {
		t.Errorf("failure entry = %+v", e)
	}

	e = NewEntry("", nil, errors.New("boom"), 0)
	if e.Error != "boom" || e.Line != 0 {
		t.Errorf("plain error entry = %+v", e)
	}
}
