package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/oleiade/autoversion/internal/resolver"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	first := &resolver.Result{Version: "v1.4.0", Source: "git", ExitCode: 0, Duration: "12ms"}
	second := &resolver.Result{Version: "v2.0.0-dirty", Source: "git", Dirty: true, ExitCode: 0, Duration: "9ms"}

	firstID, err := store.Record(ctx, first)
	if err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if firstID == "" {
		t.Fatal("expected a generated entry id")
	}

	// Ordering is by timestamp; make sure the second entry is strictly newer.
	time.Sleep(5 * time.Millisecond)

	if _, err := store.Record(ctx, second); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}

	entries, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Version != "v2.0.0-dirty" {
		t.Fatalf("expected newest entry first, got %q", entries[0].Version)
	}
	if !entries[0].Dirty {
		t.Fatal("expected dirty marker to round-trip")
	}
	if entries[1].Version != "v1.4.0" {
		t.Fatalf("expected oldest entry last, got %q", entries[1].Version)
	}
	if entries[0].ResolvedAt.IsZero() {
		t.Fatal("expected resolved_at timestamp to round-trip")
	}
}

func TestRecentOrdersSubSecondNeighbors(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	// Formatted as RFC3339Nano these are ".1Z" and ".15Z", which sort
	// lexicographically in the wrong order ('Z' > '5'). Numeric storage
	// must still return the later one first.
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	older := base.Add(100 * time.Millisecond)
	newer := base.Add(150 * time.Millisecond)

	insert := func(id, version string, at time.Time) {
		t.Helper()
		_, err := store.db.ExecContext(ctx, `
            INSERT INTO resolutions (id, resolved_at, version, source, dirty, exit_code, duration)
            VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, at.UnixNano(), version, "git", false, 0, "1ms")
		if err != nil {
			t.Fatalf("insert returned error: %v", err)
		}
	}
	insert("a", "v1.0.0", older)
	insert("b", "v1.0.1", newer)

	entries, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Version != "v1.0.1" {
		t.Fatalf("expected newest entry first, got %q", entries[0].Version)
	}
	if !entries[0].ResolvedAt.Equal(newer) {
		t.Fatalf("expected resolved_at %v, got %v", newer, entries[0].ResolvedAt)
	}
}

func TestRecentHonorsLimit(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := store.Record(ctx, &resolver.Result{Version: "dev", Source: "fallback", Duration: "1ms"}); err != nil {
			t.Fatalf("Record returned error: %v", err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	entries, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
}

func TestRecentDefaultsLimit(t *testing.T) {
	store := openStore(t)

	entries, err := store.Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if entries != nil {
		t.Fatalf("expected no entries in fresh store, got %d", len(entries))
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if _, err := store.Record(context.Background(), &resolver.Result{Version: "v1.0.0", Source: "git", Duration: "1ms"}); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopening store returned error: %v", err)
	}
	defer func() {
		_ = reopened.Close()
	}()

	entries, err := reopened.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected entry to survive reopen, got %d entries", len(entries))
	}
}
