package changelog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleChangelog = `# Changelog

## v2.0.0

- Hardware SHA256 pipeline
- OTA update support

## v1.4.0

Initial OLED display support.
`

func writeChangelog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "CHANGELOG.md")
	if err := os.WriteFile(path, []byte(sampleChangelog), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNormalizeVersion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"v2.0.0", "v2.0.0"},
		{"v2.0.0-3-gabc123", "v2.0.0"},
		{"v1.4.0-dirty", "v1.4.0"},
		{"v2.0.0-3-gabc123-dirty", "v2.0.0"},
		{"dev", "dev"},
		{"v2.0.0-rc1", "v2.0.0-rc1"},
	}

	for _, tt := range tests {
		if got := NormalizeVersion(tt.in); got != tt.want {
			t.Errorf("NormalizeVersion(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNotesForExactTag(t *testing.T) {
	path := writeChangelog(t)

	section, err := NotesFor(path, "v2.0.0")
	if err != nil {
		t.Fatalf("NotesFor returned error: %v", err)
	}
	if section.Title != "v2.0.0" {
		t.Fatalf("expected title v2.0.0, got %q", section.Title)
	}
	if !strings.Contains(section.Content, "OTA update support") {
		t.Fatalf("expected section content to mention OTA update support, got %q", section.Content)
	}
}

func TestNotesForDescribeSuffix(t *testing.T) {
	path := writeChangelog(t)

	section, err := NotesFor(path, "v2.0.0-3-gabc123")
	if err != nil {
		t.Fatalf("NotesFor returned error: %v", err)
	}
	if section.Title != "v2.0.0" {
		t.Fatalf("expected title v2.0.0, got %q", section.Title)
	}
}

func TestNotesForDirtyVersion(t *testing.T) {
	path := writeChangelog(t)

	section, err := NotesFor(path, "v1.4.0-dirty")
	if err != nil {
		t.Fatalf("NotesFor returned error: %v", err)
	}
	if !strings.Contains(section.Content, "OLED display") {
		t.Fatalf("expected v1.4.0 section, got %q", section.Content)
	}
}

func TestNotesForUnknownVersion(t *testing.T) {
	path := writeChangelog(t)

	_, err := NotesFor(path, "v9.9.9")
	if err == nil {
		t.Fatal("expected error for unknown version")
	}
	var chErr *Error
	if !errors.As(err, &chErr) || chErr.Type != ErrorTypeNotFound {
		t.Fatalf("expected not_found error, got %v", err)
	}
}

func TestNotesForMissingFile(t *testing.T) {
	_, err := NotesFor(filepath.Join(t.TempDir(), "CHANGELOG.md"), "v2.0.0")
	if err == nil {
		t.Fatal("expected error for missing changelog")
	}
	var chErr *Error
	if !errors.As(err, &chErr) || chErr.Type != ErrorTypeIO {
		t.Fatalf("expected io error, got %v", err)
	}
}

func TestNotesForLooseListItemsNotDuplicated(t *testing.T) {
	// Blank lines between items make this a loose list, where goldmark
	// wraps each item's text in a paragraph node.
	looseChangelog := `# Changelog

## v3.0.0

- Deep sleep between readings

- Battery gauge calibration
`
	path := filepath.Join(t.TempDir(), "CHANGELOG.md")
	if err := os.WriteFile(path, []byte(looseChangelog), 0o644); err != nil {
		t.Fatal(err)
	}

	section, err := NotesFor(path, "v3.0.0")
	if err != nil {
		t.Fatalf("NotesFor returned error: %v", err)
	}
	for _, item := range []string{"Deep sleep between readings", "Battery gauge calibration"} {
		if got := strings.Count(section.Content, item); got != 1 {
			t.Fatalf("expected %q to appear once, got %d in %q", item, got, section.Content)
		}
	}
}

func TestParseChunksByHeading(t *testing.T) {
	path := writeChangelog(t)

	sections, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	var titles []string
	for _, s := range sections {
		titles = append(titles, s.Title)
	}
	joined := strings.Join(titles, ",")
	if !strings.Contains(joined, "v2.0.0") || !strings.Contains(joined, "v1.4.0") {
		t.Fatalf("expected release sections, got titles %v", titles)
	}
}
