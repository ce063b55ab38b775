// Shmali - Hebrew Podcast Recommendation Service
// Copyright 2026 Sivan Lackrif
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SivanLackrif/shmali

package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/SivanLackrif/shmali/internal/recommend"
)

func TestParse(t *testing.T) {
	t.Parallel()

	csv := `name,publisher,description,url,duration_minutes,language,total_episodes
שיחת ספורט,רדיו ישראל,הכל על ספורט,https://example.com/1,45,He,120
,מפיק אלמוני,שורה ללא שם,https://example.com/skip,10,he,5
פודקאסט טכנולוגיה,רשת,חדשות טכנולוגיה,https://example.com/2,30.0,en-US,42.0
`
	d, err := parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}

	if d.Len() != 2 {
		t.Fatalf("Len = %d, want 2 (nameless row skipped)", d.Len())
	}

	first := d.All()[0]
	if first.Name != "שיחת ספורט" {
		t.Errorf("Name = %q", first.Name)
	}
	if first.Publisher != "רדיו ישראל" {
		t.Errorf("Publisher = %q", first.Publisher)
	}
	if first.DurationMinutes != 45 {
		t.Errorf("DurationMinutes = %d, want 45", first.DurationMinutes)
	}
	if first.Episodes != 120 {
		t.Errorf("Episodes = %d, want 120", first.Episodes)
	}
	if len(first.Languages) != 1 || first.Languages[0] != "he" {
		t.Errorf("Languages = %v, want lowercased [he]", first.Languages)
	}
	if first.Source != recommend.SourceDataset {
		t.Errorf("Source = %q, want dataset", first.Source)
	}
	if first.ID == "" {
		t.Error("ID must be assigned")
	}

	second := d.All()[1]
	if second.DurationMinutes != 30 || second.Episodes != 42 {
		t.Errorf("float numeric fields parsed as %d/%d, want 30/42", second.DurationMinutes, second.Episodes)
	}
}

func TestParseColumnOrderFree(t *testing.T) {
	t.Parallel()

	csv := `language,name,total_episodes
he,בסדר אחר,7
`
	d, err := parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}
	if d.Len() != 1 {
		t.Fatalf("Len = %d, want 1", d.Len())
	}
	item := d.All()[0]
	if item.Name != "בסדר אחר" || item.Episodes != 7 {
		t.Errorf("item = %+v", item)
	}
}

func TestParseRaggedAndJunkRows(t *testing.T) {
	t.Parallel()

	csv := `name,duration_minutes,total_episodes
קצר
מספרים שבורים,abc,xyz
`
	d, err := parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}
	if d.Len() != 2 {
		t.Fatalf("Len = %d, want 2", d.Len())
	}
	junk := d.All()[1]
	if junk.DurationMinutes != 0 || junk.Episodes != 0 {
		t.Errorf("junk numeric fields = %d/%d, want zeros", junk.DurationMinutes, junk.Episodes)
	}
}

func TestParseMissingNameColumn(t *testing.T) {
	t.Parallel()

	if _, err := parse(strings.NewReader("publisher,url\nx,y\n")); err == nil {
		t.Error("expected an error for a header without a name column")
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "podcasts.csv")
	content := "name,language\nתוכנית בדיקה,he\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	d, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if d.Len() != 1 {
		t.Errorf("Len = %d, want 1", d.Len())
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
