// Shmali - Hebrew Podcast Recommendation Service
// Copyright 2026 Sivan Lackrif
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SivanLackrif/shmali

// Package dataset loads the local curated podcast catalog from a CSV
// file. The dataset is read once at startup and served from memory.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/SivanLackrif/shmali/internal/logging"
	"github.com/SivanLackrif/shmali/internal/recommend"
)

// Dataset is an immutable in-memory catalog. Safe for concurrent use.
type Dataset struct {
	items []recommend.CatalogItem
}

// Load reads the CSV at path. Expected header columns: name, publisher,
// description, url, duration_minutes, language, total_episodes. Column
// order is free; unknown columns are ignored. Rows without a name are
// skipped with a warning.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	d, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}

	logging.Info().Int("items", len(d.items)).Str("path", path).Msg("local dataset loaded")
	return d, nil
}

// All returns every catalog item.
func (d *Dataset) All() []recommend.CatalogItem {
	return d.items
}

// Len returns the number of items.
func (d *Dataset) Len() int {
	return len(d.items)
}

func parse(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // tolerate ragged rows
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols["name"]; !ok {
		return nil, fmt.Errorf("missing required column: name")
	}

	var items []recommend.CatalogItem
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line+1, err)
		}
		line++

		item := recommend.CatalogItem{
			Name:        field(record, cols, "name"),
			Publisher:   field(record, cols, "publisher"),
			Description: field(record, cols, "description"),
			URL:         field(record, cols, "url"),
			Source:      recommend.SourceDataset,
		}
		if item.Name == "" {
			logging.Warn().Int("row", line).Msg("skipping dataset row without a name")
			continue
		}
		item.ID = fmt.Sprintf("dataset-%d", line)

		if lang := field(record, cols, "language"); lang != "" {
			item.Languages = []string{strings.ToLower(lang)}
		}
		item.DurationMinutes = intField(record, cols, "duration_minutes", line)
		item.Episodes = intField(record, cols, "total_episodes", line)

		items = append(items, item)
	}

	return &Dataset{items: items}, nil
}

// field returns a trimmed column value, or empty when absent.
func field(record []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// intField parses a numeric column, treating blanks and junk as zero.
func intField(record []string, cols map[string]int, name string, line int) int {
	raw := field(record, cols, name)
	if raw == "" {
		return 0
	}
	// Some exports store counts as floats ("42.0")
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f >= 0 {
		return int(f)
	}
	logging.Warn().Int("row", line).Str("column", name).Str("value", raw).Msg("unparseable numeric field in dataset")
	return 0
}
