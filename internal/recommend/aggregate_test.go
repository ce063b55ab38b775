// Shmali - Hebrew Podcast Recommendation Service
// Copyright 2026 Sivan Lackrif
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SivanLackrif/shmali

package recommend

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

// fakeCatalog returns scripted results per query and records the
// queries it saw.
type fakeCatalog struct {
	mu      sync.Mutex
	results map[string][]CatalogItem
	err     error
	queries []string
}

func (f *fakeCatalog) Search(_ context.Context, query string, _ LanguagePreference, _ int) ([]CatalogItem, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.results[query], nil
}

func (f *fakeCatalog) seen(query string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, q := range f.queries {
		if q == query {
			return true
		}
	}
	return false
}

type fakeDataset struct {
	items []CatalogItem
}

func (f *fakeDataset) All() []CatalogItem {
	return f.items
}

func newTestAggregator(catalog CatalogSource, dataset DatasetSource) *Aggregator {
	return NewAggregator(defaultScorer(), catalog, dataset, 5, 0.3)
}

func TestBuildPoolMergesAndSorts(t *testing.T) {
	t.Parallel()

	catalog := &fakeCatalog{
		results: map[string][]CatalogItem{
			"ספורט": {
				{Name: "פודקאסט ספורט", Languages: []string{"he"}, Episodes: 50},
				{Name: "לא קשור", Languages: []string{"en"}},
			},
		},
	}
	dataset := &fakeDataset{
		items: []CatalogItem{
			{Name: "ספורט מקומי", Description: "שיחות ספורט", Languages: []string{"he"}, Episodes: 20},
			{Name: "אסטרונומיה", Description: "כוכבים", Languages: []string{"he"}},
		},
	}

	req := StructuredRequest{Topics: []string{"ספורט"}, Language: LanguageHebrew}
	pool := newTestAggregator(catalog, dataset).BuildPool(context.Background(), req)

	if len(pool) == 0 {
		t.Fatal("expected non-empty pool")
	}
	for i := 1; i < len(pool); i++ {
		if pool[i].Score > pool[i-1].Score {
			t.Errorf("pool not sorted: %f before %f", pool[i-1].Score, pool[i].Score)
		}
	}
	if pool[0].Name != "ספורט מקומי" {
		t.Errorf("top item = %q, want the strongest match", pool[0].Name)
	}

	for _, item := range pool {
		switch item.Name {
		case "פודקאסט ספורט", "לא קשור":
			if item.Source != SourceSpotify {
				t.Errorf("%s source = %q, want spotify", item.Name, item.Source)
			}
		default:
			if item.Source != SourceDataset {
				t.Errorf("%s source = %q, want dataset", item.Name, item.Source)
			}
		}
	}
}

func TestBuildPoolLocalThreshold(t *testing.T) {
	t.Parallel()

	dataset := &fakeDataset{
		items: []CatalogItem{
			{Name: "רלוונטי", Description: "הכל על ספורט", Languages: []string{"he"}, Episodes: 10},
			{Name: "irrelevant", Description: "completely unrelated english content", Languages: []string{"en"}},
		},
	}

	req := StructuredRequest{Topics: []string{"ספורט"}, Language: LanguageHebrew}
	pool := newTestAggregator(nil, dataset).BuildPool(context.Background(), req)

	for _, item := range pool {
		if item.Score < 0.3 {
			t.Errorf("local item %q below threshold: %f", item.Name, item.Score)
		}
		if item.Name == "irrelevant" {
			t.Error("weak local match must be filtered out")
		}
	}
}

func TestBuildPoolDedupeRemoteWins(t *testing.T) {
	t.Parallel()

	catalog := &fakeCatalog{
		results: map[string][]CatalogItem{
			"ספורט": {{Name: "כפול", Description: "ספורט", Languages: []string{"he"}, Episodes: 10}},
		},
	}
	dataset := &fakeDataset{
		items: []CatalogItem{{Name: "כפול", Description: "ספורט", Languages: []string{"he"}, Episodes: 10}},
	}

	req := StructuredRequest{Topics: []string{"ספורט"}, Language: LanguageHebrew}
	pool := newTestAggregator(catalog, dataset).BuildPool(context.Background(), req)

	count := 0
	for _, item := range pool {
		if item.Name == "כפול" {
			count++
			if item.Source != SourceSpotify {
				t.Errorf("duplicate kept source %q, want spotify", item.Source)
			}
		}
	}
	if count != 1 {
		t.Errorf("duplicate appears %d times, want 1", count)
	}
}

func TestBuildPoolKeywordFallback(t *testing.T) {
	t.Parallel()

	catalog := &fakeCatalog{results: map[string][]CatalogItem{}}
	req := StructuredRequest{
		Topics:   []string{"ספורט"},
		Keywords: []string{"כדורגל", "אימון", "שלישי"},
		Language: LanguageHebrew,
	}

	newTestAggregator(catalog, nil).BuildPool(context.Background(), req)

	if !catalog.seen("כדורגל אימון") {
		t.Errorf("keyword fallback query missing, saw %v", catalog.queries)
	}
}

func TestBuildPoolNoFallbackWhenEnoughResults(t *testing.T) {
	t.Parallel()

	many := make([]CatalogItem, 6)
	for i := range many {
		many[i] = CatalogItem{Name: string(rune('a' + i)), Languages: []string{"he"}}
	}
	catalog := &fakeCatalog{results: map[string][]CatalogItem{"ספורט": many}}
	req := StructuredRequest{
		Topics:   []string{"ספורט"},
		Keywords: []string{"כדורגל"},
		Language: LanguageHebrew,
	}

	newTestAggregator(catalog, nil).BuildPool(context.Background(), req)

	if catalog.seen("כדורגל") {
		t.Error("fallback query ran despite enough topic results")
	}
}

// skewedCatalog answers each query after a scripted delay so the
// per-topic goroutines finish in a different order than they started.
type skewedCatalog struct {
	fakeCatalog
	delays map[string]time.Duration
}

func (s *skewedCatalog) Search(ctx context.Context, query string, lang LanguagePreference, limit int) ([]CatalogItem, error) {
	time.Sleep(s.delays[query])
	return s.fakeCatalog.Search(ctx, query, lang, limit)
}

func TestBuildPoolDeterministic(t *testing.T) {
	t.Parallel()

	catalog := &skewedCatalog{
		fakeCatalog: fakeCatalog{
			results: map[string][]CatalogItem{
				"ספורט":  {{Name: "ראשון", Languages: []string{"he"}, Episodes: 10}},
				"בריאות": {{Name: "שני", Languages: []string{"he"}, Episodes: 10}},
				"עסקים":  {{Name: "שלישי", Languages: []string{"he"}, Episodes: 10}},
			},
		},
		// First topic is slowest, so completion order inverts topic order
		delays: map[string]time.Duration{
			"ספורט":  30 * time.Millisecond,
			"בריאות": 10 * time.Millisecond,
			"עסקים":  20 * time.Millisecond,
		},
	}
	dataset := &fakeDataset{
		items: []CatalogItem{{Name: "מקומי", Description: "ספורט בריאות", Languages: []string{"he"}, Episodes: 10}},
	}

	req := StructuredRequest{Topics: []string{"ספורט", "בריאות", "עסקים"}, Language: LanguageHebrew}
	agg := newTestAggregator(catalog, dataset)

	first := agg.BuildPool(context.Background(), req)
	if len(first) != 4 {
		t.Fatalf("pool size = %d, want 4", len(first))
	}
	for i := 0; i < 3; i++ {
		if got := agg.BuildPool(context.Background(), req); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d pool = %v, want identical to first run %v", i+2, got, first)
		}
	}
}

func TestBuildPoolToleratesCatalogFailure(t *testing.T) {
	t.Parallel()

	catalog := &fakeCatalog{err: errors.New("catalog down")}
	dataset := &fakeDataset{
		items: []CatalogItem{{Name: "מקומי", Description: "ספורט", Languages: []string{"he"}, Episodes: 10}},
	}

	req := StructuredRequest{Topics: []string{"ספורט"}, Language: LanguageHebrew}
	pool := newTestAggregator(catalog, dataset).BuildPool(context.Background(), req)

	if len(pool) == 0 {
		t.Error("expected local results despite catalog failure")
	}
}
