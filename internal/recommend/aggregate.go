// Shmali - Hebrew Podcast Recommendation Service
// Copyright 2026 Sivan Lackrif
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SivanLackrif/shmali

package recommend

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SivanLackrif/shmali/internal/logging"
	"github.com/SivanLackrif/shmali/internal/metrics"
)

// perTopicLimit caps results requested per catalog query.
const perTopicLimit = 10

// Aggregator builds a scored candidate pool from the remote catalog and
// the local dataset. Source failures degrade the pool instead of failing
// the turn: a pool built from whichever sources answered is always
// returned.
type Aggregator struct {
	scorer         *Scorer
	catalog        CatalogSource // nil disables remote search
	dataset        DatasetSource // nil disables the local source
	minRemote      int
	localThreshold float64
}

// NewAggregator returns an aggregator. catalog and dataset may be nil.
func NewAggregator(scorer *Scorer, catalog CatalogSource, dataset DatasetSource, minRemote int, localThreshold float64) *Aggregator {
	return &Aggregator{
		scorer:         scorer,
		catalog:        catalog,
		dataset:        dataset,
		minRemote:      minRemote,
		localThreshold: localThreshold,
	}
}

// BuildPool returns the deduplicated candidate pool for req, sorted by
// descending score. Remote results come first in insertion order, so on
// a name collision the remote item wins.
func (a *Aggregator) BuildPool(ctx context.Context, req StructuredRequest) []CatalogItem {
	var pool []CatalogItem

	remote := a.searchRemote(ctx, req)
	pool = append(pool, remote...)

	pool = append(pool, a.searchLocal(req)...)

	pool = dedupeByName(pool)

	// Stable sort keeps the remote-first ordering among equal scores
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Score > pool[j].Score
	})

	metrics.CandidatePoolSize.Observe(float64(len(pool)))
	return pool
}

// searchRemote queries the catalog once per topic concurrently, then
// falls back to a keyword query when topics produced too few results.
// Remote items are scored but not thresholded; the catalog's own search
// ranking already filtered them.
func (a *Aggregator) searchRemote(ctx context.Context, req StructuredRequest) []CatalogItem {
	if a.catalog == nil {
		return nil
	}

	results := make([][]CatalogItem, len(req.Topics))
	var wg sync.WaitGroup

	for i, topic := range req.Topics {
		wg.Add(1)
		go func(i int, topic string) {
			defer wg.Done()
			results[i] = a.query(ctx, topic, req)
		}(i, topic)
	}
	wg.Wait()

	var remote []CatalogItem
	for _, r := range results {
		remote = append(remote, r...)
	}

	// Keyword fallback when topic queries came up short
	if len(remote) < a.minRemote && len(req.Keywords) > 0 {
		kw := req.Keywords
		if len(kw) > 2 {
			kw = kw[:2]
		}
		remote = append(remote, a.query(ctx, strings.Join(kw, " "), req)...)
	}

	return remote
}

// query runs one catalog search and scores the results. Errors are
// logged and recorded; the pool is simply smaller.
func (a *Aggregator) query(ctx context.Context, q string, req StructuredRequest) []CatalogItem {
	start := time.Now()
	items, err := a.catalog.Search(ctx, q, req.Language, perTopicLimit)
	metrics.RecordSourceQuery(string(SourceSpotify), time.Since(start), err)

	if err != nil {
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("query", q).
			Msg("catalog search failed")
		return nil
	}

	for i := range items {
		items[i].Source = SourceSpotify
		items[i].Score = a.scorer.Score(req, items[i])
	}
	return items
}

// searchLocal scores every dataset item and keeps those at or above the
// local threshold. The threshold applies only here: local entries have
// no catalog ranking behind them, so weak matches are cut.
func (a *Aggregator) searchLocal(req StructuredRequest) []CatalogItem {
	if a.dataset == nil {
		return nil
	}

	start := time.Now()
	var local []CatalogItem
	for _, item := range a.dataset.All() {
		item.Source = SourceDataset
		item.Score = a.scorer.Score(req, item)
		if item.Score >= a.localThreshold {
			local = append(local, item)
		}
	}
	metrics.RecordSourceQuery(string(SourceDataset), time.Since(start), nil)

	sort.SliceStable(local, func(i, j int) bool {
		return local[i].Score > local[j].Score
	})
	return local
}

// dedupeByName keeps the first occurrence of each show name.
func dedupeByName(items []CatalogItem) []CatalogItem {
	seen := make(map[string]bool, len(items))
	unique := items[:0]
	for _, item := range items {
		if seen[item.Name] {
			continue
		}
		seen[item.Name] = true
		unique = append(unique, item)
	}
	return unique
}
