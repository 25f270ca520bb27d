package engine

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"tscass/internal/core"
)

// criticality thresholds §9 "preserve the heuristic verbatim."
const (
	criticalReadThreshold     = 5000
	criticalFilteredThreshold = 100

	// defaultBucketQueryLimit bounds a single bucket/tag-value lookup
	// when no read-rows ceiling is configured.
	defaultBucketQueryLimit = 10000
)

// planResult carries the planner's chosen index name and the
// criticality verdict the caller attaches to query metadata (§9).
type planResult struct {
	index    string
	critical bool
}

// resolveCandidates implements §4.6: the plugin short-circuit, the
// split-vs-global index choice, the concurrent bucket/tag-value
// fan-out, and incremental limit enforcement.
func (e *Engine) resolveCandidates(ctx context.Context, q core.Query) ([]core.RowKey, planResult, error) {
	for _, p := range q.Plugins {
		if provider, ok := p.(core.RowKeyProvider); ok {
			keys, err := provider.CandidateKeys(q)
			if err != nil {
				return nil, planResult{index: "plugin:" + p.Name()}, core.NewDatastoreError("plugin row-key provider failed", err)
			}
			return keys, planResult{index: "plugin:" + p.Name()}, nil
		}
	}

	startBucket := core.FloorToWidth(q.StartMs, e.cfg.RowWidthReadMs)
	endBucket := core.FloorToWidth(q.EndMs, e.cfg.RowWidthWriteMs)
	buckets := core.Buckets(startBucket, endBucket, e.cfg.RowWidthReadMs)

	indexable := e.policy.IndexableTags(q.MetricName)
	splitTag, splitValues, useSplit := pickSplitTag(q.TagFilters, indexable)

	indexName := "global"
	if useSplit {
		indexName = "split:" + splitTag
	}

	lim := &candidateLimiter{
		readLimit:     e.cfg.MaxRowsForKeysQuery,
		filteredLimit: e.cfg.MaxRowKeysForQuery,
		metric:        q.MetricName,
		index:         indexName,
	}

	remaining := make(map[string][]*core.Glob, len(q.TagFilters))
	for tagName, patterns := range q.TagFilters {
		if useSplit && tagName == splitTag {
			continue
		}
		remaining[tagName] = core.CompileGlobs(patterns)
	}

	bucketLimit := e.cfg.MaxRowsForKeysQuery
	if bucketLimit <= 0 {
		bucketLimit = defaultBucketQueryLimit
	}

	var mu sync.Mutex
	var candidates []core.RowKey

	collect := func(rows []indexRow) error {
		if err := lim.addRead(len(rows)); err != nil {
			e.counters.IncReadRowsExceeded()
			return err
		}
		kept := make([]core.RowKey, 0, len(rows))
		for _, row := range rows {
			key, err := core.DecodeRowKey(row.serialized)
			if err != nil {
				continue
			}
			if !matchesFilters(key.Tags, remaining) {
				continue
			}
			kept = append(kept, key)
		}
		if len(kept) == 0 {
			return nil
		}
		if err := lim.addFiltered(len(kept)); err != nil {
			e.counters.IncFilteredRowsExceeded()
			return err
		}
		mu.Lock()
		candidates = append(candidates, kept...)
		mu.Unlock()
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)

	if useSplit {
		for _, bucket := range buckets {
			for _, value := range splitValues {
				bucket, value := bucket, value
				g.Go(func() error {
					rows, err := e.querySplitIndexBucket(gctx, q.MetricName, splitTag, value, bucket, bucketLimit)
					if err != nil {
						return err
					}
					return collect(rows)
				})
			}
		}
	} else {
		for _, bucket := range buckets {
			bucket := bucket
			g.Go(func() error {
				rows, err := e.queryGlobalIndexBucket(gctx, q.MetricName, bucket, bucketLimit)
				if err != nil {
					return err
				}
				return collect(rows)
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, planResult{index: indexName}, err
	}

	result := planResult{
		index:    indexName,
		critical: lim.readCount() > criticalReadThreshold || lim.filteredCount() > criticalFilteredThreshold,
	}
	return candidates, result, nil
}

// pickSplitTag implements §4.6's eligibility and minimality rule: the
// eligible (wildcard-free) tag filter with the smallest value-set size
// wins; ties break on tag name to keep the choice deterministic.
func pickSplitTag(filters map[string][]string, indexable []string) (tag string, values []string, ok bool) {
	indexableSet := make(map[string]bool, len(indexable))
	for _, t := range indexable {
		indexableSet[t] = true
	}

	tagNames := make([]string, 0, len(filters))
	for t := range filters {
		tagNames = append(tagNames, t)
	}
	sort.Strings(tagNames)

	best := -1
	for _, t := range tagNames {
		if !indexableSet[t] {
			continue
		}
		vals := filters[t]
		if len(vals) == 0 {
			continue
		}
		eligible := true
		for _, v := range vals {
			if core.HasWildcard(v) {
				eligible = false
				break
			}
		}
		if !eligible {
			continue
		}
		if best == -1 || len(vals) < best {
			best = len(vals)
			tag = t
			values = vals
			ok = true
		}
	}
	return
}

func matchesFilters(tags core.Tags, filters map[string][]*core.Glob) bool {
	for tagName, globs := range filters {
		value, present := tags[tagName]
		if !present {
			return false
		}
		if !core.MatchAny(globs, value) {
			return false
		}
	}
	return true
}

// candidateLimiter enforces §4.6's two ceilings incrementally as
// bucket/tag-value lookups complete out of order.
type candidateLimiter struct {
	mu            sync.Mutex
	readTotal     int
	filteredTotal int
	readLimit     int
	filteredLimit int
	metric        string
	index         string
}

func (l *candidateLimiter) addRead(n int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.readTotal += n
	if l.readLimit > 0 && l.readTotal > l.readLimit {
		return core.NewMaxRowKeysExceeded(l.metric, l.index, l.readTotal, l.filteredTotal, l.readLimit, "read_rows_limit exceeded")
	}
	return nil
}

func (l *candidateLimiter) addFiltered(n int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.filteredTotal += n
	if l.filteredLimit > 0 && l.filteredTotal > l.filteredLimit {
		return core.NewMaxRowKeysExceeded(l.metric, l.index, l.readTotal, l.filteredTotal, l.filteredLimit, "filtered_rows_limit exceeded")
	}
	return nil
}

func (l *candidateLimiter) readCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readTotal
}

func (l *candidateLimiter) filteredCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filteredTotal
}
