package usecase

import (
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"corpus/internal/adapter/cache"
	"corpus/internal/adapter/memstore"
	"corpus/internal/adapter/retriever"
	"corpus/internal/domain"
	"corpus/internal/metrics"
	"corpus/internal/port"
)

// snapshot pairs a built index with the store generation it was built from.
type snapshot struct {
	index      *retriever.Index
	generation uint64
	builtAt    time.Time
}

// SearchEngine owns the term index of a document store. The index is built
// from a snapshot of the store, never mutated, and replaced as a whole by
// Rebuild. Queries always see one complete index.
type SearchEngine struct {
	docs        *memstore.DocumentStore
	tokenizer   port.Tokenizer
	autoRebuild bool
	cache       *cache.QueryCache
	metrics     *metrics.Metrics
	log         *logrus.Entry

	current atomic.Pointer[snapshot]
	builds  singleflight.Group
}

type EngineOption func(*SearchEngine)

// WithAutoRebuild makes queries rebuild a stale index before ranking.
func WithAutoRebuild(enabled bool) EngineOption {
	return func(e *SearchEngine) { e.autoRebuild = enabled }
}

func WithQueryCache(c *cache.QueryCache) EngineOption {
	return func(e *SearchEngine) { e.cache = c }
}

func WithMetrics(m *metrics.Metrics) EngineOption {
	return func(e *SearchEngine) { e.metrics = m }
}

func WithEngineLogger(log *logrus.Entry) EngineOption {
	return func(e *SearchEngine) { e.log = log }
}

// NewSearchEngine builds the initial index over the current content of docs.
func NewSearchEngine(docs *memstore.DocumentStore, tokenizer port.Tokenizer, opts ...EngineOption) *SearchEngine {
	e := &SearchEngine{
		docs:      docs,
		tokenizer: tokenizer,
		log:       logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.Rebuild()
	return e
}

// Rebuild indexes the current store content and swaps the new index in.
// Concurrent calls share a single build.
func (e *SearchEngine) Rebuild() *retriever.Index {
	return e.rebuild().index
}

func (e *SearchEngine) rebuild() *snapshot {
	v, _, _ := e.builds.Do("rebuild", func() (interface{}, error) {
		return e.build(), nil
	})
	return v.(*snapshot)
}

func (e *SearchEngine) build() *snapshot {
	start := time.Now()
	docs, gen := e.docs.Snapshot()

	if cur := e.current.Load(); cur != nil && cur.generation == gen {
		return cur
	}

	snap := &snapshot{
		index:      retriever.NewIndex(docs, e.tokenizer),
		generation: gen,
		builtAt:    time.Now(),
	}
	e.current.Store(snap)
	if e.cache != nil {
		e.cache.Advance(gen)
	}

	elapsed := time.Since(start)
	if e.metrics != nil {
		e.metrics.IndexBuildsTotal.Inc()
		e.metrics.IndexBuildDuration.Observe(elapsed.Seconds())
		e.metrics.VocabularySize.Set(float64(snap.index.Vocabulary().Len()))
		e.metrics.IndexedDocuments.Set(float64(snap.index.NumDocs()))
	}
	e.log.WithFields(logrus.Fields{
		"documents":  snap.index.NumDocs(),
		"vocabulary": snap.index.Vocabulary().Len(),
		"generation": gen,
		"elapsed":    elapsed,
	}).Debug("index built")
	return snap
}

// Stale reports whether documents were added since the last build.
func (e *SearchEngine) Stale() bool {
	return e.current.Load().generation != e.docs.Generation()
}

// Index returns the index queries are served from, rebuilding it first when
// it is stale and auto rebuild is enabled.
func (e *SearchEngine) Index() *retriever.Index {
	return e.serving().index
}

func (e *SearchEngine) serving() *snapshot {
	if e.autoRebuild && e.Stale() {
		return e.rebuild()
	}
	return e.current.Load()
}

// BuiltAt returns the time the serving index was built.
func (e *SearchEngine) BuiltAt() time.Time {
	return e.current.Load().builtAt
}

// Documents exposes the store the engine indexes.
func (e *SearchEngine) Documents() *memstore.DocumentStore {
	return e.docs
}

// Rank returns the topN documents most similar to query.
func (e *SearchEngine) Rank(query string, topN int, useWeighting bool) []domain.ScoredDocument {
	start := time.Now()
	snap := e.serving()

	cacheStatus := "none"
	var results []domain.ScoredDocument
	if e.cache != nil {
		if cached, ok := e.cache.GetAt(snap.generation, query, topN, useWeighting); ok {
			results, cacheStatus = cached, "hit"
		} else {
			cacheStatus = "miss"
		}
	}
	if results == nil {
		results = snap.index.Rank(query, topN, useWeighting)
		if e.cache != nil {
			e.cache.PutAt(snap.generation, query, topN, useWeighting, results)
		}
	}

	if e.metrics != nil {
		e.metrics.QueriesTotal.WithLabelValues(metrics.WeightingLabel(useWeighting)).Inc()
		e.metrics.QueryLatency.WithLabelValues(cacheStatus).Observe(time.Since(start).Seconds())
		switch cacheStatus {
		case "hit":
			e.metrics.CacheHitsTotal.Inc()
		case "miss":
			e.metrics.CacheMissesTotal.Inc()
		}
	}
	e.log.WithFields(logrus.Fields{
		"query":   query,
		"top_n":   topN,
		"tfidf":   useWeighting,
		"results": len(results),
		"cache":   cacheStatus,
	}).Debug("query ranked")
	return results
}
