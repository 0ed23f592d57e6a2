package usecase

import (
	"sync"
	"testing"
	"time"

	"corpus/internal/adapter/analyzer"
	"corpus/internal/adapter/cache"
	"corpus/internal/domain"
	"corpus/internal/logging"
	"corpus/internal/metrics"
)

func TestSearchEngine_Rank(t *testing.T) {
	docs := textStore("the cat sat", "the dog ran", "a cat and a dog")
	engine := NewSearchEngine(docs, analyzer.NewTokenizer(false), WithEngineLogger(logging.Discard()))

	results := engine.Rank("cat", 2, true)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.DocID == 1 {
			t.Errorf("document without the query term ranked in top 2: %+v", results)
		}
	}
	if results[0].Score < results[1].Score {
		t.Errorf("results not ordered by score: %+v", results)
	}
}

func TestSearchEngine_StaleWithoutAutoRebuild(t *testing.T) {
	docs := textStore("alpha")
	engine := NewSearchEngine(docs, analyzer.NewTokenizer(false), WithEngineLogger(logging.Discard()))

	docs.Add(domain.NewDocument("b", "x", day(2024, 1, 2), "", "beta"))
	if !engine.Stale() {
		t.Fatal("expected index to be stale after Add")
	}
	if got := engine.Index().NumDocs(); got != 1 {
		t.Errorf("index should keep serving the old snapshot, got %d docs", got)
	}
	if got := engine.Rank("beta", 5, true); len(got) != 0 {
		t.Errorf("new document must not be visible before rebuild, got %+v", got)
	}

	engine.Rebuild()
	if engine.Stale() {
		t.Error("expected fresh index after Rebuild")
	}
	results := engine.Rank("beta", 1, true)
	if len(results) != 1 || results[0].DocID != 1 {
		t.Errorf("expected document 1 after rebuild, got %+v", results)
	}
}

func TestSearchEngine_AutoRebuild(t *testing.T) {
	docs := textStore("alpha")
	engine := NewSearchEngine(docs, analyzer.NewTokenizer(false),
		WithAutoRebuild(true), WithEngineLogger(logging.Discard()))

	docs.Add(domain.NewDocument("b", "x", day(2024, 1, 2), "", "beta"))
	results := engine.Rank("beta", 1, true)
	if len(results) != 1 || results[0].DocID != 1 {
		t.Errorf("expected auto rebuild to index the new document, got %+v", results)
	}
	if engine.Stale() {
		t.Error("expected fresh index")
	}
}

func TestSearchEngine_RebuildWithoutChangesKeepsIndex(t *testing.T) {
	docs := textStore("alpha")
	engine := NewSearchEngine(docs, analyzer.NewTokenizer(false), WithEngineLogger(logging.Discard()))

	first := engine.Index()
	builtAt := engine.BuiltAt()
	if second := engine.Rebuild(); second != first {
		t.Error("rebuild of an unchanged store should reuse the index")
	}
	if !engine.BuiltAt().Equal(builtAt) {
		t.Error("build time should not move without a rebuild")
	}
}

func TestSearchEngine_CacheAndMetrics(t *testing.T) {
	docs := textStore("alpha beta", "beta gamma")
	c := cache.NewQueryCache(16, time.Minute)
	m := metrics.New()
	engine := NewSearchEngine(docs, analyzer.NewTokenizer(false),
		WithQueryCache(c), WithMetrics(m), WithAutoRebuild(true), WithEngineLogger(logging.Discard()))

	first := engine.Rank("beta", 2, true)
	if c.Size() != 1 {
		t.Fatalf("expected one cached query, got %d", c.Size())
	}
	second := engine.Rank("beta", 2, true)
	if len(first) != len(second) || first[0] != second[0] {
		t.Errorf("cached results differ: %+v vs %+v", first, second)
	}

	docs.Add(domain.NewDocument("c", "x", day(2024, 1, 3), "", "beta beta"))
	third := engine.Rank("beta", 1, true)
	if third[0].DocID != 2 {
		t.Errorf("cache must be cleared by a rebuild, got %+v", third)
	}
}

func TestSearchEngine_LateCacheWriteFromOldIndex(t *testing.T) {
	docs := textStore("alpha beta", "beta gamma")
	c := cache.NewQueryCache(16, time.Minute)
	engine := NewSearchEngine(docs, analyzer.NewTokenizer(false),
		WithQueryCache(c), WithEngineLogger(logging.Discard()))

	oldGen := docs.Generation()
	old := engine.Index().Rank("beta", 1, true)

	docs.Add(domain.NewDocument("c", "x", day(2024, 1, 3), "", "beta beta"))
	engine.Rebuild()

	// A query that started on the old index finishes after the swap.
	if c.PutAt(oldGen, "beta", 1, true, old) {
		t.Fatal("results of a replaced index must not be cached")
	}
	if c.Size() != 0 {
		t.Fatalf("expected empty cache, got %d entries", c.Size())
	}

	got := engine.Rank("beta", 1, true)
	if len(got) != 1 || got[0].DocID != 2 {
		t.Errorf("expected the new document first, got %+v", got)
	}
	if _, ok := c.GetAt(oldGen, "beta", 1, true); ok {
		t.Error("lookups pinned to the old generation must miss")
	}
}

func TestSearchEngine_ConcurrentQueriesAndAdds(t *testing.T) {
	docs := textStore("seed document")
	engine := NewSearchEngine(docs, analyzer.NewTokenizer(false),
		WithAutoRebuild(true), WithEngineLogger(logging.Discard()))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			docs.Add(domain.NewDocument("t", "a", day(2024, 1, 1), "", "concurrent words"))
		}()
		go func() {
			defer wg.Done()
			results := engine.Rank("words", 3, true)
			for j := 1; j < len(results); j++ {
				if results[j-1].Score < results[j].Score {
					t.Errorf("unordered results: %+v", results)
				}
			}
		}()
	}
	wg.Wait()

	engine.Rebuild()
	if got := engine.Index().NumDocs(); got != 9 {
		t.Errorf("expected 9 indexed documents, got %d", got)
	}
}
