package retriever

import (
	"math"
	"testing"

	"corpus/internal/adapter/analyzer"
	"corpus/internal/domain"
)

func TestRank_CatDog(t *testing.T) {
	ix := NewIndex(corpusOf("The cat sat.", "The dog sat!"), analyzer.NewTokenizer(false))

	got := ix.Rank("cat", 2, true)
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %v", got)
	}
	if got[0].DocID != 0 || got[1].DocID != 1 {
		t.Errorf("order = %v, want doc 0 then doc 1", got)
	}

	idfCat := math.Log(1.5) + 1
	want := idfCat / math.Sqrt(idfCat*idfCat+2)
	if !approx(got[0].Score, want) {
		t.Errorf("score = %v, want %v", got[0].Score, want)
	}
	if got[1].Score != 0 {
		t.Errorf("score of non-matching document = %v, want 0", got[1].Score)
	}
}

func TestRank_TieBreakByID(t *testing.T) {
	ix := NewIndex(corpusOf("The cat sat.", "The dog sat!"), analyzer.NewTokenizer(false))

	got := ix.Rank("sat", 2, true)
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %v", got)
	}
	if !approx(got[0].Score, got[1].Score) {
		t.Errorf("expected equal scores, got %v", got)
	}
	if got[0].DocID != 0 || got[1].DocID != 1 {
		t.Errorf("ties must be ordered by id, got %v", got)
	}
}

func TestRank_OutOfVocabulary(t *testing.T) {
	ix := NewIndex(corpusOf("The cat sat.", "The dog sat!"), analyzer.NewTokenizer(false))

	for _, q := range []string{"zebra", "", "123 !!"} {
		if got := ix.Rank(q, 5, true); len(got) != 0 {
			t.Errorf("Rank(%q) = %v, want empty", q, got)
		}
	}
	// Unknown tokens mixed with known ones are ignored.
	mixed := ix.Rank("zebra cat", 1, true)
	plain := ix.Rank("cat", 1, true)
	if len(mixed) != 1 || mixed[0] != plain[0] {
		t.Errorf("OOV token changed ranking: %v vs %v", mixed, plain)
	}
}

func TestRank_TopN(t *testing.T) {
	ix := NewIndex(corpusOf("a b", "b c", "c d", "d e"), analyzer.NewTokenizer(false))

	if got := ix.Rank("b", 0, true); len(got) != 0 {
		t.Errorf("topN=0 returned %v", got)
	}
	if got := ix.Rank("b", -3, true); len(got) != 0 {
		t.Errorf("negative topN returned %v", got)
	}
	if got := ix.Rank("b", 2, true); len(got) != 2 {
		t.Errorf("topN=2 returned %d results", len(got))
	}
	if got := ix.Rank("b", 100, true); len(got) != 4 {
		t.Errorf("topN larger than corpus returned %d results", len(got))
	}
}

func TestRank_ScoresBoundedAndSorted(t *testing.T) {
	ix := NewIndex(corpusOf(
		"the quick brown fox",
		"the lazy dog",
		"quick quick quick",
		"brown dog and brown fox",
		"",
	), analyzer.NewTokenizer(false))

	for _, weighting := range []bool{true, false} {
		got := ix.Rank("quick brown dog", 10, weighting)
		for i, r := range got {
			if r.Score < -1e-12 || r.Score > 1+1e-12 {
				t.Errorf("score %v out of [0,1]", r.Score)
			}
			if i > 0 {
				prev := got[i-1]
				if prev.Score < r.Score || (prev.Score == r.Score && prev.DocID > r.DocID) {
					t.Errorf("results not ordered at %d: %v", i, got)
				}
			}
		}
	}
}

func TestRank_SelfQueryRanksFirst(t *testing.T) {
	texts := []string{
		"solar panels convert sunlight into electricity",
		"wind turbines spin in coastal areas",
		"electric cars need charging stations",
	}
	ix := NewIndex(corpusOf(texts...), analyzer.NewTokenizer(false))

	for id, text := range texts {
		got := ix.Rank(text, 1, true)
		if len(got) != 1 || got[0].DocID != id {
			t.Errorf("querying document %d text ranked %v first", id, got)
		}
		if !approx(got[0].Score, 1) {
			t.Errorf("self similarity of %d = %v, want 1", id, got[0].Score)
		}
	}
}

func TestRank_PermutationInvariant(t *testing.T) {
	texts := []string{"red apple pie", "green apple", "red wine", "blue sky"}
	order := []int{2, 0, 3, 1}
	permuted := make([]string, len(texts))
	for i, j := range order {
		permuted[i] = texts[j]
	}

	tok := analyzer.NewTokenizer(false)
	a := NewIndex(corpusOf(texts...), tok)
	b := NewIndex(corpusOf(permuted...), tok)

	byText := func(ix *Index, src []string) map[string]float64 {
		out := make(map[string]float64)
		for _, r := range ix.Rank("red apple", len(src), true) {
			out[src[r.DocID]] = r.Score
		}
		return out
	}
	sa, sb := byText(a, texts), byText(b, permuted)
	for text, score := range sa {
		if !approx(score, sb[text]) {
			t.Errorf("score of %q differs: %v vs %v", text, score, sb[text])
		}
	}
}

func TestRank_UnweightedUsesRawCounts(t *testing.T) {
	ix := NewIndex(corpusOf("cat cat dog", "cat dog dog"), analyzer.NewTokenizer(false))

	got := ix.Rank("cat", 2, false)
	if got[0].DocID != 0 {
		t.Errorf("expected document with more cats first, got %v", got)
	}
	if !approx(got[0].Score, 2/math.Sqrt(5)) {
		t.Errorf("score = %v, want %v", got[0].Score, 2/math.Sqrt(5))
	}
}

func TestNewIndex_SortsDocumentsByID(t *testing.T) {
	docs := corpusOf("first", "second")
	docs[0], docs[1] = docs[1], docs[0]

	ix := NewIndex(docs, analyzer.NewTokenizer(false))
	ids := ix.DocIDs()
	if ids[0] != 0 || ids[1] != 1 {
		t.Errorf("DocIDs = %v, want [0 1]", ids)
	}
	got := ix.Rank("second", 1, true)
	if len(got) != 1 || got[0] != (domain.ScoredDocument{DocID: 1, Score: got[0].Score}) {
		t.Errorf("Rank = %v", got)
	}
}
