package retriever

import (
	"math"
	"testing"
	"time"

	"corpus/internal/adapter/analyzer"
	"corpus/internal/domain"
)

func corpusOf(texts ...string) []domain.Document {
	docs := make([]domain.Document, len(texts))
	for i, text := range texts {
		docs[i] = domain.NewDocument("t", "a", time.Unix(0, 0).UTC(), "", text)
		docs[i].ID = i
	}
	return docs
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestBuildTermIndex_CatDog(t *testing.T) {
	docs := corpusOf("The cat sat.", "The dog sat!")
	vocab, tf := BuildTermIndex(docs, analyzer.NewTokenizer(false))

	want := []string{"cat", "dog", "sat", "the"}
	got := vocab.Terms()
	if len(got) != len(want) {
		t.Fatalf("vocabulary = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("vocabulary = %v, want %v", got, want)
		}
	}

	if tf.Rows() != 2 || tf.Cols() != 4 {
		t.Fatalf("tf shape = %dx%d, want 2x4", tf.Rows(), tf.Cols())
	}
	rows := [][]float64{{1, 0, 1, 1}, {0, 1, 1, 1}}
	for i, row := range rows {
		for j, v := range row {
			if tf.At(i, j) != v {
				t.Errorf("tf[%d][%d] = %v, want %v", i, j, tf.At(i, j), v)
			}
		}
	}

	cat, _ := vocab.Lookup("cat")
	if cat.TF != 1 || cat.DF != 1 || cat.Column != 0 {
		t.Errorf("cat entry = %+v", cat)
	}
	the, _ := vocab.Lookup("the")
	if the.TF != 2 || the.DF != 2 || the.Column != 3 {
		t.Errorf("the entry = %+v", the)
	}
}

func TestNewIndex_IDFValues(t *testing.T) {
	ix := NewIndex(corpusOf("The cat sat.", "The dog sat!"), analyzer.NewTokenizer(false))

	cat, _ := ix.Vocabulary().Lookup("cat")
	if !approx(cat.IDF, math.Log(1.5)+1) {
		t.Errorf("idf(cat) = %v, want %v", cat.IDF, math.Log(1.5)+1)
	}
	sat, _ := ix.Vocabulary().Lookup("sat")
	if !approx(sat.IDF, 1.0) {
		t.Errorf("idf(sat) = %v, want 1", sat.IDF)
	}

	// TF-IDF cell equals tf * idf.
	if !approx(ix.TFIDF().At(0, cat.Column), cat.IDF) {
		t.Errorf("tfidf[0][cat] = %v", ix.TFIDF().At(0, cat.Column))
	}
	if ix.TFIDF().At(1, cat.Column) != 0 {
		t.Errorf("tfidf[1][cat] should be zero")
	}
}

func TestNewIndex_Invariants(t *testing.T) {
	docs := corpusOf(
		"alpha beta gamma",
		"beta gamma gamma delta",
		"gamma epsilon",
		"",
		"42 !!!",
		"alpha alpha alpha",
	)
	ix := NewIndex(docs, analyzer.NewTokenizer(false))
	n := ix.NumDocs()

	if ix.TF().Rows() != n || ix.TFIDF().Rows() != n {
		t.Fatalf("rows do not match document count")
	}
	if ix.TF().Cols() != ix.Vocabulary().Len() {
		t.Fatalf("cols do not match vocabulary size")
	}

	sums := ix.TF().ColumnSums()
	for _, term := range ix.Vocabulary().Terms() {
		e, _ := ix.Vocabulary().Lookup(term)
		if e.DF < 1 || e.DF > n {
			t.Errorf("df(%s) = %d out of range", term, e.DF)
		}
		if e.TF < e.DF {
			t.Errorf("tf(%s) = %d below df %d", term, e.TF, e.DF)
		}
		if int(sums[e.Column]) != e.TF {
			t.Errorf("column sum of %s = %v, want %d", term, sums[e.Column], e.TF)
		}
		if e.IDF < 1 {
			t.Errorf("idf(%s) = %v below 1", term, e.IDF)
		}
	}

	// Empty documents keep an all-zero row.
	for _, row := range []int{3, 4} {
		if cols, _ := ix.TF().Row(row); len(cols) != 0 {
			t.Errorf("row %d should be empty, has %v", row, cols)
		}
	}
}

func TestComputeIDF_DecreasesWithDF(t *testing.T) {
	docs := corpusOf("a b c d", "b c d", "c d", "d")
	vocab, _ := BuildTermIndex(docs, analyzer.NewTokenizer(false))
	idf := ComputeIDF(vocab, len(docs))

	prev := math.Inf(1)
	for _, term := range []string{"a", "b", "c", "d"} {
		e, _ := vocab.Lookup(term)
		if idf[e.Column] >= prev {
			t.Errorf("idf(%s) = %v not below %v", term, idf[e.Column], prev)
		}
		prev = idf[e.Column]
	}
	// A term present everywhere still gets weight 1.
	d, _ := vocab.Lookup("d")
	if !approx(idf[d.Column], 1) {
		t.Errorf("idf(d) = %v, want 1", idf[d.Column])
	}
}

func TestNewIndex_EmptyCorpus(t *testing.T) {
	ix := NewIndex(nil, analyzer.NewTokenizer(false))
	if ix.NumDocs() != 0 || ix.Vocabulary().Len() != 0 {
		t.Fatalf("expected empty index")
	}
	if ix.TF().Rows() != 0 || ix.TFIDF().Cols() != 0 {
		t.Errorf("expected 0x0 matrices")
	}
	if got := ix.Rank("anything", 5, true); len(got) != 0 {
		t.Errorf("Rank on empty index = %v", got)
	}
}

func TestNewIndex_VocabularyGrowsMonotonically(t *testing.T) {
	tok := analyzer.NewTokenizer(false)
	small := NewIndex(corpusOf("one two", "two three"), tok)
	large := NewIndex(corpusOf("one two", "two three", "three four five"), tok)

	for _, term := range small.Vocabulary().Terms() {
		if _, ok := large.Vocabulary().Lookup(term); !ok {
			t.Errorf("term %q lost after adding a document", term)
		}
	}
	if large.Vocabulary().Len() != 5 {
		t.Errorf("vocabulary size = %d, want 5", large.Vocabulary().Len())
	}
}

func TestTermStats(t *testing.T) {
	ix := NewIndex(corpusOf("b a a", "c a b"), analyzer.NewTokenizer(false))
	stats := ix.TermStats()

	want := []domain.TermStat{
		{Word: "a", TF: 3, DF: 2},
		{Word: "b", TF: 2, DF: 2},
		{Word: "c", TF: 1, DF: 1},
	}
	if len(stats) != len(want) {
		t.Fatalf("stats = %v", stats)
	}
	for i := range want {
		if stats[i] != want[i] {
			t.Errorf("stats[%d] = %+v, want %+v", i, stats[i], want[i])
		}
	}
}

func TestCSRMatrix_ScaleColumns(t *testing.T) {
	m := newCSRMatrix(2, 3, [][]cell{
		{{col: 0, val: 1}, {col: 2, val: 2}},
		{{col: 1, val: 3}},
	})
	scaled := m.ScaleColumns([]float64{10, 100, 1000})

	if scaled.At(0, 2) != 2000 || scaled.At(1, 1) != 300 {
		t.Errorf("unexpected scaled values %v %v", scaled.DenseRow(0), scaled.DenseRow(1))
	}
	if m.At(0, 2) != 2 {
		t.Errorf("ScaleColumns modified its receiver")
	}
	if m.NNZ() != 3 {
		t.Errorf("NNZ = %d, want 3", m.NNZ())
	}
	norms := newCSRMatrix(2, 1, [][]cell{{{col: 0, val: 3}}}).RowNorms()
	if norms[0] != 3 || norms[1] != 1 {
		t.Errorf("RowNorms = %v, want [3 1]", norms)
	}
}
