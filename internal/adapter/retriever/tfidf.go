package retriever

import (
	"math"
	"sort"

	"corpus/internal/domain"
	"corpus/internal/port"
)

// Vocabulary maps every observed term to its matrix column. Columns follow
// the alphabetical order of the terms.
type Vocabulary struct {
	terms   []string
	entries map[string]domain.VocabEntry
}

func (v *Vocabulary) Len() int {
	return len(v.terms)
}

// Terms returns the vocabulary in column order.
func (v *Vocabulary) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// Term returns the term stored in column col.
func (v *Vocabulary) Term(col int) string {
	return v.terms[col]
}

func (v *Vocabulary) Lookup(term string) (domain.VocabEntry, bool) {
	e, ok := v.entries[term]
	return e, ok
}

// TermStats lists every term with its corpus frequencies, most frequent
// first. Ties are ordered alphabetically.
func (v *Vocabulary) TermStats() []domain.TermStat {
	stats := make([]domain.TermStat, 0, len(v.terms))
	for _, term := range v.terms {
		e := v.entries[term]
		stats = append(stats, domain.TermStat{Word: term, TF: e.TF, DF: e.DF})
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].TF > stats[j].TF
	})
	return stats
}

// BuildTermIndex normalizes every document and returns the vocabulary and the
// raw term-frequency matrix. Row i of the matrix is docs[i]; documents
// without tokens keep an empty row. IDF values are left at zero.
func BuildTermIndex(docs []domain.Document, tokenizer port.Tokenizer) (*Vocabulary, *CSRMatrix) {
	localCounts := make([]map[string]int, len(docs))
	seen := make(map[string]struct{})

	for i, doc := range docs {
		counts := make(map[string]int)
		for _, token := range tokenizer.Tokenize(doc.Text) {
			counts[token]++
			seen[token] = struct{}{}
		}
		localCounts[i] = counts
	}

	terms := make([]string, 0, len(seen))
	for term := range seen {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	vocab := &Vocabulary{
		terms:   terms,
		entries: make(map[string]domain.VocabEntry, len(terms)),
	}
	for col, term := range terms {
		vocab.entries[term] = domain.VocabEntry{Column: col}
	}

	rowCells := make([][]cell, len(docs))
	for i, counts := range localCounts {
		cells := make([]cell, 0, len(counts))
		for term, n := range counts {
			entry := vocab.entries[term]
			entry.TF += n
			entry.DF++
			vocab.entries[term] = entry
			cells = append(cells, cell{col: entry.Column, val: float64(n)})
		}
		sort.Slice(cells, func(a, b int) bool { return cells[a].col < cells[b].col })
		rowCells[i] = cells
	}

	return vocab, newCSRMatrix(len(docs), len(terms), rowCells)
}

// ComputeIDF returns the smoothed inverse document frequency of every column:
// ln((N+1)/(df+1)) + 1.
func ComputeIDF(vocab *Vocabulary, n int) []float64 {
	idf := make([]float64, vocab.Len())
	for col, term := range vocab.terms {
		df := vocab.entries[term].DF
		idf[col] = math.Log(float64(n+1)/float64(df+1)) + 1
	}
	return idf
}

// ApplyWeights multiplies every TF column by the IDF of its term.
func ApplyWeights(tf *CSRMatrix, idf []float64) *CSRMatrix {
	return tf.ScaleColumns(idf)
}

// Index is an immutable snapshot of the term-document matrices of a corpus.
type Index struct {
	docIDs     []int
	vocab      *Vocabulary
	idf        []float64
	tf         *CSRMatrix
	tfidf      *CSRMatrix
	tfNorms    []float64
	tfidfNorms []float64
	tokenizer  port.Tokenizer
}

// NewIndex builds vocabulary, TF and TF-IDF matrices from docs.
func NewIndex(docs []domain.Document, tokenizer port.Tokenizer) *Index {
	ordered := docs
	if !sort.SliceIsSorted(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID }) {
		ordered = make([]domain.Document, len(docs))
		copy(ordered, docs)
		sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })
	}

	ix := &Index{
		docIDs:    make([]int, len(ordered)),
		tokenizer: tokenizer,
	}
	for i, doc := range ordered {
		ix.docIDs[i] = doc.ID
	}

	ix.vocab, ix.tf = BuildTermIndex(ordered, tokenizer)
	if len(ordered) == 0 {
		ix.idf = []float64{}
		ix.tfidf = ix.tf
	} else {
		ix.idf = ComputeIDF(ix.vocab, len(ordered))
		for col, term := range ix.vocab.terms {
			entry := ix.vocab.entries[term]
			entry.IDF = ix.idf[col]
			ix.vocab.entries[term] = entry
		}
		ix.tfidf = ApplyWeights(ix.tf, ix.idf)
	}
	ix.tfNorms = ix.tf.RowNorms()
	ix.tfidfNorms = ix.tfidf.RowNorms()
	return ix
}

// NumDocs returns N, the number of indexed documents.
func (ix *Index) NumDocs() int { return len(ix.docIDs) }

// DocIDs returns the identifier of every matrix row.
func (ix *Index) DocIDs() []int {
	out := make([]int, len(ix.docIDs))
	copy(out, ix.docIDs)
	return out
}

func (ix *Index) Vocabulary() *Vocabulary { return ix.vocab }
func (ix *Index) TF() *CSRMatrix          { return ix.tf }
func (ix *Index) TFIDF() *CSRMatrix       { return ix.tfidf }

// TermStats lists every vocabulary term with its corpus frequencies.
func (ix *Index) TermStats() []domain.TermStat {
	return ix.vocab.TermStats()
}
