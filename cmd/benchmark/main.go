package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"corpus/config"
	"corpus/internal/adapter/analyzer"
	"corpus/internal/adapter/memstore"
	"corpus/internal/adapter/retriever"
	"corpus/internal/adapter/store"
	"corpus/internal/domain"
	"corpus/internal/usecase"
)

func main() {
	dir := flag.String("dir", ".", "Corpus root directory")
	judgmentsPath := flag.String("judgments", "", "YAML file of queries with relevant document ids")
	query := flag.String("q", "", "Single query to compare when no judgments are given")
	topN := flag.Int("k", 10, "Number of results")
	runs := flag.Int("runs", 5, "Index builds to time")
	flag.Parse()

	if *judgmentsPath == "" && *query == "" {
		fmt.Println("Usage: go run cmd/benchmark/main.go -dir ./corpus [-judgments queries.yaml | -q \"query\"]")
		fmt.Println("\nMeasures:")
		fmt.Println("  1. Index build time (vocabulary, TF and TF-IDF matrices)")
		fmt.Println("  2. Query latency with and without TF-IDF weighting")
		fmt.Println("  3. Precision, recall, MRR and NDCG against relevance judgments")
		os.Exit(1)
	}

	cfg, err := config.LoadFromDir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	st, err := store.Open(cfg.Storage.Format, cfg.StorageLocation(*dir))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening corpus: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	docs := memstore.NewDocumentStore(*dir)
	if _, err := usecase.LoadInto(st, docs); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading corpus: %v\n", err)
		os.Exit(1)
	}
	if docs.Len() == 0 {
		fmt.Fprintln(os.Stderr, "The corpus is empty. Run 'corpus ingest' or 'corpus import' first.")
		os.Exit(1)
	}

	tokenizer := analyzer.NewTokenizer(cfg.Index.Stopwords)

	fmt.Println("TF-IDF SEARCH BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	ix := timeBuilds(docs.Documents(), tokenizer, *runs)
	fmt.Println()

	var judgments []retriever.Judgment
	if *judgmentsPath != "" {
		judgments, err = loadJudgments(*judgmentsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading judgments: %v\n", err)
			os.Exit(1)
		}
	} else {
		judgments = []retriever.Judgment{{Query: *query}}
	}

	tf := newScores()
	tfidf := newScores()
	for _, j := range judgments {
		fmt.Printf("Query: \"%s\"\n", j.Query)
		fmt.Println(strings.Repeat("-", 70))

		plain := rankTimed(ix, j.Query, *topN, false)
		weighted := rankTimed(ix, j.Query, *topN, true)
		printSideBySide(docs, plain.results, weighted.results)
		fmt.Printf("  latency: tf %s, tf-idf %s\n", plain.elapsed, weighted.elapsed)

		if len(j.Relevant) > 0 {
			tf.add(plain.results, j)
			tfidf.add(weighted.results, j)
			fmt.Printf("  P@%d: tf %.3f, tf-idf %.3f\n", *topN,
				retriever.PrecisionAtK(plain.results, j), retriever.PrecisionAtK(weighted.results, j))
		}
		fmt.Println()
	}

	if tf.n == 0 {
		return
	}
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("QUALITY METRICS (%d judged queries, k=%d):\n", tf.n, *topN)
	fmt.Printf("  %-10s %10s %10s %10s %10s\n", "weighting", "P@k", "R@k", "MRR", "NDCG")
	tf.print("tf")
	tfidf.print("tf-idf")
}

func timeBuilds(docs []domain.Document, tokenizer *analyzer.Tokenizer, runs int) *retriever.Index {
	if runs < 1 {
		runs = 1
	}
	var ix *retriever.Index
	var total, best time.Duration
	for i := 0; i < runs; i++ {
		start := time.Now()
		ix = retriever.NewIndex(docs, tokenizer)
		elapsed := time.Since(start)
		total += elapsed
		if i == 0 || elapsed < best {
			best = elapsed
		}
	}
	fmt.Printf("Documents:        %d\n", ix.NumDocs())
	fmt.Printf("Vocabulary:       %d terms\n", ix.Vocabulary().Len())
	fmt.Printf("Non-zero cells:   %d\n", ix.TF().NNZ())
	fmt.Printf("Build time:       best %s, mean %s over %d runs\n", best, total/time.Duration(runs), runs)
	return ix
}

type timedRanking struct {
	results []domain.ScoredDocument
	elapsed time.Duration
}

func rankTimed(ix *retriever.Index, query string, topN int, useWeighting bool) timedRanking {
	start := time.Now()
	results := ix.Rank(query, topN, useWeighting)
	return timedRanking{results: results, elapsed: time.Since(start)}
}

func printSideBySide(docs *memstore.DocumentStore, plain, weighted []domain.ScoredDocument) {
	fmt.Printf("  %-4s %-32s %-32s\n", "#", "tf", "tf-idf")
	for i := 0; i < len(plain) || i < len(weighted); i++ {
		fmt.Printf("  %-4d %-32s %-32s\n", i+1, describe(docs, plain, i), describe(docs, weighted, i))
	}
}

func describe(docs *memstore.DocumentStore, results []domain.ScoredDocument, i int) string {
	if i >= len(results) {
		return ""
	}
	r := results[i]
	title := ""
	if doc, err := docs.Get(r.DocID); err == nil {
		title = doc.Title
	}
	if runes := []rune(title); len(runes) > 18 {
		title = string(runes[:18]) + "..."
	}
	return fmt.Sprintf("%.3f #%d %s", r.Score, r.DocID, title)
}

type scores struct {
	n                         int
	precision, recall, rr, ng float64
}

func newScores() *scores {
	return &scores{}
}

func (s *scores) add(results []domain.ScoredDocument, j retriever.Judgment) {
	s.n++
	s.precision += retriever.PrecisionAtK(results, j)
	s.recall += retriever.RecallAtK(results, j)
	s.rr += retriever.ReciprocalRank(results, j)
	s.ng += retriever.NDCG(results, j)
}

func (s *scores) print(label string) {
	n := float64(s.n)
	fmt.Printf("  %-10s %10.3f %10.3f %10.3f %10.3f\n", label, s.precision/n, s.recall/n, s.rr/n, s.ng/n)
}

func loadJudgments(path string) ([]retriever.Judgment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var judgments []retriever.Judgment
	if err := yaml.Unmarshal(data, &judgments); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return judgments, nil
}
