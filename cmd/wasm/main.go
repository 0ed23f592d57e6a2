//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"
	"time"

	"corpus/internal/adapter/analyzer"
	"corpus/internal/adapter/memstore"
	"corpus/internal/adapter/source"
	"corpus/internal/logging"
	"corpus/internal/usecase"
)

var (
	docs      *memstore.DocumentStore
	tokenizer *analyzer.Tokenizer
	engine    *usecase.SearchEngine
)

func init() {
	tokenizer = analyzer.NewTokenizer(false)
	reset()
}

func reset() {
	docs = memstore.NewDocumentStore("browser")
	engine = usecase.NewSearchEngine(docs, tokenizer,
		usecase.WithAutoRebuild(true), usecase.WithEngineLogger(logging.Discard()))
}

func main() {
	c := make(chan struct{})

	js.Global().Set("corpusAdd", js.FuncOf(addDocument))
	js.Global().Set("corpusQuery", js.FuncOf(queryCorpus))
	js.Global().Set("corpusConcordance", js.FuncOf(concordance))
	js.Global().Set("corpusStats", js.FuncOf(getStats))
	js.Global().Set("corpusClear", js.FuncOf(clearCorpus))

	<-c
}

// addDocument(title, text, [author], [source], [date])
func addDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return makeError("usage: corpusAdd(title, text, [author], [source], [date])")
	}

	spec := source.Spec{
		Title:  args[0].String(),
		Text:   args[1].String(),
		Author: "unknown",
		Date:   time.Now().UTC(),
	}
	if len(args) > 2 && args[2].String() != "" {
		spec.Author = args[2].String()
	}
	if len(args) > 3 {
		spec.Source = args[3].String()
	}
	if len(args) > 4 {
		spec.Date = source.ParseTimestamp(args[4].String(), spec.Date)
	}

	id := docs.Add(source.New(spec))
	return makeResult(map[string]interface{}{
		"success": true,
		"id":      id,
		"total":   docs.Len(),
	})
}

// queryCorpus(query, [topN], [useTFIDF])
func queryCorpus(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: corpusQuery(query, [topN], [useTFIDF])")
	}

	query := args[0].String()
	topN := 5
	if len(args) > 1 {
		topN = args[1].Int()
	}
	useTFIDF := true
	if len(args) > 2 {
		useTFIDF = args[2].Bool()
	}

	results, err := usecase.NewRetrieveUseCase(engine, docs).Retrieve(query, topN, useTFIDF)
	if err != nil {
		return makeError("search failed: " + err.Error())
	}
	return makeResult(map[string]interface{}{
		"results": results,
		"query":   query,
	})
}

// concordance(pattern, [context])
func concordance(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: corpusConcordance(pattern, [context])")
	}
	width := 30
	if len(args) > 1 {
		width = args[1].Int()
	}

	lines, err := usecase.NewExplorer(docs).Concordance(args[0].String(), width)
	if err != nil {
		return makeError(err.Error())
	}
	return makeResult(map[string]interface{}{
		"lines": lines,
	})
}

func getStats(this js.Value, args []js.Value) interface{} {
	top := 20
	if len(args) > 0 {
		top = args[0].Int()
	}
	stats := usecase.NewExplorer(docs).Stats(top)
	return makeResult(map[string]interface{}{
		"totalDocs":      stats.Documents,
		"vocabularySize": stats.VocabularySize,
		"terms":          stats.Terms,
		"authors":        docs.NumAuthors(),
	})
}

func clearCorpus(this js.Value, args []js.Value) interface{} {
	reset()
	return makeResult(map[string]interface{}{
		"success": true,
	})
}

func makeError(msg string) interface{} {
	result, _ := json.Marshal(map[string]interface{}{
		"error": msg,
	})
	return string(result)
}

func makeResult(data map[string]interface{}) interface{} {
	result, _ := json.Marshal(data)
	return string(result)
}
