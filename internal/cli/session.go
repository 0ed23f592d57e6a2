package cli

import (
	"fmt"

	"corpus/config"
	"corpus/internal/adapter/analyzer"
	"corpus/internal/adapter/cache"
	"corpus/internal/adapter/memstore"
	"corpus/internal/adapter/store"
	"corpus/internal/metrics"
	"corpus/internal/port"
	"corpus/internal/usecase"
)

// session is the corpus of the root directory, loaded from its configured
// store.
type session struct {
	cfg      *config.Config
	location string
	store    port.CorpusStore
	docs     *memstore.DocumentStore
}

func openSession() (*session, error) {
	cfg := GetConfig()
	root := GetRootDir()

	if cfg.Storage.Format != store.FormatPostgres && cfg.Storage.Path == "" {
		if err := config.EnsureDataDir(root); err != nil {
			return nil, fmt.Errorf("failed to create %s directory: %w", config.DataDir, err)
		}
	}

	location := cfg.StorageLocation(root)
	st, err := store.Open(cfg.Storage.Format, location)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus store: %w", err)
	}

	name := cfg.Corpus.Name
	if name == "" {
		name = root
	}
	docs := memstore.NewDocumentStore(name)
	n, err := usecase.LoadInto(st, docs)
	if err != nil {
		st.Close()
		return nil, err
	}
	component("session").WithField("documents", n).Debugf("corpus loaded from %s", location)

	return &session{cfg: cfg, location: location, store: st, docs: docs}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

func (s *session) save() error {
	if err := s.store.Save(s.docs.Documents()); err != nil {
		return fmt.Errorf("failed to save corpus: %w", err)
	}
	return nil
}

// engine builds the search engine over the session documents.
func (s *session) engine(m *metrics.Metrics) *usecase.SearchEngine {
	opts := []usecase.EngineOption{
		usecase.WithAutoRebuild(s.cfg.Index.AutoRebuild),
		usecase.WithEngineLogger(component("engine")),
	}
	if s.cfg.Retrieve.CacheSize > 0 {
		opts = append(opts, usecase.WithQueryCache(cache.NewQueryCache(s.cfg.Retrieve.CacheSize, s.cfg.Retrieve.CacheTTL)))
	}
	if m != nil {
		opts = append(opts, usecase.WithMetrics(m))
	}
	return usecase.NewSearchEngine(s.docs, analyzer.NewTokenizer(s.cfg.Index.Stopwords), opts...)
}

func (s *session) ingest() *usecase.IngestUseCase {
	return usecase.NewIngestUseCase(s.docs, s.store, component("ingest"))
}
