package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"corpus/config"
	"corpus/internal/domain"
	"corpus/internal/metrics"
	"corpus/internal/usecase"
)

type Server struct {
	Engine   *usecase.SearchEngine
	Retrieve *usecase.RetrieveUseCase
	Explorer *usecase.Explorer
	Metrics  *metrics.Metrics
	Logger   *logrus.Entry
	Router   *http.ServeMux

	defaults config.Config
}

func NewServer(engine *usecase.SearchEngine, m *metrics.Metrics, cfg config.Config, logger *logrus.Entry) *Server {
	s := &Server{
		Engine:   engine,
		Retrieve: usecase.NewRetrieveUseCase(engine, engine.Documents()),
		Explorer: usecase.NewExplorer(engine.Documents()),
		Metrics:  m,
		Logger:   logger,
		Router:   http.NewServeMux(),
		defaults: cfg,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.handle("GET /api/v1/search", "/api/v1/search", s.handleSearch)
	s.handle("GET /api/v1/concordance", "/api/v1/concordance", s.handleConcordance)
	s.handle("GET /api/v1/stats", "/api/v1/stats", s.handleStats)
	s.handle("GET /api/v1/compare", "/api/v1/compare", s.handleCompare)
	s.handle("GET /api/v1/trend", "/api/v1/trend", s.handleTrend)
	s.handle("GET /api/v1/documents/{id}", "/api/v1/documents", s.handleDocument)
	s.handle("GET /api/v1/authors", "/api/v1/authors", s.handleAuthors)
	s.handle("GET /healthz", "/healthz", s.handleHealth)
	s.Router.Handle("GET /metrics", s.Metrics.Handler())
}

func (s *Server) handle(pattern, label string, fn http.HandlerFunc) {
	s.Router.Handle(pattern, s.Metrics.Middleware(label, fn))
}

// Start serves the API on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Infof("Starting API Server on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Logger.Info("Shutting down API Server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Responses
type ErrorResponse struct {
	Error string `json:"error"`
}

type SearchResponse struct {
	Query   string                 `json:"query"`
	TFIDF   bool                   `json:"tfidf"`
	Results []usecase.SearchResult `json:"results"`
}

type ConcordanceResponse struct {
	Pattern string                   `json:"pattern"`
	Lines   []domain.ConcordanceLine `json:"lines"`
}

type CompareResponse struct {
	KindA domain.Kind             `json:"kind_a"`
	KindB domain.Kind             `json:"kind_b"`
	Rows  []domain.KindComparison `json:"rows"`
}

type TrendResponse struct {
	Term   string              `json:"term"`
	Period usecase.Period      `json:"period"`
	Points []domain.TrendPoint `json:"points"`
}

type DocumentView struct {
	ID        int         `json:"id"`
	Kind      domain.Kind `json:"type"`
	Title     string      `json:"title"`
	Author    string      `json:"author"`
	Date      time.Time   `json:"date"`
	URL       string      `json:"url"`
	Text      string      `json:"text"`
	Comments  *int        `json:"comments,omitempty"`
	CoAuthors []string    `json:"coauthors,omitempty"`
}

type AuthorView struct {
	Name          string  `json:"name"`
	Documents     int     `json:"documents"`
	AverageLength float64 `json:"average_length"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Documents int       `json:"documents"`
	Stale     bool      `json:"stale"`
	BuiltAt   time.Time `json:"built_at"`
}

// Handlers

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")
	if query == "" {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Query 'q' is required"})
		return
	}
	limit, err := intParam(q.Get("limit"), s.defaults.Retrieve.TopN)
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Parameter 'limit' must be an integer"})
		return
	}
	useTFIDF, err := boolParam(q.Get("tfidf"), s.defaults.Retrieve.UseTFIDF)
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Parameter 'tfidf' must be a boolean"})
		return
	}

	results, err := s.Retrieve.Retrieve(query, limit, useTFIDF)
	if err != nil {
		jsonResponse(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	jsonResponse(w, http.StatusOK, SearchResponse{Query: query, TFIDF: useTFIDF, Results: results})
}

func (s *Server) handleConcordance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pattern := q.Get("pattern")
	if pattern == "" {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Parameter 'pattern' is required"})
		return
	}
	width, err := intParam(q.Get("context"), s.defaults.Explore.ConcordanceContext)
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Parameter 'context' must be an integer"})
		return
	}

	lines, err := s.Explorer.Concordance(pattern, width)
	if errors.Is(err, usecase.ErrInvalidPattern) {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		jsonResponse(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	jsonResponse(w, http.StatusOK, ConcordanceResponse{Pattern: pattern, Lines: lines})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	top, err := intParam(r.URL.Query().Get("top"), s.defaults.Explore.StatsTop)
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Parameter 'top' must be an integer"})
		return
	}
	jsonResponse(w, http.StatusOK, s.Explorer.Stats(top))
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	a, errA := domain.ParseKind(q.Get("a"))
	b, errB := domain.ParseKind(q.Get("b"))
	if err := errors.Join(errA, errB); err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	top, err := intParam(q.Get("top"), s.defaults.Explore.StatsTop)
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Parameter 'top' must be an integer"})
		return
	}
	jsonResponse(w, http.StatusOK, CompareResponse{KindA: a, KindB: b, Rows: s.Explorer.CompareKinds(a, b, top)})
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	term := q.Get("term")
	if term == "" {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Parameter 'term' is required"})
		return
	}
	period, err := usecase.ParsePeriod(q.Get("period"))
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	jsonResponse(w, http.StatusOK, TrendResponse{Term: term, Period: period, Points: s.Explorer.TemporalTrend(term, period)})
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Document id must be an integer"})
		return
	}
	doc, err := s.Engine.Documents().Get(id)
	if errors.Is(err, domain.ErrDocumentNotFound) {
		jsonResponse(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		jsonResponse(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	jsonResponse(w, http.StatusOK, documentView(doc))
}

func (s *Server) handleAuthors(w http.ResponseWriter, r *http.Request) {
	authors := s.Engine.Documents().Authors()
	views := make([]AuthorView, len(authors))
	for i, a := range authors {
		views[i] = AuthorView{Name: a.Name, Documents: a.DocCount(), AverageLength: a.AverageLength()}
	}
	jsonResponse(w, http.StatusOK, views)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Documents: s.Engine.Documents().Len(),
		Stale:     s.Engine.Stale(),
		BuiltAt:   s.Engine.BuiltAt(),
	})
}

func documentView(doc domain.Document) DocumentView {
	view := DocumentView{
		ID:     doc.ID,
		Kind:   doc.Kind(),
		Title:  doc.Title,
		Author: doc.Author,
		Date:   doc.Date,
		URL:    doc.URL,
		Text:   doc.Text,
	}
	if n, ok := doc.CommentCount(); ok {
		view.Comments = &n
	}
	if names, ok := doc.CoAuthors(); ok {
		view.CoAuthors = names
	}
	return view
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func boolParam(raw string, fallback bool) (bool, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.ParseBool(raw)
}

func jsonResponse(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
