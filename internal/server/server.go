package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/petrotools/deckqc/internal/config"
	"github.com/petrotools/deckqc/internal/deck"
	"github.com/petrotools/deckqc/internal/model"
	"github.com/petrotools/deckqc/internal/pipeline"
	"github.com/petrotools/deckqc/internal/report"
)

//go:embed static
var embeddedStatic embed.FS

// Asker answers free-form deck questions. *advisor.Advisor satisfies this.
type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

// Server serves the QC API and the embedded upload page.
type Server struct {
	cfg      *config.Config
	planner  pipeline.Planner
	asker    Asker
	logger   *slog.Logger
	staticFS http.Handler

	// md renders Markdown reports to HTML for ?format=html responses.
	md goldmark.Markdown
}

// New creates a Server.
// The planner and asker are optional; without them the API still runs
// extraction and QC but returns no plan and rejects /api/ask.
func New(cfg *config.Config, planner pipeline.Planner, asker Asker, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	sub, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:      cfg,
		planner:  planner,
		asker:    asker,
		logger:   logger,
		staticFS: http.FileServer(http.FS(sub)),
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		),
	}, nil
}

// Routes returns the HTTP handler with all endpoints registered.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/qc", s.handleQC)
	mux.HandleFunc("/api/ask", s.handleAsk)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/", s.staticFS)
	return s.logMiddleware(mux)
}

// ListenAndServe starts the server on the configured address and shuts
// down cleanly when the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ServerAddr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info("server listening", "addr", s.cfg.ServerAddr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// handleQC accepts a multipart deck upload and returns the QC report.
// With ?format=html the Markdown rendering is returned instead of JSON.
func (s *Server) handleQC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadSize)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadSize); err != nil {
		http.Error(w, "upload too large or malformed: "+err.Error(), http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("deck")
	if err != nil {
		http.Error(w, "missing deck file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read upload: "+err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Timeout)
	defer cancel()

	qcReport := model.NewQCReport(header.Filename)
	qcReport.Content = deck.Sanitize(raw)

	p := pipeline.New(pipeline.WithLogger(s.logger))
	p.AddSteps(
		pipeline.NewExtractStep(
			pipeline.WithKeywords(s.cfg.EffectiveKeywords()),
			pipeline.WithExtractLogger(s.logger),
		),
		pipeline.NewQCStep(s.logger),
		pipeline.NewPlanStep(s.planner, s.logger),
	)

	if err := p.Execute(ctx, qcReport); err != nil {
		http.Error(w, "check failed: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	if r.URL.Query().Get("format") == "html" {
		s.writeHTMLReport(w, qcReport)
		return
	}

	writeJSON(w, qcReport)
}

// writeHTMLReport renders the Markdown report to HTML.
func (s *Server) writeHTMLReport(w http.ResponseWriter, qcReport *model.QCReport) {
	var mdBuf bytes.Buffer
	if _, err := report.NewMarkdownWriter(&mdBuf).Write(qcReport); err != nil {
		http.Error(w, "failed to render report: "+err.Error(), http.StatusInternalServerError)
		return
	}

	var htmlBuf bytes.Buffer
	if err := s.md.Convert(mdBuf.Bytes(), &htmlBuf); err != nil {
		http.Error(w, "failed to render report: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(htmlBuf.Bytes()) //nolint:errcheck // response write failures are client-side
}

type askReq struct {
	Question string `json:"question"`
}

type askResp struct {
	Answer string `json:"answer"`
}

// handleAsk forwards a question to the advisor.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.asker == nil {
		http.Error(w, "advisor not configured", http.StatusServiceUnavailable)
		return
	}

	var req askReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Question == "" {
		http.Error(w, "question is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Timeout)
	defer cancel()

	answer, err := s.asker.Ask(ctx, req.Question)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, askResp{Answer: answer})
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// writeJSON encodes v as a JSON response.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // response write failures are client-side
}

// logMiddleware logs one line per request.
func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"elapsed", time.Since(start),
		)
	})
}
