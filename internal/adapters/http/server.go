// Package http exposes the studio core as a JSON API over HTTP, plus the
// SSE event stream and the archive download endpoint.
package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/ergoweb/internal/archive"
	"github.com/aretw0/ergoweb/internal/runtime"
	"github.com/aretw0/ergoweb/pkg/domain"
)

//go:embed openapi.yaml
var openAPISpec []byte

// Workspace defines the pipeline surface the server consumes.
type Workspace interface {
	Config() domain.Configuration
	SetConfig(ctx context.Context, raw string) error
	Generate(ctx context.Context) (uint64, error)
	CurrentArtifacts() (*domain.ArtifactSet, bool)
	Subscribe(ctx context.Context) <-chan domain.Event
}

// Server wires the workspace, panel machine, and packager into handlers.
type Server struct {
	ws         Workspace
	panel      *runtime.PanelController
	classifier *runtime.Classifier
	packager   *archive.Packager
	hooks      domain.LifecycleHooks
	onPanel    func(domain.PanelMode)
	metrics    http.Handler
	logger     *slog.Logger
}

// Option configures the server.
type Option func(*Server)

// WithPanel injects the panel controller and its classifier.
func WithPanel(panel *runtime.PanelController, classifier *runtime.Classifier) Option {
	return func(s *Server) {
		s.panel = panel
		s.classifier = classifier
	}
}

// WithPackager injects the archive packager.
func WithPackager(p *archive.Packager) Option {
	return func(s *Server) {
		s.packager = p
	}
}

// WithLifecycleHooks forwards download events to observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Server) {
		s.hooks = hooks
	}
}

// WithPanelSelectionHook observes panel activations (metrics).
func WithPanelSelectionHook(fn func(domain.PanelMode)) Option {
	return func(s *Server) {
		s.onPanel = fn
	}
}

// WithMetricsHandler mounts a handler (promhttp) on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHandler creates the HTTP handler for the studio.
func NewHandler(ws Workspace, opts ...Option) http.Handler {
	s := &Server{
		ws:     ws,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.panel == nil {
		s.panel = runtime.NewPanelController()
	}
	if s.classifier == nil {
		s.classifier = runtime.NewClassifier(runtime.WithClassChangeHook(s.panel.SetViewport))
	}
	if s.packager == nil {
		s.packager = archive.New()
	}

	r := chi.NewRouter()

	r.Get("/healthz", s.health)
	r.Get("/openapi.yaml", s.openAPI)
	r.Get("/swagger", s.swagger)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/config", s.getConfig)
		r.Put("/config", s.putConfig)
		r.Post("/generate", s.generate)
		r.Get("/artifacts", s.listArtifacts)
		r.Get("/artifacts/{name}", s.getArtifact)
		r.Get("/download", s.download)
		r.Get("/panel", s.getPanel)
		r.Post("/panel", s.selectPanel)
		r.Post("/viewport", s.measureViewport)
		r.Get("/events", s.events)
	})

	return r
}

// -- Handlers --

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) openAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/yaml")
	w.Write(openAPISpec)
}

func (s *Server) swagger(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(swaggerHTML))
}

func (s *Server) getConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ws.Config())
}

type configRequest struct {
	Raw string `json:"raw"`
}

func (s *Server) putConfig(w http.ResponseWriter, r *http.Request) {
	var body configRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	if err := s.ws.SetConfig(r.Context(), body.Raw); err != nil {
		var parseErr *domain.ConfigParseError
		if errors.As(err, &parseErr) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		s.logger.Error("failed to update configuration", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	seq, err := s.ws.Generate(r.Context())
	if err != nil {
		if errors.Is(err, runtime.ErrEmptyConfiguration) {
			writeError(w, http.StatusConflict, err)
			return
		}
		s.logger.Error("failed to submit generation", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]uint64{"seq": seq})
}

type artifactInfo struct {
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	Size     int    `json:"size"`
}

type artifactsResponse struct {
	Seq         uint64         `json:"seq"`
	GeneratedAt string         `json:"generated_at"`
	Artifacts   []artifactInfo `json:"artifacts"`
}

func (s *Server) listArtifacts(w http.ResponseWriter, r *http.Request) {
	set, ok := s.ws.CurrentArtifacts()
	if !ok {
		writeError(w, http.StatusNotFound, domain.ErrNoArtifacts)
		return
	}

	resp := artifactsResponse{
		Seq:         set.Seq,
		GeneratedAt: set.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"),
		Artifacts:   make([]artifactInfo, len(set.Artifacts)),
	}
	for i, a := range set.Artifacts {
		resp.Artifacts[i] = artifactInfo{Name: a.Name, MIMEType: a.MIMEType, Size: len(a.Content)}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getArtifact(w http.ResponseWriter, r *http.Request) {
	set, ok := s.ws.CurrentArtifacts()
	if !ok {
		writeError(w, http.StatusNotFound, domain.ErrNoArtifacts)
		return
	}

	a, ok := set.Find(chi.URLParam(r, "name"))
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("artifact not found"))
		return
	}

	w.Header().Set("Content-Type", a.MIMEType)
	w.WriteHeader(http.StatusOK)
	w.Write(a.Content)
}

func (s *Server) download(w http.ResponseWriter, r *http.Request) {
	set, ok := s.ws.CurrentArtifacts()
	if !ok {
		// The download control is unreachable until a generation has
		// completed; still, never hand out an empty archive.
		writeError(w, http.StatusConflict, &domain.PackagingError{Stage: "gather", Err: domain.ErrNoArtifacts})
		return
	}

	bundle, err := s.packager.Package(set)
	if err != nil {
		s.logger.Error("packaging failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if s.hooks.OnDownload != nil {
		s.hooks.OnDownload(r.Context(), &bundle)
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", bundle.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(bundle.Content)
}

type panelResponse struct {
	Mode           domain.PanelMode     `json:"mode"`
	Viewport       domain.ViewportClass `json:"viewport"`
	ConfigVisible  bool                 `json:"config_visible"`
	OutputsVisible bool                 `json:"outputs_visible"`
}

func (s *Server) panelState() panelResponse {
	config, outputs := s.panel.Visible()
	return panelResponse{
		Mode:           s.panel.Mode(),
		Viewport:       s.panel.Viewport(),
		ConfigVisible:  config,
		OutputsVisible: outputs,
	}
}

func (s *Server) getPanel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.panelState())
}

type panelRequest struct {
	Mode string `json:"mode"`
}

func (s *Server) selectPanel(w http.ResponseWriter, r *http.Request) {
	var body panelRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	mode, err := domain.ParsePanelMode(body.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.panel.Select(mode)
	if s.onPanel != nil {
		s.onPanel(mode)
	}
	writeJSON(w, http.StatusOK, s.panelState())
}

type viewportRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s *Server) measureViewport(w http.ResponseWriter, r *http.Request) {
	var body viewportRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	s.classifier.Measure(body.Width, body.Height)
	writeJSON(w, http.StatusOK, s.panelState())
}

// events streams pipeline events over SSE.
func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("streaming not supported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events := s.ws.Subscribe(r.Context())

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				s.logger.Error("failed to encode event", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
			flusher.Flush()
		}
	}
}

// -- Helpers --

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>ErgoWeb API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`
