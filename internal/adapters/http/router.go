package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/orclabs/orchestrator/internal/core/domain"
	"github.com/orclabs/orchestrator/internal/core/ports"
	"github.com/orclabs/orchestrator/internal/observability/metrics"
)

const defaultMaxUploadBytes = 25 << 20

// Options tunes the HTTP surface. Zero values disable the corresponding
// middleware.
type Options struct {
	ServiceName    string
	MaxUploadBytes int64
	RateLimitRPS   float64
	RateLimitBurst int
	MaxInFlight    int
	QueueTimeout   time.Duration
	Metrics        *metrics.HTTPServerMetrics
}

type Router struct {
	orchestrator ports.DocumentOrchestrator
	composer     ports.EmailComposer
	ingestor     ports.DocumentIngestor
	decider      ports.DecisionService
	repo         ports.DocumentRepository
	audit        ports.AuditLog
	drafts       ports.DraftLog
	opts         Options
}

func NewRouter(
	orchestrator ports.DocumentOrchestrator,
	composer ports.EmailComposer,
	ingestor ports.DocumentIngestor,
	decider ports.DecisionService,
	repo ports.DocumentRepository,
	audit ports.AuditLog,
	drafts ports.DraftLog,
	opts Options,
) *Router {
	if opts.ServiceName == "" {
		opts.ServiceName = "api"
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}
	if opts.QueueTimeout <= 0 {
		opts.QueueTimeout = 5 * time.Second
	}
	return &Router{
		orchestrator: orchestrator,
		composer:     composer,
		ingestor:     ingestor,
		decider:      decider,
		repo:         repo,
		audit:        audit,
		drafts:       drafts,
		opts:         opts,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/orchestrate", rt.orchestrate)
	mux.HandleFunc("/v1/email/compose", rt.composeEmail)
	mux.HandleFunc("/v1/documents", rt.uploadDocument)
	mux.HandleFunc("/v1/documents/", rt.documentSubtree)
	mux.HandleFunc("/v1/audit", rt.auditLog)
	mux.HandleFunc("/v1/drafts", rt.listDrafts)
	mux.HandleFunc("/v1/drafts/export", rt.exportDrafts)
	mux.HandleFunc("/v1/drafts/", rt.draftSubtree)
	if rt.opts.Metrics != nil {
		mux.Handle("/metrics", rt.opts.Metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.opts.MaxInFlight, rt.opts.QueueTimeout)
	handler = rateLimitMiddleware(handler, rt.opts.RateLimitRPS, rt.opts.RateLimitBurst)
	if rt.opts.Metrics != nil {
		handler = rt.opts.Metrics.Middleware(rt.opts.ServiceName, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// orchestrate runs the synchronous three-stage pipeline over one upload.
func (rt *Router) orchestrate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	artifact, ok := rt.readArtifact(w, r)
	if !ok {
		return
	}

	start := time.Now()
	result, err := rt.orchestrator.Run(r.Context(), artifact)
	if err != nil {
		rt.recordPipelineRun("error", time.Since(start), false)
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	rt.recordPipelineRun("ok", time.Since(start), result.RequiresHumanReview())

	writeJSON(w, http.StatusOK, map[string]any{
		"gatekeeper":            result.Gatekeeper,
		"analyst":               result.Analyst,
		"guardian":              result.Guardian,
		"requires_human_review": result.RequiresHumanReview(),
	})
}

func (rt *Router) composeEmail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Type     string               `json:"type"`
		Metadata domain.EmailMetadata `json:"metadata"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	emailType, err := domain.ParseEmailType(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	draft, err := rt.composer.Compose(r.Context(), emailType, req.Metadata)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	if rt.opts.Metrics != nil {
		rt.opts.Metrics.RecordEmailDraft(rt.opts.ServiceName, string(emailType))
	}

	writeJSON(w, http.StatusCreated, map[string]any{"draft": draft})
}

func (rt *Router) readArtifact(w http.ResponseWriter, r *http.Request) (*domain.Artifact, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, rt.opts.MaxUploadBytes)

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "file exceeds upload limit")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "failed to read uploaded file")
		return nil, false
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "uploaded file is empty")
		return nil, false
	}

	return &domain.Artifact{
		Filename: fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Data:     data,
	}, true
}

func (rt *Router) recordPipelineRun(outcome string, duration time.Duration, reviewRequired bool) {
	if rt.opts.Metrics != nil {
		rt.opts.Metrics.RecordPipelineRun(rt.opts.ServiceName, outcome, duration, reviewRequired)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
