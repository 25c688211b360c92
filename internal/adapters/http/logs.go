package httpadapter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/orclabs/orchestrator/internal/core/domain"
	"github.com/orclabs/orchestrator/internal/infrastructure/export"
)

func (rt *Router) auditLog(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		format, err := export.ParseFormat(r.URL.Query().Get("format"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		entries, err := rt.audit.List(r.Context())
		if err != nil {
			writeError(w, mapErrorToHTTPStatus(err), err.Error())
			return
		}

		payload, err := export.Audit(entries, format)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeExport(w, format, "orc_audit_log", payload)

	case http.MethodDelete:
		if err := rt.audit.Clear(r.Context()); err != nil {
			writeError(w, mapErrorToHTTPStatus(err), err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (rt *Router) listDrafts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	status, ok := rt.draftStatusFilter(w, r)
	if !ok {
		return
	}

	drafts, err := rt.drafts.List(r.Context(), status)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	if drafts == nil {
		drafts = []domain.EmailDraft{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"drafts": drafts})
}

func (rt *Router) exportDrafts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	status, ok := rt.draftStatusFilter(w, r)
	if !ok {
		return
	}

	drafts, err := rt.drafts.List(r.Context(), status)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}

	payload, err := export.Drafts(drafts, format)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeExport(w, format, "orc_email_drafts", payload)
}

// draftSubtree dispatches PATCH and DELETE on /v1/drafts/{id}.
func (rt *Router) draftSubtree(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/drafts/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var req struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		status, err := domain.ParseDraftStatus(req.Status)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := rt.drafts.UpdateStatus(r.Context(), id, status); err != nil {
			writeError(w, mapErrorToHTTPStatus(err), err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case http.MethodDelete:
		if err := rt.drafts.Delete(r.Context(), id); err != nil {
			writeError(w, mapErrorToHTTPStatus(err), err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (rt *Router) draftStatusFilter(w http.ResponseWriter, r *http.Request) (domain.DraftStatus, bool) {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		return "", true
	}
	status, err := domain.ParseDraftStatus(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return status, true
}

func writeExport(w http.ResponseWriter, format export.Format, prefix string, payload []byte) {
	w.Header().Set("Content-Type", format.ContentType())
	if format != export.FormatJSON {
		filename := export.Filename(prefix, format, time.Now().UTC())
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}
