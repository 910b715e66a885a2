package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"resume-reviewer/internal/domain"
	"resume-reviewer/internal/extract"
	"resume-reviewer/internal/metrics"
	"resume-reviewer/internal/types"

	"github.com/google/uuid"
)

// handleIdentity reports which backend answers review requests.
func (s *Server) handleIdentity(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"ok":       true,
		"provider": s.cfg.LLM.Provider,
		"model":    s.cfg.ActiveModel(),
	})
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleReady checks that the history store is reachable.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.storageCtx()
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		slog.Warn("storage unreachable", "error", err)
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]bool{"ok": false})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleReview runs a review round from a JSON body.
func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadSize)

	var req domain.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "malformed request body")
		return
	}

	s.runReview(w, r, req, "")
}

// handleReviewFile runs a review round from a multipart upload: the file is
// extracted to text first, then flows through the same path as handleReview.
func (s *Server) handleReviewFile(w http.ResponseWriter, r *http.Request) {
	filename, resumeText, ok := s.extractUpload(w, r)
	if !ok {
		return
	}

	req := domain.ReviewRequest{
		ResumeText:     resumeText,
		JobDescription: r.FormValue("job_description"),
		TargetRole:     r.FormValue("target_role"),
	}
	s.runReview(w, r, req, filename)
}

// runReview is the shared review path: concurrency gate, orchestrator call,
// history record, response. A degraded result still responds 200; its notes
// carry the explanation.
func (s *Server) runReview(w http.ResponseWriter, r *http.Request, req domain.ReviewRequest, displayName string) {
	release, ok := s.acquire(w, r)
	if !ok {
		return
	}
	defer release()

	result, err := s.reviewer.Review(r.Context(), req)
	if err != nil && !isDegraded(err) {
		slog.Error("review failed", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "review failed")
		return
	}

	s.recordHistory(req, displayName, result)
	s.jsonResponse(w, http.StatusOK, result)
}

// handleRefine runs a refine round. Missing feedback is rejected before any
// outbound call and leaves no history entry.
func (s *Server) handleRefine(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadSize)

	var req domain.RefineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "malformed request body")
		return
	}

	release, ok := s.acquire(w, r)
	if !ok {
		return
	}
	defer release()

	result, err := s.reviewer.Refine(r.Context(), req)
	if err != nil {
		var valErr *types.ValidationError
		if errors.As(err, &valErr) {
			s.errorResponse(w, http.StatusBadRequest, valErr.Error())
			return
		}
		if !isDegraded(err) {
			slog.Error("refine failed", "error", err)
			s.errorResponse(w, http.StatusInternalServerError, "refine failed")
			return
		}
	}

	base := domain.ReviewRequest{
		ResumeText:     req.ResumeText,
		JobDescription: req.JobDescription,
		TargetRole:     req.TargetRole,
	}
	s.recordHistory(base, "", result)
	s.jsonResponse(w, http.StatusOK, result)
}

// handleParseResume extracts plain text from an uploaded file.
func (s *Server) handleParseResume(w http.ResponseWriter, r *http.Request) {
	_, text, ok := s.extractUpload(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"text": text})
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.storageCtx()
	defer cancel()

	entries, err := s.store.List(ctx)
	if err != nil {
		slog.Error("list history failed", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	s.jsonResponse(w, http.StatusOK, entries)
}

func (s *Server) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.storageCtx()
	defer cancel()

	if err := s.store.Clear(ctx); err != nil {
		slog.Error("clear history failed", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.storageCtx()
	defer cancel()

	doc, err := s.store.Settings(ctx)
	if err != nil {
		slog.Error("read settings failed", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "settings unavailable")
		return
	}
	s.writeRawJSON(w, doc)
}

func (s *Server) handleSettingsPut(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadSize)
	patch, err := io.ReadAll(r.Body)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "malformed request body")
		return
	}

	ctx, cancel := s.storageCtx()
	defer cancel()

	doc, err := s.store.UpdateSettings(ctx, string(patch))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "settings patch rejected")
		return
	}
	s.writeRawJSON(w, doc)
}

// acquire takes a slot on the review concurrency gate, answering 429 when the
// service is at capacity.
func (s *Server) acquire(w http.ResponseWriter, r *http.Request) (func(), bool) {
	select {
	case s.sem <- struct{}{}:
		return func() { <-s.sem }, true
	default:
		slog.Warn("concurrency limit, request dropped", "path", r.URL.Path)
		metrics.RequestsDropped.WithLabelValues(r.URL.Path).Inc()
		s.errorResponse(w, http.StatusTooManyRequests, "server busy, please retry later")
		return nil, false
	}
}

// extractUpload reads the multipart file field and turns it into plain text.
// On failure it has already written the response and returns ok=false.
func (s *Server) extractUpload(w http.ResponseWriter, r *http.Request) (filename, text string, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadSize)
	if err := r.ParseMultipartForm(s.cfg.Server.MaxUploadSize); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "malformed multipart request")
		return "", "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "missing file field")
		return "", "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "unreadable upload")
		return "", "", false
	}

	text, err = extract.Extract(header.Filename, data)
	if err != nil {
		var extErr *types.ExtractionError
		if errors.As(err, &extErr) && extErr.Reason == extract.UnsupportedTypeDetail {
			s.errorResponse(w, http.StatusUnsupportedMediaType, extract.UnsupportedTypeDetail)
			return "", "", false
		}
		s.errorResponse(w, http.StatusBadRequest, "could not extract text from file")
		return "", "", false
	}

	return header.Filename, text, true
}

// recordHistory persists a completed session snapshot. Write failures are
// logged, never surfaced: the user already has their result.
func (s *Server) recordHistory(req domain.ReviewRequest, displayName string, result domain.ReviewResult) {
	ctx, cancel := s.storageCtx()
	defer cancel()

	entry := domain.HistoryEntry{
		ID:                 uuid.NewString(),
		CreatedAt:          time.Now().UTC(),
		TargetRole:         req.TargetRole,
		JobDescription:     req.JobDescription,
		ResumeDisplayName:  displayName,
		ResumeTextSnapshot: req.ResumeText,
		EnvironmentLabel:   s.cfg.EnvironmentLabel(),
		Result:             result,
	}
	if err := s.store.Record(ctx, entry); err != nil {
		slog.Warn("record history failed", "error", err)
	}
}

// writeRawJSON writes an already-serialized JSON document.
func (s *Server) writeRawJSON(w http.ResponseWriter, doc string) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := io.WriteString(w, doc); err != nil {
		slog.Error("write response failed", "error", err)
	}
}

// isDegraded reports whether the error accompanies a usable degraded result.
func isDegraded(err error) bool {
	var normErr *types.NormalizationError
	return errors.As(err, &normErr)
}
