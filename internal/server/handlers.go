package server

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jonathan/pagegate/internal/db"
	"github.com/jonathan/pagegate/internal/pipeline"
	"github.com/jonathan/pagegate/internal/types"
)

// handleValidate runs the full pipeline with the caller's mode and skip flag
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	req, err := decodeValidationRequest(w, r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	verdict := s.pipeline.Validate(r.Context(), req)
	s.respondVerdict(r.Context(), w, verdict)
}

// handleValidateQuick runs the static stages only
func (s *Server) handleValidateQuick(w http.ResponseWriter, r *http.Request) {
	req, err := decodeValidationRequest(w, r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	verdict := s.pipeline.ValidateQuick(r.Context(), req.Bundle(), req.Mode)
	s.respondVerdict(r.Context(), w, verdict)
}

// handleValidateDeploy runs the strict pre-deployment gate and returns its advice
func (s *Server) handleValidateDeploy(w http.ResponseWriter, r *http.Request) {
	req, err := decodeValidationRequest(w, r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	verdict := s.deploy.ValidateForDeployment(r.Context(), req.Bundle())
	s.jsonResponse(w, http.StatusOK, DeployResponse{
		Verdict:    verdict,
		Deployment: pipeline.DeploymentRecommendation(verdict),
		ID:         s.saveVerdict(r.Context(), db.SourceHTTP, verdict),
	})
}

// handleValidateStream runs the pipeline and streams progress as Server-Sent Events
func (s *Server) handleValidateStream(w http.ResponseWriter, r *http.Request) {
	req, err := decodeValidationRequest(w, r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	// Setup SSE writer
	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	verdict := s.pipeline.ValidateWithProgress(r.Context(), req, func(event pipeline.ProgressEvent) {
		if err := sse.WriteProgress(event); err != nil {
			log.Printf("Error writing SSE event: %v", err)
		}
	})

	id := s.saveVerdict(r.Context(), db.SourceHTTP, verdict)
	if err := sse.WriteVerdict(verdict); err != nil {
		log.Printf("Error writing SSE verdict: %v", err)
		sse.WriteError("failed to encode verdict")
		return
	}
	sse.WriteComplete(id, verdict.Valid)
}

// handleValidateBatch validates several bundles concurrently
func (s *Server) handleValidateBatch(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBatchRequest(w, r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	verdicts := s.pipeline.ValidateBatch(r.Context(), req.Requests, s.maxConcurrency)
	resp := BatchResponse{Verdicts: verdicts}
	if s.store != nil {
		resp.IDs = make([]string, len(verdicts))
		for i, v := range verdicts {
			resp.IDs[i] = s.saveVerdict(r.Context(), db.SourceBatch, v)
		}
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleGetVerdict returns a stored verdict
func (s *Server) handleGetVerdict(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		err := &ErrStoreUnavailable{}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	idStr := r.PathValue("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		verr := &ErrValidation{Field: "id", Message: "must be a UUID"}
		s.errorResponse(w, HTTPStatus(verr), verr.Error())
		return
	}

	rec, err := s.store.GetVerdict(r.Context(), id)
	if err != nil {
		log.Printf("Failed to load verdict %s: %v", id, err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to load verdict")
		return
	}
	if rec == nil {
		nf := &ErrNotFound{ID: idStr}
		s.errorResponse(w, HTTPStatus(nf), nf.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, rec)
}

// handleListVerdicts returns recent verdict summaries
func (s *Server) handleListVerdicts(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		err := &ErrStoreUnavailable{}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	opts := db.ListOptions{Source: r.URL.Query().Get("source")}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > 500 {
			verr := &ErrValidation{Field: "limit", Message: "must be an integer between 1 and 500"}
			s.errorResponse(w, HTTPStatus(verr), verr.Error())
			return
		}
		opts.Limit = limit
	}
	if v := r.URL.Query().Get("valid"); v != "" {
		valid, err := strconv.ParseBool(v)
		if err != nil {
			verr := &ErrValidation{Field: "valid", Message: "must be true or false"}
			s.errorResponse(w, HTTPStatus(verr), verr.Error())
			return
		}
		opts.Valid = &valid
	}

	records, err := s.store.ListVerdicts(r.Context(), opts)
	if err != nil {
		log.Printf("Failed to list verdicts: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to list verdicts")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"verdicts": records, "count": len(records)})
}

// respondVerdict stores the verdict when possible and writes it as the response body.
// The stored ID is returned in the X-Verdict-ID header so the body stays a plain verdict.
func (s *Server) respondVerdict(ctx context.Context, w http.ResponseWriter, verdict *types.Verdict) {
	if id := s.saveVerdict(ctx, db.SourceHTTP, verdict); id != "" {
		w.Header().Set("X-Verdict-ID", id)
	}
	s.jsonResponse(w, http.StatusOK, verdict)
}

// saveVerdict stores v and returns its ID, or "" when storage is off or fails.
// Storage failures never change the response.
func (s *Server) saveVerdict(ctx context.Context, source string, v *types.Verdict) string {
	if s.store == nil || v == nil {
		return ""
	}
	id, err := s.store.SaveVerdict(ctx, source, v, pipeline.StageCategories())
	if err != nil {
		log.Printf("Warning: failed to store verdict: %v", err)
		return ""
	}
	return id.String()
}
