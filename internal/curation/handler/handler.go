// Package handler exposes the curation pipeline over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vaxscreen/internal/candidate"
	"vaxscreen/internal/curation"
	id "vaxscreen/pkg/domain"
	dErrors "vaxscreen/pkg/domain-errors"
	"vaxscreen/pkg/platform/httputil"
)

// Service defines the interface for pipeline run operations.
type Service interface {
	StartRun(ctx context.Context, p curation.RunParams) (*candidate.PipelineRun, error)
	GetRun(ctx context.Context, runID id.RunID) (*candidate.PipelineRun, error)
	ListCandidates(ctx context.Context, runID id.RunID) ([]*candidate.Candidate, error)
}

// Handler handles pipeline run endpoints.
type Handler struct {
	logger *slog.Logger
	svc    Service
}

// New creates a new run Handler.
func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger,
		svc:    svc,
	}
}

// Register registers the run routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/runs", h.handleStartRun)
	r.Get("/runs/{runID}", h.handleGetRun)
	r.Get("/runs/{runID}/candidates", h.handleListCandidates)
}

// handleStartRun accepts a run request and launches the pipeline. The run
// executes asynchronously; the response reflects its initial state.
func (h *Handler) handleStartRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[startRunRequest](w, r, h.logger)
	if !ok {
		return
	}

	run, err := h.svc.StartRun(ctx, curation.RunParams{
		PathogenName:      req.PathogenName,
		InputType:         req.InputType,
		RawInput:          req.RawInput,
		TargetPopulations: req.TargetPopulations,
		CoverageThreshold: req.CoverageThreshold,
		MaxCandidates:     req.MaxCandidates,
	})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeBadRequest) || dErrors.HasCode(err, dErrors.CodeInvalidInput) {
			h.logger.WarnContext(ctx, "invalid run request", "error", err.Error())
			httputil.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "failed to start run", "error", err.Error())
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to start run"))
		return
	}

	httputil.WriteJSON(w, http.StatusAccepted, toRunResponse(run))
}

func (h *Handler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	runID, err := id.ParseRunID(chi.URLParam(r, "runID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	run, err := h.svc.GetRun(ctx, runID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			httputil.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "failed to load run", "run_id", runID.String(), "error", err.Error())
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to load run"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toRunResponse(run))
}

func (h *Handler) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	runID, err := id.ParseRunID(chi.URLParam(r, "runID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	candidates, err := h.svc.ListCandidates(ctx, runID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			httputil.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "failed to list candidates", "run_id", runID.String(), "error", err.Error())
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to list candidates"))
		return
	}
	if candidates == nil {
		candidates = []*candidate.Candidate{}
	}

	httputil.WriteJSON(w, http.StatusOK, candidatesResponse{
		RunID:      runID.String(),
		Candidates: candidates,
	})
}
