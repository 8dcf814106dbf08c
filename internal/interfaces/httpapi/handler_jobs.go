package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/prediction-league/internal/usecase"
)

// ListUpcomingMatches serves the notification collaborator. Optional query
// parameter championshipId narrows the list.
func (h *Handler) ListUpcomingMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListUpcomingMatches")
	defer span.End()

	championshipID := strings.TrimSpace(r.URL.Query().Get("championshipId"))
	items, err := h.matchService.ListUpcoming(ctx, championshipID)
	if err != nil {
		h.logger.WarnContext(ctx, "list upcoming matches failed", "championship_id", championshipID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchViewsToDTO(items))
}

func (h *Handler) RunRepublishUpcomingJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRepublishUpcomingJob")
	defer span.End()

	if h.eventOutbox == nil {
		writeError(ctx, w, fmt.Errorf("%w: event outbox is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req republishUpcomingRequest
	if err := h.decodeRequest(ctx, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.eventOutbox.RepublishUpcoming(ctx, usecase.RepublishInput{ChampionshipID: req.ChampionshipID})
	if err != nil {
		h.logger.WarnContext(ctx, "republish upcoming job failed", "championship_id", req.ChampionshipID, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "republish upcoming job finished",
		"championship_id", req.ChampionshipID,
		"match_count", result.MatchCount,
		"queued_count", result.QueuedCount,
		"failed_count", result.FailedCount,
	)
	writeSuccess(ctx, w, http.StatusOK, republishResultDTO{
		MatchCount:  result.MatchCount,
		QueuedCount: result.QueuedCount,
		FailedCount: result.FailedCount,
		DispatchIDs: result.DispatchIDs,
	})
}

func (h *Handler) AcknowledgeDispatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AcknowledgeDispatch")
	defer span.End()

	if h.eventOutbox == nil {
		writeError(ctx, w, fmt.Errorf("%w: event outbox is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req dispatchAckRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.eventOutbox.AcknowledgeDispatch(ctx, usecase.AckDispatchInput{
		DispatchID:   req.DispatchID,
		Status:       req.Status,
		ErrorMessage: req.ErrorMessage,
	}); err != nil {
		h.logger.WarnContext(ctx, "acknowledge dispatch failed", "dispatch_id", req.DispatchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"dispatchId": strings.TrimSpace(req.DispatchID), "status": "acknowledged"})
}
