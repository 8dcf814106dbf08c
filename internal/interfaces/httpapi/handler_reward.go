package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/prediction-league/internal/usecase"
	"go.opentelemetry.io/otel/attribute"
)

func (h *Handler) GetMyStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyStats")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	stats, err := h.leaderboardService.GlobalStats(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "get global stats failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, userStatsDTO{
		UserID:            stats.UserID,
		TotalPoints:       stats.TotalPoints,
		TotalCorrect:      stats.TotalCorrect,
		TotalPredictions:  stats.TotalPredictions,
		ChampionshipCount: stats.ChampionshipCount,
		Lines:             scoreLinesToDTO(stats.Lines),
	})
}

func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CheckIn")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.rewardService.CheckIn(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "check in failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, checkInDTO{Day: result.Day, Streak: result.Streak, FirstToday: result.FirstToday})
}

func (h *Handler) ListMissions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMissions")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	missions, err := h.rewardService.ListMissions(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list missions failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]missionDTO, 0, len(missions))
	for _, m := range missions {
		out = append(out, missionToDTO(m))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

// ClaimMission answers 200 for both GRANTED and ALREADY_CLAIMED.
func (h *Handler) ClaimMission(w http.ResponseWriter, r *http.Request) {
	rewardID := strings.TrimSpace(r.PathValue("rewardID"))
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ClaimMission", attribute.String("reward.id", rewardID))
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.rewardService.ClaimMission(ctx, usecase.ClaimMissionInput{
		UserID:   principal.UserID,
		RewardID: rewardID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "claim mission failed", "user_id", principal.UserID, "reward_id", rewardID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, claimToDTO(result))
}

func (h *Handler) GetRewardSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRewardSummary")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	summary, err := h.rewardService.Summary(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "get reward summary failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	claims := make([]claimRecordDTO, 0, len(summary.Claims))
	for _, c := range summary.Claims {
		claims = append(claims, claimRecordDTO{
			RewardID:  c.RewardID,
			PeriodKey: c.PeriodKey,
			XPGranted: c.XPGranted,
			ClaimedAt: c.ClaimedAt,
		})
	}
	writeSuccess(ctx, w, http.StatusOK, rewardSummaryDTO{TotalXP: summary.TotalXP, Streak: summary.Streak, Claims: claims})
}
