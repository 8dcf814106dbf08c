package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/prediction-league/internal/usecase"
)

func (h *Handler) CreateChampionship(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateChampionship")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req createChampionshipRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.championshipService.Create(ctx, usecase.CreateChampionshipInput{
		UserID: principal.UserID,
		Name:   req.Name,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create championship failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, championshipToDTO(item))
}

func (h *Handler) ListMyChampionships(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyChampionships")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.championshipService.ListMine(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list my championships failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]championshipDTO, 0, len(items))
	for _, item := range items {
		out = append(out, championshipToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) JoinChampionship(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinChampionship")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req joinChampionshipRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.championshipService.JoinByInvite(ctx, usecase.JoinChampionshipInput{
		UserID:     principal.UserID,
		InviteCode: req.InviteCode,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "join championship failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, championshipToDTO(item))
}

func (h *Handler) GetChampionship(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetChampionship")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	championshipID := strings.TrimSpace(r.PathValue("championshipID"))

	item, err := h.championshipService.Get(ctx, principal.UserID, championshipID)
	if err != nil {
		h.logger.WarnContext(ctx, "get championship failed", "user_id", principal.UserID, "championship_id", championshipID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, championshipToDTO(item))
}

func (h *Handler) ListChampionshipMembers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListChampionshipMembers")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	championshipID := strings.TrimSpace(r.PathValue("championshipID"))

	members, err := h.championshipService.ListMembers(ctx, principal.UserID, championshipID)
	if err != nil {
		h.logger.WarnContext(ctx, "list championship members failed", "user_id", principal.UserID, "championship_id", championshipID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]memberDTO, 0, len(members))
	for _, m := range members {
		out = append(out, memberToDTO(m))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) SetMemberRole(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetMemberRole")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	championshipID := strings.TrimSpace(r.PathValue("championshipID"))
	targetUserID := strings.TrimSpace(r.PathValue("userID"))

	var req setMemberRoleRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	member, err := h.championshipService.SetMemberRole(ctx, usecase.SetMemberRoleInput{
		ActorUserID:    principal.UserID,
		ChampionshipID: championshipID,
		TargetUserID:   targetUserID,
		Role:           req.Role,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "set member role failed",
			"user_id", principal.UserID,
			"championship_id", championshipID,
			"target_user_id", targetUserID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, memberToDTO(member))
}

func (h *Handler) GetChampionshipLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetChampionshipLeaderboard")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	championshipID := strings.TrimSpace(r.PathValue("championshipID"))

	rows, err := h.leaderboardService.ChampionshipLeaderboard(ctx, principal.UserID, championshipID)
	if err != nil {
		h.logger.WarnContext(ctx, "get leaderboard failed", "user_id", principal.UserID, "championship_id", championshipID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]leaderboardRowDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, leaderboardRowDTO{
			Rank:             row.Rank,
			UserID:           row.UserID,
			TotalPoints:      row.TotalPoints,
			TotalCorrect:     row.TotalCorrect,
			TotalPredictions: row.TotalPredictions,
		})
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}
