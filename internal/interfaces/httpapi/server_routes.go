package httpapi

import "net/http"

const claimRoute = "/v1/rewards/missions/{rewardID}/claim"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, cfg RouterConfig) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics.Handler())
	}
	if !cfg.SwaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerChampionshipRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/championships", RequireAuth(verifier, http.HandlerFunc(handler.CreateChampionship)))
	mux.Handle("GET /v1/championships", RequireAuth(verifier, http.HandlerFunc(handler.ListMyChampionships)))
	mux.Handle("POST /v1/championships/join", RequireAuth(verifier, http.HandlerFunc(handler.JoinChampionship)))
	mux.Handle("GET /v1/championships/{championshipID}", RequireAuth(verifier, http.HandlerFunc(handler.GetChampionship)))
	mux.Handle("GET /v1/championships/{championshipID}/members", RequireAuth(verifier, http.HandlerFunc(handler.ListChampionshipMembers)))
	mux.Handle("PUT /v1/championships/{championshipID}/members/{userID}/role", RequireAuth(verifier, http.HandlerFunc(handler.SetMemberRole)))
	mux.Handle("POST /v1/championships/{championshipID}/matches", RequireAuth(verifier, http.HandlerFunc(handler.CreateMatch)))
	mux.Handle("GET /v1/championships/{championshipID}/matches", RequireAuth(verifier, http.HandlerFunc(handler.ListChampionshipMatches)))
	mux.Handle("GET /v1/championships/{championshipID}/leaderboard", RequireAuth(verifier, http.HandlerFunc(handler.GetChampionshipLeaderboard)))
}

func registerMatchRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/matches/{matchID}", RequireAuth(verifier, http.HandlerFunc(handler.GetMatch)))
	mux.Handle("PUT /v1/matches/{matchID}/prediction", RequireAuth(verifier, http.HandlerFunc(handler.SubmitPrediction)))
	mux.Handle("GET /v1/matches/{matchID}/prediction", RequireAuth(verifier, http.HandlerFunc(handler.GetMyPrediction)))
	mux.Handle("GET /v1/matches/{matchID}/predictions", RequireAuth(verifier, http.HandlerFunc(handler.ListMatchPredictions)))
	mux.Handle("POST /v1/matches/{matchID}/result", RequireAuth(verifier, http.HandlerFunc(handler.RecordMatchResult)))
	mux.Handle("GET /v1/matches/{matchID}/scores", RequireAuth(verifier, http.HandlerFunc(handler.ListMatchScores)))
}

func registerRewardRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier, cfg RouterConfig) {
	mux.Handle("GET /v1/me/stats", RequireAuth(verifier, http.HandlerFunc(handler.GetMyStats)))
	mux.Handle("POST /v1/me/check-in", RequireAuth(verifier, http.HandlerFunc(handler.CheckIn)))
	mux.Handle("GET /v1/rewards/missions", RequireAuth(verifier, http.HandlerFunc(handler.ListMissions)))
	mux.Handle("POST "+claimRoute, RequireAuth(verifier, RateLimitPerUser(cfg.ClaimLimiter, claimRoute, cfg.Metrics, http.HandlerFunc(handler.ClaimMission))))
	mux.Handle("GET /v1/rewards/summary", RequireAuth(verifier, http.HandlerFunc(handler.GetRewardSummary)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("GET /v1/internal/matches/upcoming", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.ListUpcomingMatches)))
	mux.Handle("POST /v1/internal/jobs/republish-upcoming", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRepublishUpcomingJob)))
	mux.Handle("POST /v1/internal/jobs/dispatch-ack", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.AcknowledgeDispatch)))
}
