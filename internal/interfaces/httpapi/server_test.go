package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/prediction-league/internal/domain/scoring"
	"github.com/riskibarqy/prediction-league/internal/domain/user"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/prediction-league/internal/platform/cache"
	"github.com/riskibarqy/prediction-league/internal/platform/id"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/platform/metrics"
	"github.com/riskibarqy/prediction-league/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJobToken = "job-secret"

type staticVerifier map[string]string

func (v staticVerifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	userID, ok := v[token]
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: unknown token", usecase.ErrUnauthorized)
	}
	return user.Principal{UserID: userID}, nil
}

func newTestRouter(t *testing.T, limiter *UserRateLimiter) http.Handler {
	t.Helper()

	logger := logging.NewNop()
	recorder := metrics.New()
	idGen := id.NewUUIDGenerator()

	championships := memory.NewChampionshipRepository()
	matches := memory.NewMatchRepository()
	predictions := memory.NewPredictionRepository(matches)

	outbox := usecase.NewEventOutboxService(matches, usecase.NewNoopJobQueue(), memory.NewJobDispatchRepository(), usecase.EventOutboxConfig{}, logger)
	leaderboard := usecase.NewLeaderboardService(championships, matches, predictions, scoring.NewScorer(nil), cache.NewStore(time.Minute), recorder, logger)
	handler := NewHandler(
		usecase.NewChampionshipService(championships, idGen, leaderboard, logger),
		usecase.NewMatchService(championships, matches, idGen, leaderboard, outbox, recorder, logger),
		usecase.NewPredictionService(championships, matches, predictions, recorder, logger),
		leaderboard,
		usecase.NewRewardService(memory.NewRewardLedger(), memory.NewActivityRepository(), predictions, leaderboard, time.UTC, recorder, logger),
		outbox,
		logger,
	)

	verifier := staticVerifier{"t-admin": "admin", "t-alice": "alice", "t-bob": "bob"}
	return NewRouter(handler, verifier, logger, RouterConfig{
		CORSAllowedOrigins: []string{"*"},
		InternalJobToken:   testJobToken,
		ClaimLimiter:       limiter,
		Metrics:            recorder,
	})
}

type apiResponse struct {
	code    int
	header  http.Header
	data    any
	errBody map[string]any
	raw     []byte
}

func (r apiResponse) object(t *testing.T) map[string]any {
	t.Helper()
	obj, ok := r.data.(map[string]any)
	require.Truef(t, ok, "expected object data, got %s", r.raw)
	return obj
}

func (r apiResponse) list(t *testing.T) []any {
	t.Helper()
	items, ok := r.data.([]any)
	require.Truef(t, ok, "expected array data, got %s", r.raw)
	return items
}

func call(t *testing.T, h http.Handler, method, path, token string, body any) apiResponse {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := sonic.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	out := apiResponse{code: rec.Code, header: rec.Header(), raw: rec.Body.Bytes()}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		var envelope map[string]any
		require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &envelope))
		out.data = envelope["data"]
		out.errBody, _ = envelope["error"].(map[string]any)
	}
	return out
}

func TestRouter_PredictionRoundTrip(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, nil)

	created := call(t, h, http.MethodPost, "/v1/championships", "t-admin", map[string]any{"name": "Spring Cup"})
	require.Equal(t, http.StatusCreated, created.code, string(created.raw))
	championshipID := created.object(t)["id"].(string)
	inviteCode := created.object(t)["inviteCode"].(string)

	for _, token := range []string{"t-alice", "t-bob"} {
		joined := call(t, h, http.MethodPost, "/v1/championships/join", token, map[string]any{"inviteCode": strings.ToLower(inviteCode)})
		require.Equal(t, http.StatusOK, joined.code, string(joined.raw))
	}

	members := call(t, h, http.MethodGet, "/v1/championships/"+championshipID+"/members", "t-bob", nil)
	require.Equal(t, http.StatusOK, members.code)
	assert.Len(t, members.list(t), 3)

	forbidden := call(t, h, http.MethodPost, "/v1/championships/"+championshipID+"/matches", "t-alice", map[string]any{
		"player1": "Lions", "player2": "Tigers", "startTime": time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
		"questions": []map[string]any{{"type": "WINNER", "label": "Who wins?", "points": 2, "options": []string{"Lions", "Tigers"}}},
	})
	assert.Equal(t, http.StatusForbidden, forbidden.code)

	matchResp := call(t, h, http.MethodPost, "/v1/championships/"+championshipID+"/matches", "t-admin", map[string]any{
		"player1":   "Lions",
		"player2":   "Tigers",
		"startTime": time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
		"questions": []map[string]any{
			{"id": "winner", "type": "winner", "label": "Who wins?", "points": 2, "options": []string{"Lions", "Tigers"}},
			{"id": "score", "type": "EXACT_SCORE", "label": "Final score", "points": 5},
		},
	})
	require.Equal(t, http.StatusCreated, matchResp.code, string(matchResp.raw))
	matchID := matchResp.object(t)["id"].(string)
	assert.Equal(t, "OPEN", matchResp.object(t)["state"])

	alice := call(t, h, http.MethodPut, "/v1/matches/"+matchID+"/prediction", "t-alice", map[string]any{
		"answers": map[string]any{"winner": "Lions", "score": "2-1"},
	})
	require.Equal(t, http.StatusOK, alice.code, string(alice.raw))
	bob := call(t, h, http.MethodPut, "/v1/matches/"+matchID+"/prediction", "t-bob", map[string]any{
		"answers": map[string]any{"winner": "Tigers"},
	})
	require.Equal(t, http.StatusOK, bob.code, string(bob.raw))

	hidden := call(t, h, http.MethodGet, "/v1/matches/"+matchID+"/predictions", "t-bob", nil)
	require.Equal(t, http.StatusOK, hidden.code)
	for _, item := range hidden.list(t) {
		row := item.(map[string]any)
		if row["userId"] == "alice" {
			assert.Equal(t, true, row["hidden"])
			assert.NotContains(t, row, "answers")
		}
	}

	result := call(t, h, http.MethodPost, "/v1/matches/"+matchID+"/result", "t-admin", map[string]any{
		"answers": map[string]any{"winner": "Lions", "score": "2-1"},
	})
	require.Equal(t, http.StatusCreated, result.code, string(result.raw))

	again := call(t, h, http.MethodPost, "/v1/matches/"+matchID+"/result", "t-admin", map[string]any{
		"answers": map[string]any{"winner": "Tigers", "score": "0-1"},
	})
	assert.Equal(t, http.StatusConflict, again.code)
	assert.Equal(t, "ALREADY_EXISTS", again.errBody["status"])

	late := call(t, h, http.MethodPut, "/v1/matches/"+matchID+"/prediction", "t-bob", map[string]any{
		"answers": map[string]any{"winner": "Lions"},
	})
	assert.Equal(t, http.StatusConflict, late.code)
	assert.Equal(t, "FAILED_PRECONDITION", late.errBody["status"])

	board := call(t, h, http.MethodGet, "/v1/championships/"+championshipID+"/leaderboard", "t-bob", nil)
	require.Equal(t, http.StatusOK, board.code)
	rows := board.list(t)
	require.Len(t, rows, 3)
	top := rows[0].(map[string]any)
	assert.Equal(t, "alice", top["userId"])
	assert.EqualValues(t, 7, top["totalPoints"])
	assert.EqualValues(t, 2, top["totalCorrect"])
	assert.EqualValues(t, 1, top["rank"])

	scores := call(t, h, http.MethodGet, "/v1/matches/"+matchID+"/scores", "t-alice", nil)
	require.Equal(t, http.StatusOK, scores.code)
	assert.Len(t, scores.list(t), 2)

	stats := call(t, h, http.MethodGet, "/v1/me/stats", "t-alice", nil)
	require.Equal(t, http.StatusOK, stats.code)
	assert.EqualValues(t, 7, stats.object(t)["totalPoints"])
	assert.EqualValues(t, 1, stats.object(t)["championshipCount"])

	revealed := call(t, h, http.MethodGet, "/v1/matches/"+matchID+"/predictions", "t-bob", nil)
	for _, item := range revealed.list(t) {
		assert.Equal(t, false, item.(map[string]any)["hidden"])
	}
}

func TestRouter_ClaimOutcomes(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, nil)

	unmet := call(t, h, http.MethodPost, "/v1/rewards/missions/daily_login/claim", "t-alice", nil)
	assert.Equal(t, http.StatusBadRequest, unmet.code)

	checkIn := call(t, h, http.MethodPost, "/v1/me/check-in", "t-alice", nil)
	require.Equal(t, http.StatusOK, checkIn.code)
	assert.EqualValues(t, 1, checkIn.object(t)["streak"])

	granted := call(t, h, http.MethodPost, "/v1/rewards/missions/daily_login/claim", "t-alice", nil)
	require.Equal(t, http.StatusOK, granted.code, string(granted.raw))
	assert.Equal(t, "GRANTED", granted.object(t)["outcome"])
	assert.EqualValues(t, 10, granted.object(t)["xpGranted"])

	repeat := call(t, h, http.MethodPost, "/v1/rewards/missions/daily_login/claim", "t-alice", nil)
	require.Equal(t, http.StatusOK, repeat.code)
	assert.Equal(t, "ALREADY_CLAIMED", repeat.object(t)["outcome"])
	assert.EqualValues(t, 0, repeat.object(t)["xpGranted"])
	assert.Equal(t, "already collected", repeat.object(t)["message"])

	summary := call(t, h, http.MethodGet, "/v1/rewards/summary", "t-alice", nil)
	require.Equal(t, http.StatusOK, summary.code)
	assert.EqualValues(t, 10, summary.object(t)["totalXp"])

	missions := call(t, h, http.MethodGet, "/v1/rewards/missions", "t-alice", nil)
	require.Equal(t, http.StatusOK, missions.code)
	first := missions.list(t)[0].(map[string]any)
	assert.Equal(t, "daily_login", first["id"])
	assert.Equal(t, true, first["claimed"])

	unknown := call(t, h, http.MethodPost, "/v1/rewards/missions/nope/claim", "t-alice", nil)
	assert.Equal(t, http.StatusNotFound, unknown.code)

	exposition := httptest.NewRecorder()
	h.ServeHTTP(exposition, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, exposition.Code)
	assert.Contains(t, exposition.Body.String(), `prediction_league_reward_claims_total{outcome="GRANTED"} 1`)
}

func TestRouter_ClaimRateLimitedPerUser(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, NewUserRateLimiter(1, 1))

	first := call(t, h, http.MethodPost, "/v1/rewards/missions/daily_login/claim", "t-alice", nil)
	assert.Equal(t, http.StatusBadRequest, first.code)

	second := call(t, h, http.MethodPost, "/v1/rewards/missions/daily_login/claim", "t-alice", nil)
	assert.Equal(t, http.StatusTooManyRequests, second.code)
	assert.Equal(t, "RESOURCE_EXHAUSTED", second.errBody["status"])
	assert.Equal(t, "1", second.header.Get("Retry-After"))

	other := call(t, h, http.MethodPost, "/v1/rewards/missions/daily_login/claim", "t-bob", nil)
	assert.Equal(t, http.StatusBadRequest, other.code)
}

func TestRouter_AuthAndValidation(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		status int
	}{
		{name: "health is public", method: http.MethodGet, path: "/healthz", status: http.StatusOK},
		{name: "missing token", method: http.MethodGet, path: "/v1/championships", status: http.StatusUnauthorized},
		{name: "unknown token", method: http.MethodGet, path: "/v1/championships", token: "t-mallory", status: http.StatusUnauthorized},
		{name: "empty body", method: http.MethodPost, path: "/v1/championships", token: "t-alice", status: http.StatusBadRequest},
		{name: "unknown field", method: http.MethodPost, path: "/v1/championships", token: "t-alice", body: map[string]any{"name": "x", "extra": 1}, status: http.StatusBadRequest},
		{name: "missing name", method: http.MethodPost, path: "/v1/championships", token: "t-alice", body: map[string]any{"name": ""}, status: http.StatusBadRequest},
		{name: "unknown championship", method: http.MethodGet, path: "/v1/championships/nope", token: "t-alice", status: http.StatusNotFound},
		{name: "unknown match", method: http.MethodGet, path: "/v1/matches/nope", token: "t-alice", status: http.StatusNotFound},
		{name: "internal without token", method: http.MethodGet, path: "/v1/internal/matches/upcoming", status: http.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			resp := call(t, h, tc.method, tc.path, tc.token, tc.body)
			assert.Equal(t, tc.status, resp.code, string(resp.raw))
		})
	}
}

func TestRouter_InternalJobRoutes(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, nil)

	internal := func(method, path string, body any) apiResponse {
		var reader io.Reader
		if body != nil {
			raw, err := sonic.Marshal(body)
			require.NoError(t, err)
			reader = bytes.NewReader(raw)
		}
		req := httptest.NewRequest(method, path, reader)
		req.Header.Set("X-Internal-Job-Token", testJobToken)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		var envelope map[string]any
		require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &envelope))
		errBody, _ := envelope["error"].(map[string]any)
		return apiResponse{code: rec.Code, data: envelope["data"], errBody: errBody, raw: rec.Body.Bytes()}
	}

	upcoming := internal(http.MethodGet, "/v1/internal/matches/upcoming", nil)
	assert.Equal(t, http.StatusOK, upcoming.code, string(upcoming.raw))

	republish := internal(http.MethodPost, "/v1/internal/jobs/republish-upcoming", nil)
	require.Equal(t, http.StatusOK, republish.code, string(republish.raw))
	assert.EqualValues(t, 0, republish.object(t)["matchCount"])

	missing := internal(http.MethodPost, "/v1/internal/jobs/dispatch-ack", map[string]any{"dispatchId": "match.created-x"})
	assert.Equal(t, http.StatusNotFound, missing.code)

	invalid := internal(http.MethodPost, "/v1/internal/jobs/dispatch-ack", map[string]any{"dispatchId": "x", "status": "sent"})
	assert.Equal(t, http.StatusBadRequest, invalid.code)
}

func TestRecoverPanicWritesInternalError(t *testing.T) {
	t.Parallel()

	h := recoverPanic(logging.NewNop(), http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/anything", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"INTERNAL"`)
	assert.NotContains(t, rec.Body.String(), "boom")
}
