package httpapi

import (
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/championship"
	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/domain/reward"
	"github.com/riskibarqy/prediction-league/internal/domain/scoring"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

type createChampionshipRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type joinChampionshipRequest struct {
	InviteCode string `json:"inviteCode" validate:"required,max=32"`
}

type setMemberRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

type questionRequest struct {
	ID        string   `json:"id" validate:"omitempty,max=64"`
	Type      string   `json:"type" validate:"required"`
	Label     string   `json:"label" validate:"max=200"`
	Points    int      `json:"points"`
	Options   []string `json:"options,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
}

type createMatchRequest struct {
	Player1   string            `json:"player1" validate:"required,max=100"`
	Player2   string            `json:"player2" validate:"required,max=100"`
	StartTime time.Time         `json:"startTime" validate:"required"`
	Questions []questionRequest `json:"questions" validate:"required,min=1,dive"`
}

type answersRequest struct {
	Answers map[string]any `json:"answers" validate:"required"`
}

type republishUpcomingRequest struct {
	ChampionshipID string `json:"championshipId"`
}

type dispatchAckRequest struct {
	DispatchID   string `json:"dispatchId" validate:"required"`
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage" validate:"max=2000"`
}

type championshipDTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	InviteCode  string    `json:"inviteCode"`
	OwnerUserID string    `json:"ownerUserId"`
	CreatedAt   time.Time `json:"createdAt"`
}

type memberDTO struct {
	UserID   string    `json:"userId"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

type questionDTO struct {
	ID        string   `json:"id"`
	Type      string   `json:"type"`
	Label     string   `json:"label,omitempty"`
	Points    int      `json:"points"`
	Options   []string `json:"options,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
}

type matchDTO struct {
	ID             string        `json:"id"`
	ChampionshipID string        `json:"championshipId"`
	Player1        string        `json:"player1"`
	Player2        string        `json:"player2"`
	StartTime      time.Time     `json:"startTime"`
	Status         string        `json:"status"`
	State          string        `json:"state"`
	Questions      []questionDTO `json:"questions"`
	CreatedBy      string        `json:"createdBy,omitempty"`
}

type resultDTO struct {
	MatchID    string         `json:"matchId"`
	Answers    map[string]any `json:"answers"`
	RecordedBy string         `json:"recordedBy"`
	RecordedAt time.Time      `json:"recordedAt"`
}

type predictionDTO struct {
	UserID      string         `json:"userId"`
	MatchID     string         `json:"matchId"`
	Answers     map[string]any `json:"answers"`
	SubmittedAt time.Time      `json:"submittedAt"`
}

type predictionViewDTO struct {
	UserID      string         `json:"userId"`
	SubmittedAt time.Time      `json:"submittedAt"`
	Answers     map[string]any `json:"answers,omitempty"`
	Hidden      bool           `json:"hidden"`
}

type scoreLineDTO struct {
	UserID        string    `json:"userId"`
	MatchID       string    `json:"matchId"`
	PointsAwarded int       `json:"pointsAwarded"`
	CorrectCount  int       `json:"correctCount"`
	QuestionCount int       `json:"questionCount"`
	StartTime     time.Time `json:"startTime"`
}

type leaderboardRowDTO struct {
	Rank             int    `json:"rank"`
	UserID           string `json:"userId"`
	TotalPoints      int    `json:"totalPoints"`
	TotalCorrect     int    `json:"totalCorrect"`
	TotalPredictions int    `json:"totalPredictions"`
}

type userStatsDTO struct {
	UserID            string         `json:"userId"`
	TotalPoints       int            `json:"totalPoints"`
	TotalCorrect      int            `json:"totalCorrect"`
	TotalPredictions  int            `json:"totalPredictions"`
	ChampionshipCount int            `json:"championshipCount"`
	Lines             []scoreLineDTO `json:"lines"`
}

type checkInDTO struct {
	Day        string `json:"day"`
	Streak     int    `json:"streak"`
	FirstToday bool   `json:"firstToday"`
}

type missionDTO struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	BaseXP     int    `json:"baseXp"`
	Recurrence string `json:"recurrence"`
	PeriodKey  string `json:"periodKey"`
	Claimed    bool   `json:"claimed"`
	Eligible   bool   `json:"eligible"`
}

type claimDTO struct {
	Outcome   string `json:"outcome"`
	XPGranted int    `json:"xpGranted"`
	Message   string `json:"message,omitempty"`
	RewardID  string `json:"rewardId"`
	PeriodKey string `json:"periodKey"`
	Streak    int    `json:"streak"`
}

type claimRecordDTO struct {
	RewardID  string    `json:"rewardId"`
	PeriodKey string    `json:"periodKey"`
	XPGranted int       `json:"xpGranted"`
	ClaimedAt time.Time `json:"claimedAt"`
}

type rewardSummaryDTO struct {
	TotalXP int              `json:"totalXp"`
	Streak  int              `json:"streak"`
	Claims  []claimRecordDTO `json:"claims"`
}

type republishResultDTO struct {
	MatchCount  int      `json:"matchCount"`
	QueuedCount int      `json:"queuedCount"`
	FailedCount int      `json:"failedCount"`
	DispatchIDs []string `json:"dispatchIds"`
}

func championshipToDTO(v championship.Championship) championshipDTO {
	return championshipDTO{
		ID:          v.ID,
		Name:        v.Name,
		InviteCode:  v.InviteCode,
		OwnerUserID: v.OwnerUserID,
		CreatedAt:   v.CreatedAt,
	}
}

func memberToDTO(v championship.Member) memberDTO {
	return memberDTO{UserID: v.UserID, Role: string(v.Role), JoinedAt: v.JoinedAt}
}

func questionsFromRequest(items []questionRequest) []match.Question {
	out := make([]match.Question, 0, len(items))
	for _, item := range items {
		qt, ok := match.ParseQuestionType(item.Type)
		if !ok {
			qt = match.QuestionType(item.Type)
		}
		out = append(out, match.Question{
			ID:        item.ID,
			Type:      qt,
			Label:     item.Label,
			Points:    item.Points,
			Options:   item.Options,
			Threshold: item.Threshold,
		})
	}
	return out
}

func matchViewToDTO(v usecase.MatchView) matchDTO {
	questions := make([]questionDTO, 0, len(v.Match.Questions))
	for _, q := range v.Match.Questions {
		questions = append(questions, questionDTO{
			ID:        q.ID,
			Type:      string(q.Type),
			Label:     q.Label,
			Points:    q.Points,
			Options:   q.Options,
			Threshold: q.Threshold,
		})
	}
	return matchDTO{
		ID:             v.Match.ID,
		ChampionshipID: v.Match.ChampionshipID,
		Player1:        v.Match.Player1,
		Player2:        v.Match.Player2,
		StartTime:      v.Match.StartTime,
		Status:         string(v.Match.Status),
		State:          string(v.State),
		Questions:      questions,
		CreatedBy:      v.Match.CreatedBy,
	}
}

func matchViewsToDTO(items []usecase.MatchView) []matchDTO {
	out := make([]matchDTO, 0, len(items))
	for _, item := range items {
		out = append(out, matchViewToDTO(item))
	}
	return out
}

func resultToDTO(v match.Result) resultDTO {
	return resultDTO{MatchID: v.MatchID, Answers: v.Answers, RecordedBy: v.RecordedBy, RecordedAt: v.RecordedAt}
}

func predictionToDTO(v prediction.Prediction) predictionDTO {
	return predictionDTO{UserID: v.UserID, MatchID: v.MatchID, Answers: v.Answers, SubmittedAt: v.SubmittedAt}
}

func scoreLinesToDTO(items []scoring.ScoreLine) []scoreLineDTO {
	out := make([]scoreLineDTO, 0, len(items))
	for _, item := range items {
		out = append(out, scoreLineDTO{
			UserID:        item.UserID,
			MatchID:       item.MatchID,
			PointsAwarded: item.PointsAwarded,
			CorrectCount:  item.CorrectCount,
			QuestionCount: item.QuestionCount,
			StartTime:     item.StartTime,
		})
	}
	return out
}

func missionToDTO(v usecase.MissionStatus) missionDTO {
	return missionDTO{
		ID:         v.Reward.ID,
		Title:      v.Reward.Title,
		BaseXP:     v.Reward.BaseXP,
		Recurrence: string(v.Reward.Recurrence),
		PeriodKey:  v.PeriodKey,
		Claimed:    v.Claimed,
		Eligible:   v.Eligible,
	}
}

func claimToDTO(v usecase.ClaimResult) claimDTO {
	out := claimDTO{
		Outcome:   string(v.Outcome),
		XPGranted: v.XPGranted,
		RewardID:  v.RewardID,
		PeriodKey: v.PeriodKey,
		Streak:    v.Streak,
	}
	if v.Outcome == reward.OutcomeAlreadyClaimed {
		out.XPGranted = 0
		out.Message = "already collected"
	}
	return out
}
