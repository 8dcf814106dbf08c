package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/championship"
	"github.com/riskibarqy/prediction-league/internal/domain/match"
)

const (
	DemoChampionshipID = "demo-championship"
	DemoInviteCode     = "DEMOCUP2"
	DemoAdminUserID    = "demo-admin"
)

// SeedDemo loads one championship with an open match for local development.
func SeedDemo(ctx context.Context, championships *ChampionshipRepository, matches *MatchRepository, now time.Time) error {
	created := now.UTC()
	err := championships.Create(ctx, championship.Championship{
		ID:          DemoChampionshipID,
		Name:        "Demo Cup",
		InviteCode:  DemoInviteCode,
		OwnerUserID: DemoAdminUserID,
		CreatedAt:   created,
	}, championship.Member{
		UserID:   DemoAdminUserID,
		Role:     championship.RoleAdmin,
		JoinedAt: created,
	})
	if err != nil {
		return fmt.Errorf("seed demo championship: %w", err)
	}

	threshold := 2.5
	err = matches.Create(ctx, match.Match{
		ID:             "demo-match-1",
		ChampionshipID: DemoChampionshipID,
		Player1:        "Persija Jakarta",
		Player2:        "Persib Bandung",
		StartTime:      created.Add(24 * time.Hour).Truncate(time.Hour),
		Status:         match.StatusScheduled,
		Questions: []match.Question{
			{ID: "winner", Type: match.QuestionWinner, Label: "Who wins?", Points: 2, Options: []string{"Persija Jakarta", "Persib Bandung", "Draw"}},
			{ID: "score", Type: match.QuestionExactScore, Label: "Exact score", Points: 5},
			{ID: "goals", Type: match.QuestionOverUnder, Label: "Total goals over 2.5?", Points: 1, Threshold: &threshold},
		},
		CreatedBy: DemoAdminUserID,
		CreatedAt: created,
	})
	if err != nil {
		return fmt.Errorf("seed demo match: %w", err)
	}
	return nil
}
