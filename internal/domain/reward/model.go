package reward

import (
	"strings"
	"time"
)

type Recurrence string

const (
	RecurrenceOneTime Recurrence = "ONE_TIME"
	RecurrenceDaily   Recurrence = "DAILY"
)

// Mission ids of the built-in catalog.
const (
	MissionDailyLogin         = "daily_login"
	MissionDailyPrediction    = "daily_prediction"
	MissionFirstPrediction    = "first_prediction"
	MissionPerfectMatch       = "perfect_match"
	MissionThreeCorrectInARow = "three_correct_in_row"
	MissionLoginStreak7       = "login_streak_7"
)

// Reward is one claimable catalog entry.
type Reward struct {
	ID         string
	Title      string
	BaseXP     int
	Recurrence Recurrence
}

// ClaimRecord is unique per (UserID, RewardID, PeriodKey).
type ClaimRecord struct {
	UserID    string
	RewardID  string
	PeriodKey string
	XPGranted int
	ClaimedAt time.Time
}

type ClaimOutcome string

const (
	OutcomeGranted        ClaimOutcome = "GRANTED"
	OutcomeAlreadyClaimed ClaimOutcome = "ALREADY_CLAIMED"
	OutcomeFailed         ClaimOutcome = "FAILED"
)

// Catalog is the fixed mission list, in display order.
func Catalog() []Reward {
	return []Reward{
		{ID: MissionDailyLogin, Title: "Check in today", BaseXP: 10, Recurrence: RecurrenceDaily},
		{ID: MissionDailyPrediction, Title: "Submit a prediction today", BaseXP: 20, Recurrence: RecurrenceDaily},
		{ID: MissionFirstPrediction, Title: "Submit your first prediction", BaseXP: 50, Recurrence: RecurrenceOneTime},
		{ID: MissionPerfectMatch, Title: "Answer every question of a match correctly", BaseXP: 100, Recurrence: RecurrenceOneTime},
		{ID: MissionThreeCorrectInARow, Title: "Score in three matches in a row", BaseXP: 75, Recurrence: RecurrenceOneTime},
		{ID: MissionLoginStreak7, Title: "Check in seven days in a row", BaseXP: 150, Recurrence: RecurrenceOneTime},
	}
}

func FindReward(rewardID string) (Reward, bool) {
	rewardID = strings.TrimSpace(rewardID)
	for _, item := range Catalog() {
		if item.ID == rewardID {
			return item, true
		}
	}
	return Reward{}, false
}
