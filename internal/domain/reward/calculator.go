package reward

const (
	StreakBonusThreshold  = 7
	StreakBonusMultiplier = 2
)

// ComputeGrant returns the XP for a granted claim. A login streak of seven or more
// days doubles the base amount for every reward.
func ComputeGrant(rewardID string, baseXP, streak int) int {
	if baseXP < 0 {
		baseXP = 0
	}
	if streak >= StreakBonusThreshold {
		return baseXP * StreakBonusMultiplier
	}
	return baseXP
}
