package activity

import (
	"sort"
	"time"
)

const DayLayout = "2006-01-02"

// LoginDay marks that a user checked in on a calendar day.
type LoginDay struct {
	UserID string
	Day    string
}

func DayOf(at time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return at.In(loc).Format(DayLayout)
}

// Streak counts consecutive login days ending today, or ending yesterday when
// today has no check-in yet. Unparseable days are ignored.
func Streak(days []string, today string) int {
	if len(days) == 0 {
		return 0
	}
	todayDate, err := time.Parse(DayLayout, today)
	if err != nil {
		return 0
	}

	set := make(map[string]struct{}, len(days))
	for _, day := range days {
		if _, err := time.Parse(DayLayout, day); err != nil {
			continue
		}
		set[day] = struct{}{}
	}

	cursor := todayDate
	if _, ok := set[today]; !ok {
		cursor = cursor.AddDate(0, 0, -1)
	}

	streak := 0
	for {
		if _, ok := set[cursor.Format(DayLayout)]; !ok {
			return streak
		}
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
}

// SortDays orders days descending, most recent first.
func SortDays(days []string) {
	sort.Slice(days, func(i, j int) bool { return days[i] > days[j] })
}
