package reward

import "time"

const (
	OneTimePeriod  = "ONE_TIME"
	dailyKeyLayout = "2006-01-02"
)

// DailyPeriod is the calendar date of at in loc, so keys roll over at local midnight.
func DailyPeriod(at time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return at.In(loc).Format(dailyKeyLayout)
}

func PeriodKey(recurrence Recurrence, at time.Time, loc *time.Location) string {
	if recurrence == RecurrenceDaily {
		return DailyPeriod(at, loc)
	}
	return OneTimePeriod
}

func (r Reward) PeriodKey(at time.Time, loc *time.Location) string {
	return PeriodKey(r.Recurrence, at, loc)
}
