package reward

import (
	"testing"
	"time"
)

func TestComputeGrant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		base   int
		streak int
		want   int
	}{
		{name: "below threshold", base: 50, streak: 6, want: 50},
		{name: "at threshold", base: 50, streak: 7, want: 100},
		{name: "long streak", base: 50, streak: 30, want: 100},
		{name: "no streak", base: 10, streak: 0, want: 10},
		{name: "zero base", base: 0, streak: 9, want: 0},
		{name: "negative base clamped", base: -5, streak: 9, want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := ComputeGrant(MissionFirstPrediction, tc.base, tc.streak); got != tc.want {
				t.Fatalf("ComputeGrant(%d, %d)=%d, want %d", tc.base, tc.streak, got, tc.want)
			}
		})
	}
}

func TestPeriodKey(t *testing.T) {
	t.Parallel()

	jakarta := time.FixedZone("WIB", 7*60*60)
	beforeMidnight := time.Date(2026, 6, 1, 16, 59, 59, 0, time.UTC)
	afterMidnight := beforeMidnight.Add(2 * time.Second)

	if got := PeriodKey(RecurrenceOneTime, beforeMidnight, jakarta); got != OneTimePeriod {
		t.Fatalf("one-time key=%s, want %s", got, OneTimePeriod)
	}
	if got := PeriodKey(RecurrenceOneTime, afterMidnight.AddDate(1, 0, 0), jakarta); got != OneTimePeriod {
		t.Fatalf("one-time key must not change over time, got %s", got)
	}

	before := PeriodKey(RecurrenceDaily, beforeMidnight, jakarta)
	after := PeriodKey(RecurrenceDaily, afterMidnight, jakarta)
	if before != "2026-06-01" || after != "2026-06-02" {
		t.Fatalf("daily keys must roll over at local midnight, got before=%s after=%s", before, after)
	}
	if got := DailyPeriod(afterMidnight, nil); got != "2026-06-01" {
		t.Fatalf("nil location must default to UTC, got %s", got)
	}
}

func TestCatalog(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for _, item := range Catalog() {
		if _, dup := seen[item.ID]; dup {
			t.Fatalf("duplicate reward id %s", item.ID)
		}
		seen[item.ID] = struct{}{}
		if item.BaseXP <= 0 {
			t.Fatalf("reward %s must grant xp", item.ID)
		}
	}

	got, ok := FindReward(" " + MissionLoginStreak7 + " ")
	if !ok || got.BaseXP != 150 || got.Recurrence != RecurrenceOneTime {
		t.Fatalf("unexpected reward lookup: %+v ok=%v", got, ok)
	}
	if _, ok := FindReward("unknown"); ok {
		t.Fatalf("expected unknown reward lookup to fail")
	}
}
