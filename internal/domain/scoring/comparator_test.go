package scoring

import (
	"encoding/json"
	"testing"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
)

func TestStringComparator_Equal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		submitted any
		official  any
		want      bool
	}{
		{name: "same string", submitted: "A", official: "A", want: true},
		{name: "case sensitive", submitted: "a", official: "A", want: false},
		{name: "no trimming", submitted: "A ", official: "A", want: false},
		{name: "number vs numeric string", submitted: "2", official: 2, want: true},
		{name: "float without fraction", submitted: "2", official: float64(2), want: true},
		{name: "float with fraction", submitted: "2.5", official: 2.5, want: true},
		{name: "json number keeps text", submitted: "2", official: json.Number("2.0"), want: false},
		{name: "over token", submitted: "OVER", official: "OVER", want: true},
		{name: "over vs under", submitted: "OVER", official: "UNDER", want: false},
		{name: "bool text", submitted: "true", official: true, want: true},
		{name: "missing submitted", submitted: nil, official: "A", want: false},
		{name: "missing official", submitted: "A", official: nil, want: false},
		{name: "both missing", submitted: nil, official: nil, want: false},
		{name: "non scalar", submitted: []string{"A"}, official: "A", want: false},
	}

	cmp := StringComparator{}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := cmp.Equal(match.QuestionWinner, tc.submitted, tc.official); got != tc.want {
				t.Fatalf("Equal(%v, %v)=%v, want %v", tc.submitted, tc.official, got, tc.want)
			}
		})
	}
}

func TestComparatorFunc_IsSwappable(t *testing.T) {
	t.Parallel()

	always := ComparatorFunc(func(match.QuestionType, any, any) bool { return true })
	scorer := NewScorer(always)

	m := sampleMatch()
	line := scorer.Score(m, predictionFor("u1", m.ID, match.Answers{}), match.Result{MatchID: m.ID, Answers: match.Answers{"winner": "A"}})
	if line.CorrectCount != 0 {
		t.Fatalf("unanswered questions must not match even with a permissive comparator, got %d", line.CorrectCount)
	}

	line = scorer.Score(m, predictionFor("u1", m.ID, match.Answers{"winner": "B", "score": "0-0"}), match.Result{MatchID: m.ID, Answers: match.Answers{"winner": "A", "score": "2-1"}})
	if line.PointsAwarded != 7 {
		t.Fatalf("expected custom comparator to award all points, got %d", line.PointsAwarded)
	}
}
