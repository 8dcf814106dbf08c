package scoring

import "github.com/riskibarqy/prediction-league/internal/domain/match"

// Comparator decides whether a submitted answer equals the official one.
type Comparator interface {
	Equal(questionType match.QuestionType, submitted, official any) bool
}

type ComparatorFunc func(questionType match.QuestionType, submitted, official any) bool

func (f ComparatorFunc) Equal(questionType match.QuestionType, submitted, official any) bool {
	return f(questionType, submitted, official)
}

// StringComparator compares canonical text forms byte for byte, for every question type.
// Official 2 and submitted "2" are equal; "2-1" and "2 - 1" are not.
type StringComparator struct{}

func (StringComparator) Equal(_ match.QuestionType, submitted, official any) bool {
	left, ok := match.CanonicalAnswer(submitted)
	if !ok {
		return false
	}
	right, ok := match.CanonicalAnswer(official)
	if !ok {
		return false
	}
	return left == right
}

func DefaultComparator() Comparator {
	return StringComparator{}
}
