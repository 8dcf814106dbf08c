package id

import (
	"regexp"
	"testing"

	"github.com/google/uuid"
)

func TestUUIDGenerator(t *testing.T) {
	t.Parallel()

	gen := NewUUIDGenerator()
	first, err := gen.NewID()
	if err != nil {
		t.Fatalf("NewID error: %v", err)
	}
	second, _ := gen.NewID()
	if first == second {
		t.Fatalf("expected unique ids")
	}
	if _, err := uuid.Parse(first); err != nil {
		t.Fatalf("expected uuid, got %q: %v", first, err)
	}
}

func TestInviteCode(t *testing.T) {
	t.Parallel()

	code, err := InviteCode(NewUUIDGenerator())
	if err != nil {
		t.Fatalf("InviteCode error: %v", err)
	}
	if !regexp.MustCompile(`^[A-HJ-NP-Z2-9]{8}$`).MatchString(code) {
		t.Fatalf("unexpected invite code %q", code)
	}
}
