package id

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator creates opaque IDs suitable for external references.
type Generator interface {
	NewID() (string, error)
}

type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() (string, error) {
	value, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return value.String(), nil
}

const inviteAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const InviteCodeLength = 8

// InviteCode returns a short code without look-alike characters (0/O, 1/I).
func InviteCode(gen Generator) (string, error) {
	raw, err := gen.NewID()
	if err != nil {
		return "", err
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse generated id: %w", err)
	}
	code := make([]byte, InviteCodeLength)
	for i := range code {
		code[i] = inviteAlphabet[int(parsed[i])%len(inviteAlphabet)]
	}
	return string(code), nil
}
