package utils

import "github.com/google/uuid"

// UUIDGenerator produces trace ids and sync session keys.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Generate returns a time-ordered UUIDv7, falling back to a random v4.
func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}

// NewSessionKey returns a fresh key identifying one sync attempt.
func NewSessionKey() string {
	return NewUUIDGenerator().Generate()
}
