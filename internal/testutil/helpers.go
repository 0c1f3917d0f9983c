package testutil

import (
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
)

// DefaultSeed is used wherever a test needs a reproducible deal
const DefaultSeed int64 = 12345

func NewTestRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Seed returns a pointer to a copy of v, for the optional seed fields
func Seed(v int64) *int64 { return &v }

// TestLogger writes through t.Log, so output shows only for failed tests
func TestLogger(t testing.TB) zerolog.Logger {
	return zerolog.New(zerolog.NewTestWriter(t))
}
