package random

import "github.com/google/uuid"

// Random provides random identifiers that can be mocked for testing
type Random interface {
	// UUID returns a new random UUID string
	UUID() string
}

// UUIDRandom implements Random using google/uuid
type UUIDRandom struct{}

// New creates a new UUIDRandom
func New() *UUIDRandom {
	return &UUIDRandom{}
}

// UUID returns a version 4 UUID in canonical form
func (r *UUIDRandom) UUID() string {
	return uuid.NewString()
}
