package mocks

import (
	"fmt"

	"github.com/mcoot/trackmyhand/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing
type MockRandom struct {
	// UUIDResults is a queue of results to return from UUID
	UUIDResults []string
	uuidIndex   int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// UUID returns the next queued result. Once the queue is exhausted it
// returns deterministic sequential ids.
func (r *MockRandom) UUID() string {
	r.uuidIndex++
	if r.uuidIndex <= len(r.UUIDResults) {
		return r.UUIDResults[r.uuidIndex-1]
	}
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", r.uuidIndex)
}

// QueueUUID adds values to the UUID result queue
func (r *MockRandom) QueueUUID(values ...string) {
	r.UUIDResults = append(r.UUIDResults, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.UUIDResults = nil
	r.uuidIndex = 0
}
