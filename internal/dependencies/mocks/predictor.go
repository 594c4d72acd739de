package mocks

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// MockPredictor returns queued results in call order, then falls back to
// echoing the current profit
type MockPredictor struct {
	mu      sync.Mutex
	results []predictorResult
	calls   int
}

type predictorResult struct {
	value decimal.Decimal
	err   error
}

// NewMockPredictor creates a new MockPredictor
func NewMockPredictor() *MockPredictor {
	return &MockPredictor{}
}

func (p *MockPredictor) PredictFinalProfit(ctx context.Context, buyIn, currentProfit decimal.Decimal) (decimal.Decimal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if len(p.results) == 0 {
		return currentProfit, nil
	}
	r := p.results[0]
	p.results = p.results[1:]
	return r.value, r.err
}

// QueueResult adds a result for the next call
func (p *MockPredictor) QueueResult(value decimal.Decimal, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = append(p.results, predictorResult{value: value, err: err})
}

// Calls returns the number of predictions made
func (p *MockPredictor) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
