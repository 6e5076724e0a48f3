// Package sentimenttest provides an in-memory sentiment.Oracle for tests.
package sentimenttest

import (
	"context"
	"errors"
)

// FakeOracle returns a scripted sequence of scores/errors, one per call.
// When the script is exhausted it repeats the last entry.
type FakeOracle struct {
	NameValue string
	Scores    []float64
	Errs      []error
	calls     int
}

func (f *FakeOracle) Name() string {
	if f.NameValue == "" {
		return "fake_primary"
	}
	return f.NameValue
}

func (f *FakeOracle) Analyze(ctx context.Context, text string) (float64, error) {
	i := f.calls
	if i >= len(f.Scores) && i >= len(f.Errs) {
		i = max(len(f.Scores), len(f.Errs)) - 1
	}
	f.calls++
	if i < 0 {
		return 0, errors.New("fake oracle not configured")
	}
	var err error
	if i < len(f.Errs) {
		err = f.Errs[i]
	}
	var score float64
	if i < len(f.Scores) {
		score = f.Scores[i]
	}
	return score, err
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
