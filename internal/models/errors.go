package models

import (
	"errors"
	"fmt"
)

// Custom errors
var (
	ErrNotFound          = errors.New("record not found")
	ErrNoActiveBet       = errors.New("no active bet found")
	ErrMatchNotFound     = errors.New("match not found")
	ErrInvalidID         = errors.New("invalid ID format")
	ErrInsufficientFunds = errors.New("stake exceeds available bankroll")
)

// InvalidOddsError indicates odds that cannot form a valid market price
type InvalidOddsError struct {
	Reason string
}

func (e *InvalidOddsError) Error() string {
	return fmt.Sprintf("invalid odds: %s", e.Reason)
}

// InvalidProbabilityError indicates a probability outside [0,1] or a
// distribution that does not sum to 1 within tolerance
type InvalidProbabilityError struct {
	Prob float64
}

func (e *InvalidProbabilityError) Error() string {
	return fmt.Sprintf("invalid probability: %v, must be between 0.0 and 1.0", e.Prob)
}

// InvalidStakeError indicates a non-positive or unaffordable stake
type InvalidStakeError struct {
	Amount string
}

func (e *InvalidStakeError) Error() string {
	return fmt.Sprintf("invalid stake amount: %s", e.Amount)
}
