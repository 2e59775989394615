package services

import "errors"

// Wager-level rejections happen before any balance mutation and are
// recoverable by the caller correcting input. ErrEngineFault is the one
// exception: it surfaces after a rolled-back debit and is retryable.
var (
	ErrValidation        = errors.New("validation failed")
	ErrGameDisabled      = errors.New("game is disabled")
	ErrStakeOutOfRange   = errors.New("stake outside bet limits")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrEngineFault       = errors.New("engine fault")

	ErrRoundNotFound = errors.New("round not found")
	ErrRoundFinished = errors.New("round already finished")
)
