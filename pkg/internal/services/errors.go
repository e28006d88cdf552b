package services

import (
	"errors"

	"gorm.io/gorm"
)

// The typed errors the API boundary maps onto HTTP statuses. Messages are the
// user-facing ones; nothing from the storage engine is wrapped into them.
var (
	ErrValidation    = errors.New("invalid request")
	ErrPollNotFound  = errors.New("poll not found")
	ErrInvalidOption = errors.New("poll does not have an option like that")
	ErrAlreadyVoted  = errors.New("you have already voted on this poll")
	ErrAuthRequired  = errors.New("this poll requires authentication to vote")
	ErrPollClosed    = errors.New("this poll is not currently accepting votes")
	ErrPollExpired   = errors.New("this poll has expired")
)

// Transient storage failures on read paths get one retry before they surface
// as a 500. Deterministic outcomes are never retried.
func withRetry(op func() error) error {
	err := op()
	if err == nil || errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	return op()
}
