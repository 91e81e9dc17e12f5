package service

import "errors"

var (
	// ErrNotFound is returned when a referenced test, user, challenge or
	// attempt does not exist. Confirmation-link flows swallow it into a
	// generic redirect so valid tokens cannot be probed.
	ErrNotFound = errors.New("resource not found")
	// ErrChallengeCooldown is returned when a student tries to start a
	// second challenge within 24 hours of their previous one.
	ErrChallengeCooldown = errors.New("you can challenge only 1 test in 24 hours")
	// ErrValidation is returned for malformed or inconsistent input.
	ErrValidation = errors.New("invalid request data")
)
