// Package services holds the check-in business logic: turn routing, the
// onboarding state machine, atomic turn persistence, alert triage and the
// periodic rollup. This file centralizes the service-level error values so
// handlers can map them to HTTP results consistently.
package services

import "errors"

var (
	// ErrProfileNotFound indicates the caller has no profile. It is fatal for
	// the turn.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrEmptyMessage is returned when a turn carries no text.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrMessageTooLong is returned when a turn exceeds the configured rune
	// limit.
	ErrMessageTooLong = errors.New("message too long")

	// ErrPersistence wraps a failed turn commit. Nothing from the turn was
	// stored.
	ErrPersistence = errors.New("turn could not be saved")

	// ErrForbidden is returned by read operations when the actor may not see
	// the requested club or team.
	ErrForbidden = errors.New("not allowed for this club or team")
)
