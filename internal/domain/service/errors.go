package service

import "fmt"

// InvalidInputError indicates malformed or out-of-range assessment input.
// The request is rejected outright; no partial scoring happens.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input %s: %s", e.Field, e.Reason)
}

// ModelUnavailableError indicates the default probability model artifact is
// missing or corrupt. Fatal for the ML signal.
type ModelUnavailableError struct {
	Cause error
}

func (e *ModelUnavailableError) Error() string {
	return fmt.Sprintf("default model unavailable: %v", e.Cause)
}

func (e *ModelUnavailableError) Unwrap() error {
	return e.Cause
}

// ScoringUnavailableError indicates no signal at all could be produced for
// the request. Since the ML signal is required, this is raised whenever it
// is absent.
type ScoringUnavailableError struct {
	Reason string
}

func (e *ScoringUnavailableError) Error() string {
	return fmt.Sprintf("scoring unavailable: %s", e.Reason)
}

// CollaboratorError indicates a recoverable failure from an external AI
// collaborator (timeout, rate limit, malformed response). It never surfaces
// to the caller: the affected signal is dropped and fusion proceeds with
// rebalanced weights.
type CollaboratorError struct {
	Collaborator string
	Cause        error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s collaborator failed: %v", e.Collaborator, e.Cause)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Cause
}
