package domain

import "errors"

var (
	// ErrScenarioUnavailable is returned when the pool and filters yield no scenarios.
	ErrScenarioUnavailable = errors.New("no scenarios available for the requested filters")
	// ErrSessionNotFound is returned when a session id is unknown or has expired.
	ErrSessionNotFound = errors.New("game session not found")
	// ErrSessionNotActive is returned when answering a session that is already completed.
	ErrSessionNotActive = errors.New("game session is not active")
	// ErrStaleAnswer indicates the submitted scenario index no longer matches the session position.
	ErrStaleAnswer = errors.New("answer does not match the current scenario")
	// ErrGameNotFound indicates the requested game is not configured.
	ErrGameNotFound = errors.New("game not found")
	// ErrInvalidRequest indicates a malformed client request.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrGenerationTimeout is returned by generators that exceed their deadline.
	ErrGenerationTimeout = errors.New("scenario generation timed out")
	// ErrMalformedGeneratedOutput is returned when generated output cannot be turned into scenarios.
	ErrMalformedGeneratedOutput = errors.New("malformed generated output")
)
