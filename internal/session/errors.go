package session

import "errors"

var (
	// ErrNotFound covers both unknown session ids and sessions owned by a
	// different user.
	ErrNotFound = errors.New("session not found")
	// ErrUnauthorized means no user identity was bound to the request.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrEmptyAnswer rejects a blank, non-audio answer.
	ErrEmptyAnswer = errors.New("answer required")
	// ErrSessionComplete means the position has passed the last question.
	ErrSessionComplete = errors.New("session complete")
	// ErrAlreadyCompleted rejects operations on a finished session,
	// including a second finish call.
	ErrAlreadyCompleted = errors.New("session already completed")
	// ErrActiveSession rejects starting a second session in the same mode
	// while one is still in progress.
	ErrActiveSession = errors.New("active session exists for this mode")
	// ErrWrongQuestion rejects a test answer for any question other than the
	// one at the current position.
	ErrWrongQuestion = errors.New("question does not match current position")
	// ErrConflict means the position advance raced another write and was not
	// applied.
	ErrConflict = errors.New("session state changed")
)
