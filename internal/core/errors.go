package core

import "errors"

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrEmptyMessage         = errors.New("message content cannot be empty")
	ErrRequestInFlight      = errors.New("a reply is already being generated for this conversation")

	ErrMissingField       = errors.New("missing required field")
	ErrRegistrationFailed = errors.New("failed to create account")
)
