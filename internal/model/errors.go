package model

import "errors"

// Common errors used across the application
var (
	// Account errors
	ErrAccountNotFound = errors.New("account not found")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrEmailTaken      = errors.New("email already taken")
	ErrInvalidRank     = errors.New("invalid rank")

	// Quest errors
	ErrQuestProgressNotFound = errors.New("quest progress not found")

	// Container errors
	ErrContainerNotFound    = errors.New("container not found")
	ErrUnknownContainerKind = errors.New("unknown container kind")
)
