package domain

import "errors"

var (
	// ErrNotFound is the generic "no matching document" error.
	ErrNotFound = errors.New("item not found")

	// ErrUserNotFound and ErrRecommendationNotFound let callers distinguish
	// which half of an embedded-array operation failed to match.
	ErrUserNotFound           = errors.New("user not found")
	ErrRecommendationNotFound = errors.New("recommendation not found")

	// ErrInvalidID marks a malformed opaque document identifier.
	ErrInvalidID = errors.New("invalid identifier")

	// ErrValidation wraps all request-shape validation failures.
	ErrValidation = errors.New("invalid data")

	// ErrUpstream wraps error payloads returned by a search provider.
	ErrUpstream = errors.New("upstream provider error")
)
