package token

import "errors"

var (
	// ErrInvalidPayload is returned when a unified payload misses required fields.
	ErrInvalidPayload = errors.New("invalid unified payload")

	// ErrNoSecret is returned when a parser or signer is built without a key.
	ErrNoSecret = errors.New("signing secret is empty")

	// ErrMissingSubject is returned for structured claims with no usable subject.
	ErrMissingSubject = errors.New("token carries no subject")
)
