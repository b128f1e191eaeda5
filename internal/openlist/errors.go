package openlist

import "errors"

var (
	// ErrAuth is returned when login is rejected.
	ErrAuth = errors.New("openlist authentication failed")

	// ErrUnavailable is returned on transport failures and non-2xx HTTP replies.
	ErrUnavailable = errors.New("openlist unavailable")

	// ErrRequest is returned when the API answers with a non-200 body code.
	ErrRequest = errors.New("openlist request rejected")
)
