package domain

import "errors"

var (
	// ErrUpstreamStatus wraps non-2xx responses from an upstream feed.
	ErrUpstreamStatus = errors.New("upstream status")

	// ErrMalformedResponse wraps bodies that do not have the expected shape,
	// including HTML error pages served with a 200 status.
	ErrMalformedResponse = errors.New("malformed response")
)
