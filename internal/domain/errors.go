package domain

import "errors"

var (
	// ErrEmptyQuery signals a blank search query.
	ErrEmptyQuery = errors.New("empty search query")
	// ErrAIUnavailable signals that the AI upstream could not be reached
	// or refused the request: missing key, transport error, timeout,
	// non-2xx status, or an unparseable transport body.
	ErrAIUnavailable = errors.New("ai upstream unavailable")
	// ErrAIMalformed signals that the AI replied but no usable JSON
	// object could be extracted from its output.
	ErrAIMalformed = errors.New("malformed ai response")
	// ErrSearchUnavailable signals that the AI path failed and fallback
	// search is disabled.
	ErrSearchUnavailable = errors.New("search unavailable")
	// ErrCatalogUnavailable signals a catalog query failure. Unlike
	// ErrSearchUnavailable this is a server-side fault, not a degraded
	// AI path.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrNotFound signals a missing catalog resource.
	ErrNotFound = errors.New("not found")
)
