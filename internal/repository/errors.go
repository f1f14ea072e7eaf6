// Package repository defines error types that are reused across multiple
// repositories. These sentinel values let higher layers such as services
// and handlers distinguish between failure scenarios without ever seeing a
// driver error: the retry layer has already absorbed those.
package repository

import "errors"

// ErrUnavailable is returned when an operation failed after exhausting the
// retry layer's attempts (or the pool was never initialized). Handlers
// should translate this into a "temporarily unavailable, try again later"
// response; it never means the request itself was wrong.
var ErrUnavailable = errors.New("store temporarily unavailable")

// ErrNotFound is returned when a query matched no row. For reviewer actions
// this usually means the record was already resolved by a concurrent action
// and should be reported as "already handled" rather than as an error.
var ErrNotFound = errors.New("record not found")
