// Package failure defines the error classes shared by the upstream clients
// and maps wrapped errors onto result reasons.
package failure

import (
	"context"
	"errors"

	"github.com/UnknownOlympus/compass/internal/models"
)

// Error classes. Upstream clients wrap these so callers can use errors.Is.
var (
	ErrNoMatch      = errors.New("no match")
	ErrInvalidInput = errors.New("invalid input")
	ErrTransport    = errors.New("upstream transport error")
	ErrMalformed    = errors.New("malformed upstream response")
)

// Classify returns the reason matching the error class found in err's chain.
func Classify(err error) models.Reason {
	switch {
	case err == nil:
		return models.ReasonOK
	case errors.Is(err, ErrNoMatch):
		return models.ReasonNoMatch
	case errors.Is(err, ErrInvalidInput):
		return models.ReasonInvalidInput
	case errors.Is(err, ErrMalformed):
		return models.ReasonMalformed
	case errors.Is(err, ErrTransport),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return models.ReasonTransport
	default:
		return models.ReasonUnknown
	}
}
