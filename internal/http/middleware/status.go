package middleware

import (
	"errors"

	"docvault/internal/apperr"
)

// statusOf maps a classified application error to its response status.
func statusOf(err error) (int, bool) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae.Kind.Status(), true
	}
	return 0, false
}
