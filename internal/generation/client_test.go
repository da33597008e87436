package generation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorWrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := &Error{Err: cause}

	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, cause)
}

func TestErrorMatchesWithAs(t *testing.T) {
	var genErr *Error
	wrapped := error(&Error{Err: errors.New("timeout")})
	assert.True(t, errors.As(wrapped, &genErr))
}
