package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	err := New(CodeNotFound, "credential not found")
	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(err, CodeConflict))
	assert.False(t, HasCode(errors.New("plain"), CodeNotFound))
}

func TestWrapPreservesCode(t *testing.T) {
	inner := New(CodeConflict, "already issued")
	wrapped := Wrap(inner, CodeInternal, "issuance failed")

	assert.True(t, HasCode(wrapped, CodeConflict), "wrapping must not overwrite the original code")
	assert.Equal(t, "issuance failed", wrapped.Error())
	assert.True(t, errors.Is(wrapped, inner))
}

func TestWrapPlainError(t *testing.T) {
	inner := fmt.Errorf("dial tcp: connection refused")
	wrapped := Wrap(inner, CodeUnavailable, "issuance service unreachable")

	assert.True(t, HasCode(wrapped, CodeUnavailable))
	assert.True(t, errors.Is(wrapped, inner))
}

func TestErrorMessageFallsBackToCode(t *testing.T) {
	err := &Error{Code: CodeInternal}
	assert.Equal(t, string(CodeInternal), err.Error())
}
