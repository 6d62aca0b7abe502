package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	notFound := New(NotFound, "post not found")
	wrapped := fmt.Errorf("load: %w", notFound)

	assert.Equal(t, NotFound, KindOf(notFound))
	assert.Equal(t, NotFound, KindOf(wrapped))
	assert.Equal(t, Internal, KindOf(errors.New("boom")))
	assert.True(t, IsKind(wrapped, NotFound))
	assert.False(t, IsKind(nil, NotFound))
}

func TestSentinelMatching(t *testing.T) {
	sentinel := New(InvalidInput, "cannot follow self")
	err := fmt.Errorf("follow: %w", New(InvalidInput, "cannot follow self"))

	assert.ErrorIs(t, err, sentinel)
	assert.NotErrorIs(t, err, New(InvalidInput, "other"))
}

func TestWrapAndMessage(t *testing.T) {
	cause := errors.New("pq: connection refused")
	err := Wrap(Internal, "load account", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "", Message(err), "internal detail must not leak")
	assert.Equal(t, "email is required", Message(New(InvalidInput, "email is required")))
	assert.Equal(t, "not_found", NotFound.String())
}
