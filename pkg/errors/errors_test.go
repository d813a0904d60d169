package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapAndInspect(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(CodeNotFound, "portfolio not found", cause)

	require.True(t, IsCode(err, CodeNotFound))
	require.False(t, IsCode(err, CodeForbidden))
	require.Equal(t, CodeNotFound, CodeOf(err))
	require.Equal(t, "portfolio not found", MessageOf(err))
	require.Equal(t, "portfolio not found: boom", err.Error())
	require.ErrorIs(t, err, cause)
}

func TestCodeOfWrappedChain(t *testing.T) {
	err := fmt.Errorf("handler: %w", Wrap(CodeEmailExists, "email already registered", nil))
	require.Equal(t, CodeEmailExists, CodeOf(err))
	require.Equal(t, "email already registered", MessageOf(err))

	require.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
	require.Equal(t, "plain", MessageOf(errors.New("plain")))
}
