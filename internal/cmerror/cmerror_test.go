package cmerror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	err := New(CodeConfiguration, "federated client id is not configured")
	assert.Equal(t, "CONFIGURATION_ERROR: federated client id is not configured", err.Error())

	wrapped := Wrap(CodeGetCredentials, "failed to retrieve credentials", errors.New("no matching credential"))
	assert.Equal(t, "GET_CREDENTIALS_ERROR: failed to retrieve credentials (no matching credential)", wrapped.Error())
	assert.Equal(t, "no matching credential", wrapped.Details)
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("user cancelled the credential prompt")
	err := Wrap(CodeSaveCredential, "failed to save password credential", cause)

	require.ErrorIs(t, err, cause)
}

func TestAs(t *testing.T) {
	err := New(CodeLogout, "failed to logout")
	chained := fmt.Errorf("handler: %w", err)

	cmErr, ok := As(chained)
	require.True(t, ok)
	assert.Equal(t, CodeLogout, cmErr.Code)

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeSignIn, CodeOf(New(CodeSignIn, "sign in failed")))
	assert.Equal(t, Code(""), CodeOf(errors.New("plain")))
	assert.Equal(t, Code(""), CodeOf(nil))
}
