package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialEnvelope_Validate(t *testing.T) {
	tests := []struct {
		name     string
		envelope CredentialEnvelope
		wantErr  bool
	}{
		{
			name: "password envelope",
			envelope: CredentialEnvelope{
				Kind:     KindPassword,
				Password: &PasswordCredential{Username: "alice", Password: "p@sswordAB"},
			},
		},
		{
			name: "federated envelope",
			envelope: CredentialEnvelope{
				Kind:      KindFederated,
				Federated: &FederatedCredential{SubjectID: "sub-1", IDToken: "token"},
			},
		},
		{
			name: "public key envelope",
			envelope: CredentialEnvelope{
				Kind:      KindPublicKey,
				PublicKey: &PublicKeyCredential{ID: "cred-1"},
			},
		},
		{
			name:     "empty envelope",
			envelope: CredentialEnvelope{Kind: KindPassword},
			wantErr:  true,
		},
		{
			name: "two variants populated",
			envelope: CredentialEnvelope{
				Kind:      KindPassword,
				Password:  &PasswordCredential{Username: "alice", Password: "x"},
				Federated: &FederatedCredential{SubjectID: "sub-1", IDToken: "token"},
			},
			wantErr: true,
		},
		{
			name: "kind mismatch",
			envelope: CredentialEnvelope{
				Kind:     KindFederated,
				Password: &PasswordCredential{Username: "alice", Password: "x"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.envelope.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFetchOptions_EnabledKinds(t *testing.T) {
	all := DefaultFetchOptions()
	require.Equal(t, []CredentialKind{KindPassword, KindPublicKey, KindFederated}, all.EnabledKinds())

	passwordOnly := FetchOptions{PasswordEnabled: true}
	require.Equal(t, []CredentialKind{KindPassword}, passwordOnly.EnabledKinds())

	none := FetchOptions{}
	assert.Empty(t, none.EnabledKinds())
}

func TestCredentialKind_Valid(t *testing.T) {
	assert.True(t, KindPassword.Valid())
	assert.True(t, KindFederated.Valid())
	assert.True(t, KindPublicKey.Valid())
	assert.False(t, CredentialKind("SomethingElse").Valid())
}
