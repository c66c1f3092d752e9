package federated

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credential-bridge/internal/identity"
	"credential-bridge/internal/platform"
	"credential-bridge/internal/types"
)

type fakeProvider struct {
	cred       types.FederatedCredential
	signInErr  error
	revokeErr  error
	revokedIDs []string
}

func (f *fakeProvider) SignIn(_ context.Context, clientID string, _ bool) (types.FederatedCredential, error) {
	if f.signInErr != nil {
		return types.FederatedCredential{}, f.signInErr
	}
	return f.cred, nil
}

func (f *fakeProvider) Revoke(_ context.Context, subjectID string) error {
	if f.revokeErr != nil {
		return f.revokeErr
	}
	f.revokedIDs = append(f.revokedIDs, subjectID)
	return nil
}

type fakeStore struct {
	saved   []types.FederatedCredential
	saveErr error
}

func (f *fakeStore) SavePassword(context.Context, string, string) error { return nil }
func (f *fakeStore) SaveFederated(_ context.Context, cred types.FederatedCredential) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, cred)
	return nil
}
func (f *fakeStore) CreatePasskey(context.Context, string) (string, error) { return "", nil }
func (f *fakeStore) Get(context.Context, platform.Query) (*platform.Credential, error) {
	return nil, platform.ErrNoCredential
}
func (f *fakeStore) Clear(context.Context) error { return nil }
func (f *fakeStore) Available() bool             { return true }

func testLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger.WithField("component", "test")
}

func mintToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("key"))
	require.NoError(t, err)
	return signed
}

func TestSignIn_PersistsCredential(t *testing.T) {
	provider := &fakeProvider{cred: types.FederatedCredential{
		SubjectID: "alice@example.com",
		IDToken:   mintToken(t, jwt.MapClaims{"sub": "alice@example.com"}),
	}}
	store := &fakeStore{}
	adapter := New(provider, store, testLogger())

	cred, err := adapter.SignIn(context.Background(), "client-123", true)
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", cred.SubjectID)
	require.Len(t, store.saved, 1)
	assert.Equal(t, cred, store.saved[0])
}

func TestSignIn_EnrichesFromClaims(t *testing.T) {
	token := mintToken(t, jwt.MapClaims{
		"sub":         "alice@example.com",
		"name":        "Alice Example",
		"given_name":  "Alice",
		"family_name": "Example",
		"picture":     "https://example.com/alice.png",
	})
	// Provider returns only the token; the adapter fills the profile.
	provider := &fakeProvider{cred: types.FederatedCredential{IDToken: token}}
	adapter := New(provider, &fakeStore{}, testLogger())

	cred, err := adapter.SignIn(context.Background(), "client-123", false)
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", cred.SubjectID)
	assert.Equal(t, "Alice Example", cred.DisplayName)
	assert.Equal(t, "Alice", cred.GivenName)
	assert.Equal(t, "Example", cred.FamilyName)
	assert.Equal(t, "https://example.com/alice.png", cred.ProfilePictureURI)
}

func TestSignIn_ProviderFailure(t *testing.T) {
	provider := &fakeProvider{signInErr: identity.ErrSignInCancelled}
	store := &fakeStore{}
	adapter := New(provider, store, testLogger())

	_, err := adapter.SignIn(context.Background(), "client-123", true)
	assert.ErrorIs(t, err, identity.ErrSignInCancelled)
	assert.Empty(t, store.saved)
}

func TestSignIn_StoreFailure(t *testing.T) {
	provider := &fakeProvider{cred: types.FederatedCredential{SubjectID: "sub", IDToken: "x"}}
	store := &fakeStore{saveErr: errors.New("disk full")}
	adapter := New(provider, store, testLogger())

	_, err := adapter.SignIn(context.Background(), "client-123", true)
	assert.Error(t, err)
}

func TestRevoke(t *testing.T) {
	provider := &fakeProvider{cred: types.FederatedCredential{
		SubjectID: "alice@example.com",
		IDToken:   mintToken(t, jwt.MapClaims{"sub": "alice@example.com"}),
	}}
	adapter := New(provider, &fakeStore{}, testLogger())
	ctx := context.Background()

	// No active session: revoke is a no-op.
	require.NoError(t, adapter.Revoke(ctx))
	assert.Empty(t, provider.revokedIDs)

	_, err := adapter.SignIn(ctx, "client-123", true)
	require.NoError(t, err)

	require.NoError(t, adapter.Revoke(ctx))
	assert.Equal(t, []string{"alice@example.com"}, provider.revokedIDs)

	// Second revoke after the session ended is again a no-op.
	require.NoError(t, adapter.Revoke(ctx))
	assert.Len(t, provider.revokedIDs, 1)
}
