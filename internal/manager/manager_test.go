package manager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credential-bridge/internal/cmerror"
	"credential-bridge/internal/platform"
	"credential-bridge/internal/session"
	"credential-bridge/internal/types"
)

type fakeStore struct {
	available bool

	savedPassword *types.PasswordCredential
	getCalls      int
	lastQuery     platform.Query
	getResult     *platform.Credential
	getErr        error
	clearErr      error
	cleared       bool
}

func (f *fakeStore) SavePassword(_ context.Context, username, password string) error {
	f.savedPassword = &types.PasswordCredential{Username: username, Password: password}
	return nil
}

func (f *fakeStore) SaveFederated(context.Context, types.FederatedCredential) error { return nil }

func (f *fakeStore) CreatePasskey(context.Context, string) (string, error) { return "", nil }

func (f *fakeStore) Get(_ context.Context, query platform.Query) (*platform.Credential, error) {
	f.getCalls++
	f.lastQuery = query
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.getResult != nil {
		return f.getResult, nil
	}
	if f.savedPassword != nil && containsKind(query.Kinds, types.KindPassword) {
		return &platform.Credential{Kind: types.KindPassword, Password: f.savedPassword}, nil
	}
	return nil, platform.ErrNoCredential
}

func (f *fakeStore) Clear(context.Context) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	f.cleared = true
	return nil
}

func (f *fakeStore) Available() bool { return f.available }

func containsKind(kinds []types.CredentialKind, kind types.CredentialKind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

type fakePasswordProvider struct {
	store   *fakeStore
	saveErr error
}

func (f *fakePasswordProvider) Name() string               { return "password" }
func (f *fakePasswordProvider) Kind() types.CredentialKind { return types.KindPassword }
func (f *fakePasswordProvider) Status() types.ProviderStatus {
	return types.ProviderStatus{Name: "password", Kind: types.KindPassword, Healthy: true, UpdatedAt: time.Now()}
}
func (f *fakePasswordProvider) Save(ctx context.Context, username, password string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.store.SavePassword(ctx, username, password)
}

type fakePasskeyProvider struct {
	response    string
	createErr   error
	lastRequest string
}

func (f *fakePasskeyProvider) Name() string               { return "passkey" }
func (f *fakePasskeyProvider) Kind() types.CredentialKind { return types.KindPublicKey }
func (f *fakePasskeyProvider) Status() types.ProviderStatus {
	return types.ProviderStatus{Name: "passkey", Kind: types.KindPublicKey, Healthy: true, UpdatedAt: time.Now()}
}
func (f *fakePasskeyProvider) Create(_ context.Context, requestJSON string) (string, error) {
	f.lastRequest = requestJSON
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.response, nil
}

type fakeFederatedProvider struct {
	signInCalls  int
	lastClientID string
	credential   types.FederatedCredential
	signInErr    error
	revokeErr    error
	revoked      bool
}

func (f *fakeFederatedProvider) Name() string               { return "federated" }
func (f *fakeFederatedProvider) Kind() types.CredentialKind { return types.KindFederated }
func (f *fakeFederatedProvider) Status() types.ProviderStatus {
	return types.ProviderStatus{Name: "federated", Kind: types.KindFederated, Healthy: true, UpdatedAt: time.Now()}
}
func (f *fakeFederatedProvider) SignIn(_ context.Context, clientID string, _ bool) (types.FederatedCredential, error) {
	f.signInCalls++
	f.lastClientID = clientID
	if f.signInErr != nil {
		return types.FederatedCredential{}, f.signInErr
	}
	return f.credential, nil
}
func (f *fakeFederatedProvider) Revoke(context.Context) error {
	if f.revokeErr != nil {
		return f.revokeErr
	}
	f.revoked = true
	return nil
}

type fixture struct {
	manager   *Manager
	store     *fakeStore
	passkey   *fakePasskeyProvider
	federated *fakeFederatedProvider
	sessions  *session.MemoryStore
}

func newFixture() *fixture {
	store := &fakeStore{available: true}
	passkeyProvider := &fakePasskeyProvider{response: `{"rawId":"abc"}`}
	federatedProvider := &fakeFederatedProvider{
		credential: types.FederatedCredential{SubjectID: "alice@example.com", IDToken: "token"},
	}
	sessions := session.NewMemoryStore()

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	m := New(store, &fakePasswordProvider{store: store}, passkeyProvider, federatedProvider, sessions, logger)
	return &fixture{manager: m, store: store, passkey: passkeyProvider, federated: federatedProvider, sessions: sessions}
}

func TestInit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	msg, err := f.manager.Init(ctx, true, "client-123")
	require.NoError(t, err)
	assert.NotEmpty(t, msg)

	state := f.manager.State()
	assert.True(t, state.Initialized)
	assert.True(t, state.PreferImmediateCredentials)
	assert.Equal(t, "client-123", state.FederatedClientID)
}

func TestInit_IdempotentOverwrite(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.manager.Init(ctx, true, "client-old")
	require.NoError(t, err)
	_, err = f.manager.Init(ctx, false, "client-new")
	require.NoError(t, err)

	// Only the most recent client id is active for subsequent sign-ins.
	_, err = f.manager.SignInWithFederatedProvider(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, "client-new", f.federated.lastClientID)
}

func TestInit_PlatformUnavailable(t *testing.T) {
	f := newFixture()
	f.store.available = false

	_, err := f.manager.Init(context.Background(), false, "")
	require.Error(t, err)
	assert.Equal(t, cmerror.CodeUnsupported, cmerror.CodeOf(err))
}

func TestSaveThenGetPasswordRoundTrip(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.manager.Init(ctx, true, "client-123")
	require.NoError(t, err)

	msg, err := f.manager.SavePasswordCredential(ctx, "alice", "p@sswordAB")
	require.NoError(t, err)
	assert.NotEmpty(t, msg)

	envelope, err := f.manager.GetCredentials(ctx, "", types.FetchOptions{PasswordEnabled: true})
	require.NoError(t, err)

	assert.Equal(t, types.KindPassword, envelope.Kind)
	require.NotNil(t, envelope.Password)
	assert.Equal(t, "alice", envelope.Password.Username)
	assert.Equal(t, "p@sswordAB", envelope.Password.Password)
	assert.Nil(t, envelope.Federated)
	assert.Nil(t, envelope.PublicKey)
	assert.NoError(t, envelope.Validate())
}

func TestSavePasswordCredential_WithoutInit(t *testing.T) {
	f := newFixture()

	// Password save does not depend on the federated configuration.
	_, err := f.manager.SavePasswordCredential(context.Background(), "alice", "p@sswordAB")
	assert.NoError(t, err)
}

func TestSavePasswordCredential_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.manager.SavePasswordCredential(ctx, "", "p@sswordAB")
	require.Error(t, err)
	assert.Equal(t, cmerror.CodeSaveCredential, cmerror.CodeOf(err))

	_, err = f.manager.SavePasswordCredential(ctx, "alice", "")
	require.Error(t, err)
	assert.Equal(t, cmerror.CodeSaveCredential, cmerror.CodeOf(err))
}

func TestSavePasswordCredential_AdapterFailure(t *testing.T) {
	store := &fakeStore{available: true}
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	m := New(store,
		&fakePasswordProvider{store: store, saveErr: errors.New("user cancelled the save dialog")},
		&fakePasskeyProvider{}, &fakeFederatedProvider{}, session.NewMemoryStore(), logger)

	_, err := m.SavePasswordCredential(context.Background(), "alice", "p@sswordAB")
	require.Error(t, err)

	cmErr, ok := cmerror.As(err)
	require.True(t, ok)
	assert.Equal(t, cmerror.CodeSaveCredential, cmErr.Code)
	assert.Equal(t, "user cancelled the save dialog", cmErr.Details)
}

func TestGetCredentials_AllDisabled(t *testing.T) {
	f := newFixture()

	_, err := f.manager.GetCredentials(context.Background(), "", types.FetchOptions{})
	require.Error(t, err)
	assert.Equal(t, cmerror.CodeGetCredentials, cmerror.CodeOf(err))

	// No adapter was invoked.
	assert.Zero(t, f.store.getCalls)
}

func TestGetCredentials_PassesPasskeyOptionsOnlyWhenEnabled(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.store.getResult = &platform.Credential{
		Kind:      types.KindPublicKey,
		PublicKey: &types.PublicKeyCredential{ID: "cred-1"},
	}

	_, err := f.manager.GetCredentials(ctx, `{"challenge":"YQ"}`, types.DefaultFetchOptions())
	require.NoError(t, err)
	assert.Equal(t, `{"challenge":"YQ"}`, f.store.lastQuery.PasskeyRequestJSON)

	f.store.getResult = nil
	f.store.savedPassword = &types.PasswordCredential{Username: "alice", Password: "x"}
	_, err = f.manager.GetCredentials(ctx, `{"challenge":"YQ"}`, types.FetchOptions{PasswordEnabled: true})
	require.NoError(t, err)
	assert.Empty(t, f.store.lastQuery.PasskeyRequestJSON)
}

func TestGetCredentials_EnvelopeInvariant(t *testing.T) {
	results := []*platform.Credential{
		{Kind: types.KindPassword, Password: &types.PasswordCredential{Username: "alice", Password: "x"}},
		{Kind: types.KindFederated, Federated: &types.FederatedCredential{SubjectID: "sub", IDToken: "tok"}},
		{Kind: types.KindPublicKey, PublicKey: &types.PublicKeyCredential{ID: "cred-1"}},
	}

	for _, result := range results {
		f := newFixture()
		f.store.getResult = result

		envelope, err := f.manager.GetCredentials(context.Background(), "", types.DefaultFetchOptions())
		require.NoError(t, err)
		assert.Equal(t, result.Kind, envelope.Kind)
		assert.NoError(t, envelope.Validate())
	}
}

func TestGetCredentials_PlatformFailurePreservesDetails(t *testing.T) {
	f := newFixture()
	f.store.getErr = platform.ErrNoCredential

	_, err := f.manager.GetCredentials(context.Background(), "", types.DefaultFetchOptions())
	require.Error(t, err)

	cmErr, ok := cmerror.As(err)
	require.True(t, ok)
	assert.Equal(t, cmerror.CodeGetCredentials, cmErr.Code)
	assert.Equal(t, "no matching credential", cmErr.Details)
}

func TestCreatePasskey_Passthrough(t *testing.T) {
	f := newFixture()

	response, err := f.manager.CreatePasskey(context.Background(), `{"challenge":"YQ","rp":{"id":"example.com"}}`)
	require.NoError(t, err)
	assert.Equal(t, `{"rawId":"abc"}`, response)
	assert.Equal(t, `{"challenge":"YQ","rp":{"id":"example.com"}}`, f.passkey.lastRequest)
}

func TestCreatePasskey_Failure(t *testing.T) {
	f := newFixture()
	f.passkey.createErr = errors.New("authenticator not present")

	_, err := f.manager.CreatePasskey(context.Background(), "{}")
	require.Error(t, err)
	assert.Equal(t, cmerror.CodeGetPasskey, cmerror.CodeOf(err))
}

func TestSignIn_RequiresConfiguration(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// Before init.
	_, err := f.manager.SignInWithFederatedProvider(ctx, true)
	require.Error(t, err)
	assert.Equal(t, cmerror.CodeConfiguration, cmerror.CodeOf(err))
	assert.Zero(t, f.federated.signInCalls)

	// Initialized but without a client id.
	_, err = f.manager.Init(ctx, false, "")
	require.NoError(t, err)
	_, err = f.manager.SignInWithFederatedProvider(ctx, true)
	require.Error(t, err)
	assert.Equal(t, cmerror.CodeConfiguration, cmerror.CodeOf(err))
	assert.Zero(t, f.federated.signInCalls)
}

func TestSignIn_Success(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.manager.Init(ctx, false, "client-123")
	require.NoError(t, err)

	cred, err := f.manager.SignInWithFederatedProvider(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", cred.SubjectID)

	record, err := f.sessions.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", record.SubjectID)
	assert.Equal(t, "client-123", record.ClientID)
}

func TestSignIn_ProviderFailure(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.federated.signInErr = errors.New("one-tap dismissed")

	_, err := f.manager.Init(ctx, false, "client-123")
	require.NoError(t, err)

	_, err = f.manager.SignInWithFederatedProvider(ctx, false)
	require.Error(t, err)

	cmErr, ok := cmerror.As(err)
	require.True(t, ok)
	assert.Equal(t, cmerror.CodeSignIn, cmErr.Code)
	assert.Equal(t, "one-tap dismissed", cmErr.Details)
}

func TestLogout(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.manager.Init(ctx, true, "client-123")
	require.NoError(t, err)
	_, err = f.manager.SignInWithFederatedProvider(ctx, true)
	require.NoError(t, err)

	msg, err := f.manager.Logout(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, msg)
	assert.True(t, f.store.cleared)
	assert.True(t, f.federated.revoked)

	_, err = f.sessions.Get(ctx)
	assert.ErrorIs(t, err, session.ErrNoSession)

	// Logout does not reset the configuration.
	state := f.manager.State()
	assert.True(t, state.Initialized)
	assert.Equal(t, "client-123", state.FederatedClientID)
}

func TestLogout_BestEffort(t *testing.T) {
	f := newFixture()
	f.store.clearErr = errors.New("store locked")

	_, err := f.manager.Logout(context.Background())
	require.Error(t, err)

	cmErr, ok := cmerror.As(err)
	require.True(t, ok)
	assert.Equal(t, cmerror.CodeLogout, cmErr.Code)
	assert.Equal(t, "store locked", cmErr.Details)

	// The federated revoke still ran despite the store failure.
	assert.True(t, f.federated.revoked)
}

func TestIsSupported_Pure(t *testing.T) {
	f := newFixture()

	first := f.manager.IsSupported()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, f.manager.IsSupported())
	}
	assert.True(t, first)

	f.store.available = false
	assert.False(t, f.manager.IsSupported())
}

func TestOperationsOnUnsupportedPlatformFailTyped(t *testing.T) {
	f := newFixture()
	f.store.available = false
	ctx := context.Background()

	_, err := f.manager.SavePasswordCredential(ctx, "alice", "p@sswordAB")
	assert.Equal(t, cmerror.CodeUnsupported, cmerror.CodeOf(err))

	_, err = f.manager.CreatePasskey(ctx, "{}")
	assert.Equal(t, cmerror.CodeUnsupported, cmerror.CodeOf(err))

	_, err = f.manager.GetCredentials(ctx, "", types.DefaultFetchOptions())
	assert.Equal(t, cmerror.CodeUnsupported, cmerror.CodeOf(err))
}

func TestEvents(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	var events []types.CredentialEvent
	f.manager.OnEvent(func(event types.CredentialEvent) {
		events = append(events, event)
	})

	_, err := f.manager.SavePasswordCredential(ctx, "alice", "p@sswordAB")
	require.NoError(t, err)
	_, err = f.manager.Logout(ctx)
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, types.OpCredentialSaved, events[0].Operation)
	assert.Equal(t, types.KindPassword, events[0].Kind)
	assert.Equal(t, types.OpLogout, events[1].Operation)
}
