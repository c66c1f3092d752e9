// Package manager implements the credential orchestrator. It holds the
// process lifecycle state, decides which provider adapters serve a request,
// shapes provider results into credential envelopes, and normalizes every
// failure into the error taxonomy before it crosses the public surface.
package manager

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"credential-bridge/internal/cmerror"
	"credential-bridge/internal/platform"
	"credential-bridge/internal/providers"
	"credential-bridge/internal/session"
	"credential-bridge/internal/types"
)

// State is the orchestrator's lifecycle state. It is written only by Init
// and read by every subsequent call; nothing resets it short of a process
// restart.
type State struct {
	Initialized                bool
	PreferImmediateCredentials bool
	FederatedClientID          string
}

// Manager is the credential orchestrator
type Manager struct {
	store     platform.Store
	password  providers.PasswordProvider
	passkey   providers.PasskeyProvider
	federated providers.FederatedProvider
	sessions  session.Store
	logger    *logrus.Logger

	mu      sync.RWMutex
	state   State
	onEvent types.EventCallback
}

// New creates a credential orchestrator over the given providers
func New(store platform.Store, passwordProvider providers.PasswordProvider, passkeyProvider providers.PasskeyProvider, federatedProvider providers.FederatedProvider, sessions session.Store, logger *logrus.Logger) *Manager {
	return &Manager{
		store:     store,
		password:  passwordProvider,
		passkey:   passkeyProvider,
		federated: federatedProvider,
		sessions:  sessions,
		logger:    logger,
	}
}

// OnEvent registers a callback invoked after every completed operation
func (m *Manager) OnEvent(callback types.EventCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEvent = callback
}

// IsSupported reports whether the platform credential store capability is
// present. It is a pure pre-flight predicate; the other operations are not
// gated on it and instead fail typed when the capability is missing.
func (m *Manager) IsSupported() bool {
	return m.store != nil && m.store.Available()
}

// State returns a snapshot of the orchestrator state
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Statuses reports the health of every provider adapter
func (m *Manager) Statuses() []types.ProviderStatus {
	return []types.ProviderStatus{
		m.password.Status(),
		m.passkey.Status(),
		m.federated.Status(),
	}
}

// Init stores the orchestrator configuration. It is idempotent: calling it
// again overwrites the previous configuration. No credential I/O happens
// here; the configuration is consumed lazily by later calls.
func (m *Manager) Init(ctx context.Context, preferImmediate bool, federatedClientID string) (string, error) {
	if !m.IsSupported() {
		return "", cmerror.New(cmerror.CodeUnsupported, "platform credential store is not available")
	}

	m.mu.Lock()
	m.state = State{
		Initialized:                true,
		PreferImmediateCredentials: preferImmediate,
		FederatedClientID:          federatedClientID,
	}
	m.mu.Unlock()

	m.logger.WithFields(logrus.Fields{
		"prefer_immediate":     preferImmediate,
		"federated_configured": federatedClientID != "",
	}).Info("Credential manager initialized")

	return "Credential manager initialized", nil
}

// SavePasswordCredential persists one password credential through the
// password provider. It does not require Init: password saves do not depend
// on the federated configuration.
func (m *Manager) SavePasswordCredential(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", cmerror.New(cmerror.CodeSaveCredential, "username and password must be non-empty")
	}
	if !m.IsSupported() {
		return "", cmerror.New(cmerror.CodeUnsupported, "platform credential store is not available")
	}

	if err := m.password.Save(ctx, username, password); err != nil {
		return "", cmerror.Wrap(cmerror.CodeSaveCredential, "failed to save password credential", err)
	}

	m.emit(types.OpCredentialSaved, types.KindPassword, username)
	return "Credentials saved successfully", nil
}

// CreatePasskey forwards the serialized creation request to the passkey
// provider and returns its serialized response unchanged. The request is
// never parsed here, and fetch options play no role: this call targets the
// passkey provider exclusively.
func (m *Manager) CreatePasskey(ctx context.Context, requestJSON string) (string, error) {
	if !m.IsSupported() {
		return "", cmerror.New(cmerror.CodeUnsupported, "platform credential store is not available")
	}

	response, err := m.passkey.Create(ctx, requestJSON)
	if err != nil {
		return "", cmerror.Wrap(cmerror.CodeGetPasskey, "failed to create passkey credential", err)
	}

	m.emit(types.OpPasskeyCreated, types.KindPublicKey, "")
	return response, nil
}

// GetCredentials issues one combined query over the enabled credential kinds
// and shapes the discriminated result into an envelope. The combined query is
// a single operation: a failure is terminal, never retried per provider.
func (m *Manager) GetCredentials(ctx context.Context, passkeyOptions string, opts types.FetchOptions) (*types.CredentialEnvelope, error) {
	kinds := opts.EnabledKinds()
	if len(kinds) == 0 {
		return nil, cmerror.New(cmerror.CodeGetCredentials, "no credential kinds enabled in fetch options")
	}
	if !m.IsSupported() {
		return nil, cmerror.New(cmerror.CodeUnsupported, "platform credential store is not available")
	}

	m.mu.RLock()
	preferImmediate := m.state.PreferImmediateCredentials
	m.mu.RUnlock()

	query := platform.Query{
		Kinds:           kinds,
		PreferImmediate: preferImmediate,
	}
	if opts.PasskeyEnabled {
		query.PasskeyRequestJSON = passkeyOptions
	}

	credential, err := m.store.Get(ctx, query)
	if err != nil {
		return nil, cmerror.Wrap(cmerror.CodeGetCredentials, "failed to retrieve credentials", err)
	}

	envelope, err := buildEnvelope(credential)
	if err != nil {
		return nil, err
	}

	m.emit(types.OpCredentialRetrieved, envelope.Kind, "")
	return envelope, nil
}

// buildEnvelope maps the platform's discriminated credential into the
// envelope, populating exactly one variant
func buildEnvelope(credential *platform.Credential) (*types.CredentialEnvelope, error) {
	envelope := &types.CredentialEnvelope{Kind: credential.Kind}

	switch credential.Kind {
	case types.KindPassword:
		envelope.Password = credential.Password
	case types.KindFederated:
		envelope.Federated = credential.Federated
	case types.KindPublicKey:
		envelope.PublicKey = credential.PublicKey
	default:
		return nil, cmerror.New(cmerror.CodeGetCredentials, "platform returned an unknown credential kind")
	}

	if err := envelope.Validate(); err != nil {
		return nil, cmerror.Wrap(cmerror.CodeGetCredentials, "platform returned a malformed credential", err)
	}

	return envelope, nil
}

// SignInWithFederatedProvider runs the federated sign-in flow. It requires
// Init to have configured a federated client id; otherwise it fails without
// reaching the provider adapter.
func (m *Manager) SignInWithFederatedProvider(ctx context.Context, useButtonFlow bool) (*types.FederatedCredential, error) {
	m.mu.RLock()
	initialized := m.state.Initialized
	clientID := m.state.FederatedClientID
	m.mu.RUnlock()

	if !initialized || clientID == "" {
		return nil, cmerror.New(cmerror.CodeConfiguration, "federated client id is not configured; call init first")
	}
	if !m.IsSupported() {
		return nil, cmerror.New(cmerror.CodeUnsupported, "platform credential store is not available")
	}

	credential, err := m.federated.SignIn(ctx, clientID, useButtonFlow)
	if err != nil {
		return nil, cmerror.Wrap(cmerror.CodeSignIn, "failed to sign in with federated provider", err)
	}

	if err := m.sessions.Put(ctx, session.Record{
		SubjectID: credential.SubjectID,
		ClientID:  clientID,
		IssuedAt:  time.Now(),
	}); err != nil {
		// The credential is already issued; a session-cache miss only
		// weakens logout bookkeeping.
		m.logger.WithError(err).Warn("Failed to record federated session")
	}

	m.emit(types.OpFederatedSignIn, types.KindFederated, credential.SubjectID)
	return &credential, nil
}

// Logout clears the platform credential store and revokes the federated
// session. Both are always attempted regardless of orchestrator state; the
// first failure is reported after the remaining steps ran. Configuration set
// by Init is left untouched.
func (m *Manager) Logout(ctx context.Context) (string, error) {
	var firstErr error

	if m.store != nil {
		if err := m.store.Clear(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if err := m.federated.Revoke(ctx); err != nil && firstErr == nil {
		firstErr = err
	}

	if err := m.sessions.Delete(ctx); err != nil && firstErr == nil {
		firstErr = err
	}

	if firstErr != nil {
		return "", cmerror.Wrap(cmerror.CodeLogout, "failed to logout", firstErr)
	}

	m.emit(types.OpLogout, "", "")
	return "Logged out successfully", nil
}

// emit invokes the registered event callback, if any
func (m *Manager) emit(operation types.CredentialOperation, kind types.CredentialKind, detail string) {
	m.mu.RLock()
	callback := m.onEvent
	m.mu.RUnlock()

	if callback == nil {
		return
	}

	callback(types.CredentialEvent{
		Operation: operation,
		Kind:      kind,
		Timestamp: time.Now(),
		Detail:    detail,
	})
}
