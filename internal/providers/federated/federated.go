// Package federated implements the provider adapter for federated identity
// credentials. It wraps the external identity provider SDK, enriches the
// returned credential from the ID token's claims, and persists the result in
// the platform store so combined retrieval can return it later.
package federated

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"credential-bridge/internal/identity"
	"credential-bridge/internal/platform"
	"credential-bridge/internal/types"
)

// Adapter wraps the federated identity SDK and the platform store
type Adapter struct {
	provider identity.Provider
	store    platform.Store
	logger   *logrus.Entry

	mu          sync.Mutex
	lastSubject string
}

// New creates a federated provider adapter
func New(provider identity.Provider, store platform.Store, logger *logrus.Entry) *Adapter {
	return &Adapter{provider: provider, store: store, logger: logger}
}

// Name returns the adapter name
func (a *Adapter) Name() string {
	return "federated"
}

// Kind returns the credential kind this adapter serves
func (a *Adapter) Kind() types.CredentialKind {
	return types.KindFederated
}

// Status returns the current health of the adapter
func (a *Adapter) Status() types.ProviderStatus {
	return types.ProviderStatus{
		Name:      a.Name(),
		Kind:      a.Kind(),
		Healthy:   a.provider != nil && a.store.Available(),
		UpdatedAt: time.Now(),
	}
}

// SignIn runs the provider sign-in flow, fills profile fields the provider
// left empty from the ID token claims, and persists the credential
func (a *Adapter) SignIn(ctx context.Context, clientID string, useButtonFlow bool) (types.FederatedCredential, error) {
	cred, err := a.provider.SignIn(ctx, clientID, useButtonFlow)
	if err != nil {
		a.logger.WithError(err).Warn("Federated sign-in failed")
		return types.FederatedCredential{}, err
	}

	enrichFromClaims(&cred)

	if err := a.store.SaveFederated(ctx, cred); err != nil {
		a.logger.WithError(err).Warn("Failed to persist federated credential")
		return types.FederatedCredential{}, err
	}

	a.mu.Lock()
	a.lastSubject = cred.SubjectID
	a.mu.Unlock()

	a.logger.WithFields(logrus.Fields{
		"subject_id":  cred.SubjectID,
		"button_flow": useButtonFlow,
	}).Info("Federated sign-in completed")

	return cred, nil
}

// Revoke ends the active federated session. Revoking with no active session
// is a no-op.
func (a *Adapter) Revoke(ctx context.Context) error {
	a.mu.Lock()
	subject := a.lastSubject
	a.lastSubject = ""
	a.mu.Unlock()

	if subject == "" {
		return nil
	}

	if err := a.provider.Revoke(ctx, subject); err != nil {
		a.logger.WithError(err).Warn("Federated session revoke failed")
		return err
	}

	a.logger.WithField("subject_id", subject).Info("Federated session revoked")
	return nil
}

// enrichFromClaims fills empty profile fields from the ID token's claims.
// The token is not validated here: token validation is the relying backend's
// job, this layer only shapes the credential.
func enrichFromClaims(cred *types.FederatedCredential) {
	if cred.IDToken == "" {
		return
	}

	token, _, err := jwt.NewParser().ParseUnverified(cred.IDToken, jwt.MapClaims{})
	if err != nil {
		return
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return
	}

	stringClaim := func(key string) string {
		if v, ok := claims[key].(string); ok {
			return v
		}
		return ""
	}

	if cred.SubjectID == "" {
		cred.SubjectID = stringClaim("sub")
	}
	if cred.DisplayName == "" {
		cred.DisplayName = stringClaim("name")
	}
	if cred.GivenName == "" {
		cred.GivenName = stringClaim("given_name")
	}
	if cred.FamilyName == "" {
		cred.FamilyName = stringClaim("family_name")
	}
	if cred.PhoneNumber == "" {
		cred.PhoneNumber = stringClaim("phone_number")
	}
	if cred.ProfilePictureURI == "" {
		cred.ProfilePictureURI = stringClaim("picture")
	}
}
