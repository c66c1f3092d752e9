// Package passkey implements the provider adapter for public-key credentials
package passkey

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"credential-bridge/internal/platform"
	"credential-bridge/internal/types"
)

// Adapter wraps the platform store's public-key capability. Request and
// response payloads are serialized text carried through verbatim; the
// adapter never parses them.
type Adapter struct {
	store  platform.Store
	logger *logrus.Entry
}

// New creates a passkey provider adapter
func New(store platform.Store, logger *logrus.Entry) *Adapter {
	return &Adapter{store: store, logger: logger}
}

// Name returns the adapter name
func (a *Adapter) Name() string {
	return "passkey"
}

// Kind returns the credential kind this adapter serves
func (a *Adapter) Kind() types.CredentialKind {
	return types.KindPublicKey
}

// Status returns the current health of the adapter
func (a *Adapter) Status() types.ProviderStatus {
	return types.ProviderStatus{
		Name:      a.Name(),
		Kind:      a.Kind(),
		Healthy:   a.store.Available(),
		UpdatedAt: time.Now(),
	}
}

// Create forwards the serialized creation request to the platform store and
// returns its serialized response unchanged
func (a *Adapter) Create(ctx context.Context, requestJSON string) (string, error) {
	response, err := a.store.CreatePasskey(ctx, requestJSON)
	if err != nil {
		a.logger.WithError(err).Warn("Passkey creation failed")
		return "", err
	}

	a.logger.Debug("Passkey credential created")
	return response, nil
}
