// Package password implements the provider adapter for password credentials
package password

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"credential-bridge/internal/platform"
	"credential-bridge/internal/types"
)

// Adapter wraps the platform store's password capability
type Adapter struct {
	store  platform.Store
	logger *logrus.Entry
}

// New creates a password provider adapter
func New(store platform.Store, logger *logrus.Entry) *Adapter {
	return &Adapter{store: store, logger: logger}
}

// Name returns the adapter name
func (a *Adapter) Name() string {
	return "password"
}

// Kind returns the credential kind this adapter serves
func (a *Adapter) Kind() types.CredentialKind {
	return types.KindPassword
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

// Save persists one password credential through the platform store. Saving
// may prompt the user on platforms with a native save dialog; cancellation
// surfaces as a typed store error.
func (a *Adapter) Save(ctx context.Context, username, password string) error {
	if err := a.store.SavePassword(ctx, username, password); err != nil {
		a.logger.WithError(err).Warn("Password save failed")
		return err
	}

	a.logger.WithField("username", username).Debug("Password credential saved")
	return nil
}
