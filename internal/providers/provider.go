// Package providers defines the uniform contract every credential provider
// adapter implements. Each adapter wraps one external capability, either the
// platform credential store or the federated identity SDK, and exposes it
// behind the same small surface.
package providers

import (
	"context"

	"credential-bridge/internal/types"
)

// Provider is the contract common to all credential provider adapters
type Provider interface {
	// Name returns the unique name of this provider
	Name() string

	// Kind returns the credential kind this provider serves
	Kind() types.CredentialKind

	// Status returns the current health of the provider
	Status() types.ProviderStatus
}

// PasswordProvider wraps the platform store's password capability
type PasswordProvider interface {
	Provider

	// Save persists one password credential
	Save(ctx context.Context, username, password string) error
}

// PasskeyProvider wraps the platform store's public-key capability
type PasskeyProvider interface {
	Provider

	// Create forwards a serialized creation request and returns the
	// serialized creation response unchanged
	Create(ctx context.Context, requestJSON string) (string, error)
}

// FederatedProvider wraps the external identity provider SDK
type FederatedProvider interface {
	Provider

	// SignIn runs the provider sign-in flow and returns the federated
	// credential
	SignIn(ctx context.Context, clientID string, useButtonFlow bool) (types.FederatedCredential, error)

	// Revoke ends the active federated session, if any
	Revoke(ctx context.Context) error
}
