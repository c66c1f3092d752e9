// Package identity defines the contract of the external federated identity
// provider SDK. The orchestrator only sees this interface; the concrete
// provider (Google in the reference deployment) stays behind it.
package identity

import (
	"context"
	"errors"

	"credential-bridge/internal/types"
)

// Typed failures a provider may report
var (
	ErrSignInCancelled = errors.New("user cancelled the sign-in flow")
	ErrNoAccount       = errors.New("no eligible account available")
)

// Provider is the federated identity SDK capability
type Provider interface {
	// SignIn runs the provider's sign-in flow for the given client id.
	// useButtonFlow selects the explicit button-triggered flow over the
	// automatic one-tap flow.
	SignIn(ctx context.Context, clientID string, useButtonFlow bool) (types.FederatedCredential, error)

	// Revoke invalidates the provider session for a subject.
	Revoke(ctx context.Context, subjectID string) error
}
