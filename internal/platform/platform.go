// Package platform defines the contract of the underlying credential store
// capability. The orchestrator treats the store as opaque: it issues
// structured requests and receives discriminated credentials or typed
// failures. Backends live in the localstore and pgstore subpackages.
package platform

import (
	"context"
	"errors"

	"credential-bridge/internal/types"
)

// Typed failures a store may report. The orchestrator maps these into the
// error taxonomy; they never cross the public surface directly.
var (
	ErrNoCredential  = errors.New("no matching credential")
	ErrUserCancelled = errors.New("user cancelled the credential prompt")
	ErrUnavailable   = errors.New("platform credential store unavailable")
)

// Query is a single combined retrieval request over the union of enabled
// credential kinds. The store performs disambiguation when more than one
// stored credential matches.
type Query struct {
	// Kinds is the set of credential kinds the caller enabled.
	Kinds []types.CredentialKind

	// PasskeyRequestJSON carries the serialized public-key request
	// parameters. Only consulted when Kinds includes the public-key kind.
	PasskeyRequestJSON string

	// PreferImmediate suppresses interactive prompting; only credentials
	// available without user interaction are returned.
	PreferImmediate bool
}

// Credential is the discriminated result of a combined query. Exactly one
// variant is populated, matching Kind.
type Credential struct {
	Kind      types.CredentialKind
	Password  *types.PasswordCredential
	Federated *types.FederatedCredential
	PublicKey *types.PublicKeyCredential
}

// Store is the platform credential store capability
type Store interface {
	// SavePassword persists one password credential.
	SavePassword(ctx context.Context, username, password string) error

	// SaveFederated persists a federated credential after a provider sign-in.
	SaveFederated(ctx context.Context, cred types.FederatedCredential) error

	// CreatePasskey performs a public-key credential creation from the
	// serialized request and returns the serialized creation response.
	CreatePasskey(ctx context.Context, requestJSON string) (string, error)

	// Get issues one combined query over the enabled kinds.
	Get(ctx context.Context, query Query) (*Credential, error)

	// Clear removes all stored credential state.
	Clear(ctx context.Context) error

	// Available reports whether the capability is usable on this host.
	Available() bool
}
