package api

import (
	"credential-bridge/internal/types"
)

// InitRequest configures the orchestrator
type InitRequest struct {
	PreferImmediateCredentials bool   `json:"preferImmediatelyAvailableCredentials"`
	FederatedClientID          string `json:"federatedClientId,omitempty"`
}

// SavePasswordRequest carries a password credential to persist
type SavePasswordRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreatePasskeyRequest carries the serialized public-key creation request
type CreatePasskeyRequest struct {
	RequestJSON string `json:"requestJson"`
}

// FetchOptionsRequest mirrors types.FetchOptions with optional fields so
// omitted flags default to enabled
type FetchOptionsRequest struct {
	PasswordEnabled  *bool `json:"passwordEnabled,omitempty"`
	PasskeyEnabled   *bool `json:"passkeyEnabled,omitempty"`
	FederatedEnabled *bool `json:"federatedEnabled,omitempty"`
}

// ToFetchOptions applies the default-true semantics for omitted flags
func (r *FetchOptionsRequest) ToFetchOptions() types.FetchOptions {
	opts := types.DefaultFetchOptions()
	if r == nil {
		return opts
	}
	if r.PasswordEnabled != nil {
		opts.PasswordEnabled = *r.PasswordEnabled
	}
	if r.PasskeyEnabled != nil {
		opts.PasskeyEnabled = *r.PasskeyEnabled
	}
	if r.FederatedEnabled != nil {
		opts.FederatedEnabled = *r.FederatedEnabled
	}
	return opts
}

// GetCredentialsRequest is a combined retrieval request
type GetCredentialsRequest struct {
	PasskeyOptions string               `json:"passkeyOptions,omitempty"`
	FetchOptions   *FetchOptionsRequest `json:"fetchOptions,omitempty"`
}

// SignInRequest selects the federated sign-in flow
type SignInRequest struct {
	UseButtonFlow bool `json:"useButtonFlow"`
}

// MessageResponse carries an opaque status message
type MessageResponse struct {
	Message string `json:"message"`
}

// SupportedResponse reports platform capability support
type SupportedResponse struct {
	Supported bool `json:"supported"`
}

// StatusResponse reports orchestrator and provider health
type StatusResponse struct {
	Supported bool                   `json:"supported"`
	Providers []types.ProviderStatus `json:"providers"`
}

// ErrorResponse is the serialized error taxonomy shape
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
