package types

import "time"

// CredentialOperation names a lifecycle operation performed by the
// orchestrator
type CredentialOperation string

const (
	OpCredentialSaved     CredentialOperation = "credential_saved"
	OpCredentialRetrieved CredentialOperation = "credential_retrieved"
	OpPasskeyCreated      CredentialOperation = "passkey_created"
	OpFederatedSignIn     CredentialOperation = "federated_sign_in"
	OpLogout              CredentialOperation = "logout"
)

// CredentialEvent describes one completed credential operation. Events never
// carry secret material, only the operation and the credential kind involved.
type CredentialEvent struct {
	Operation CredentialOperation `json:"operation"`
	Kind      CredentialKind      `json:"kind,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
	Detail    string              `json:"detail,omitempty"`
}

// EventCallback is invoked for every completed credential operation
type EventCallback func(event CredentialEvent)

// ProviderStatus reports the health of one provider adapter
type ProviderStatus struct {
	Name      string         `json:"name"`
	Kind      CredentialKind `json:"kind"`
	Healthy   bool           `json:"healthy"`
	UpdatedAt time.Time      `json:"updated_at"`
}
