package types

import "fmt"

// CredentialKind identifies which credential variant an envelope carries
type CredentialKind string

const (
	KindPassword  CredentialKind = "PasswordCredential"
	KindFederated CredentialKind = "FederatedCredential"
	KindPublicKey CredentialKind = "PublicKeyCredential"
)

// Valid returns true if the kind is one of the supported credential kinds
func (k CredentialKind) Valid() bool {
	switch k {
	case KindPassword, KindFederated, KindPublicKey:
		return true
	}
	return false
}

// PasswordCredential is a stored username/password pair. Both fields are
// required; password strength policy is enforced by the caller, not here.
type PasswordCredential struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// FederatedCredential is an identity token issued by a third-party identity
// provider. SubjectID and IDToken are required; the profile fields are
// optional and provider-supplied.
type FederatedCredential struct {
	SubjectID         string `json:"subjectId"`
	IDToken           string `json:"idToken"`
	DisplayName       string `json:"displayName,omitempty"`
	FamilyName        string `json:"familyName,omitempty"`
	GivenName         string `json:"givenName,omitempty"`
	PhoneNumber       string `json:"phoneNumber,omitempty"`
	ProfilePictureURI string `json:"profilePictureUri,omitempty"`
}

// AuthenticatorResponse holds the authenticator output of a public-key
// credential. All fields are base64url-encoded as produced by the platform.
type AuthenticatorResponse struct {
	ClientDataJSON    string   `json:"clientDataJSON,omitempty"`
	AttestationObject string   `json:"attestationObject,omitempty"`
	AuthenticatorData string   `json:"authenticatorData,omitempty"`
	PublicKey         string   `json:"publicKey,omitempty"`
	Transports        []string `json:"transports,omitempty"`
	Signature         string   `json:"signature,omitempty"`
	UserHandle        string   `json:"userHandle,omitempty"`
}

// PublicKeyCredential is a passkey credential as returned by the platform
// credential store. It is carried through verbatim; the orchestrator never
// inspects its internals.
type PublicKeyCredential struct {
	RawID                string                 `json:"rawId,omitempty"`
	Attachment           string                 `json:"authenticatorAttachment,omitempty"`
	Type                 string                 `json:"type,omitempty"`
	ID                   string                 `json:"id,omitempty"`
	Response             *AuthenticatorResponse `json:"response,omitempty"`
	Transports           []string               `json:"transports,omitempty"`
	ResidentKeySupported *bool                  `json:"residentKeySupported,omitempty"`
	PublicKeyAlgorithm   int                    `json:"publicKeyAlgorithm,omitempty"`
	PublicKey            string                 `json:"publicKey,omitempty"`
}

// CredentialEnvelope is the unifying return value of credential retrieval.
// Exactly one of Password, Federated or PublicKey is populated, and it
// matches Kind.
type CredentialEnvelope struct {
	Kind      CredentialKind       `json:"type"`
	Password  *PasswordCredential  `json:"passwordCredentials,omitempty"`
	Federated *FederatedCredential `json:"federatedCredentials,omitempty"`
	PublicKey *PublicKeyCredential `json:"publicKeyCredentials,omitempty"`
}

// Validate checks the exactly-one-variant invariant
func (e *CredentialEnvelope) Validate() error {
	populated := 0
	if e.Password != nil {
		populated++
		if e.Kind != KindPassword {
			return fmt.Errorf("envelope kind %q does not match populated password variant", e.Kind)
		}
	}
	if e.Federated != nil {
		populated++
		if e.Kind != KindFederated {
			return fmt.Errorf("envelope kind %q does not match populated federated variant", e.Kind)
		}
	}
	if e.PublicKey != nil {
		populated++
		if e.Kind != KindPublicKey {
			return fmt.Errorf("envelope kind %q does not match populated public-key variant", e.Kind)
		}
	}
	if populated != 1 {
		return fmt.Errorf("envelope must populate exactly one variant, got %d", populated)
	}
	return nil
}

// FetchOptions selects which credential kinds a retrieval may return
type FetchOptions struct {
	PasswordEnabled  bool `json:"passwordEnabled"`
	PasskeyEnabled   bool `json:"passkeyEnabled"`
	FederatedEnabled bool `json:"federatedEnabled"`
}

// DefaultFetchOptions enables all credential kinds
func DefaultFetchOptions() FetchOptions {
	return FetchOptions{
		PasswordEnabled:  true,
		PasskeyEnabled:   true,
		FederatedEnabled: true,
	}
}

// EnabledKinds returns the set of credential kinds the options allow, in
// stable order
func (o FetchOptions) EnabledKinds() []CredentialKind {
	kinds := make([]CredentialKind, 0, 3)
	if o.PasswordEnabled {
		kinds = append(kinds, KindPassword)
	}
	if o.PasskeyEnabled {
		kinds = append(kinds, KindPublicKey)
	}
	if o.FederatedEnabled {
		kinds = append(kinds, KindFederated)
	}
	return kinds
}
