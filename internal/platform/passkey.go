package platform

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/google/uuid"

	"credential-bridge/internal/types"
)

// PasskeyRecord is the backend-neutral stored form of a created passkey
type PasskeyRecord struct {
	CredentialID      string
	RPID              string
	UserHandle        string
	PublicKey         string
	Algorithm         int
	Transports        []string
	ClientData        string
	AttestationObject string
}

// ParseCreationRequest parses and validates a serialized public-key creation
// request. The request carries WebAuthn creation options: challenge, relying
// party, user handle, algorithm preferences, exclusions and authenticator
// selection policy.
func ParseCreationRequest(requestJSON string) (*protocol.PublicKeyCredentialCreationOptions, error) {
	var opts protocol.PublicKeyCredentialCreationOptions
	if err := json.Unmarshal([]byte(requestJSON), &opts); err != nil {
		return nil, fmt.Errorf("malformed passkey creation request: %w", err)
	}

	if len(opts.Challenge) == 0 {
		return nil, fmt.Errorf("passkey creation request is missing a challenge")
	}
	if opts.RelyingParty.ID == "" {
		return nil, fmt.Errorf("passkey creation request is missing the relying party id")
	}
	if opts.User.ID == nil {
		return nil, fmt.Errorf("passkey creation request is missing the user handle")
	}

	return &opts, nil
}

// MintCreationResponse produces the platform's creation response for parsed
// creation options, along with the record to persist. Attestation material is
// structurally valid but not cryptographically signed; signing is the real
// platform authenticator's job, not this store's.
func MintCreationResponse(opts *protocol.PublicKeyCredentialCreationOptions) (*types.PublicKeyCredential, PasskeyRecord, error) {
	credentialID := uuid.New()
	rawID := base64.RawURLEncoding.EncodeToString(credentialID[:])

	algorithm := int(-7) // ES256 default
	if len(opts.Parameters) > 0 {
		algorithm = int(opts.Parameters[0].Algorithm)
	}

	clientData, err := json.Marshal(map[string]string{
		"type":      "webauthn.create",
		"challenge": base64.RawURLEncoding.EncodeToString(opts.Challenge),
		"origin":    "https://" + opts.RelyingParty.ID,
	})
	if err != nil {
		return nil, PasskeyRecord{}, fmt.Errorf("failed to encode client data: %w", err)
	}
	clientDataJSON := base64.RawURLEncoding.EncodeToString(clientData)

	publicKey, err := randomURLEncoded(65)
	if err != nil {
		return nil, PasskeyRecord{}, err
	}
	attestationObject, err := randomURLEncoded(96)
	if err != nil {
		return nil, PasskeyRecord{}, err
	}

	residentKey := opts.AuthenticatorSelection.ResidentKey == protocol.ResidentKeyRequirementRequired ||
		opts.AuthenticatorSelection.ResidentKey == protocol.ResidentKeyRequirementPreferred
	transports := []string{"internal", "hybrid"}

	record := PasskeyRecord{
		CredentialID:      rawID,
		RPID:              opts.RelyingParty.ID,
		UserHandle:        userHandleString(opts.User.ID),
		PublicKey:         publicKey,
		Algorithm:         algorithm,
		Transports:        transports,
		ClientData:        clientDataJSON,
		AttestationObject: attestationObject,
	}

	credential := &types.PublicKeyCredential{
		RawID:      rawID,
		ID:         rawID,
		Type:       "public-key",
		Attachment: string(opts.AuthenticatorSelection.AuthenticatorAttachment),
		Response: &types.AuthenticatorResponse{
			ClientDataJSON:    clientDataJSON,
			AttestationObject: attestationObject,
			PublicKey:         publicKey,
			Transports:        transports,
		},
		Transports:           transports,
		ResidentKeySupported: &residentKey,
		PublicKeyAlgorithm:   algorithm,
		PublicKey:            publicKey,
	}

	return credential, record, nil
}

// MintAssertion produces an assertion-shaped public-key credential from a
// stored record. requestJSON optionally carries serialized request options
// whose challenge and relying-party id are honored.
func MintAssertion(record PasskeyRecord, requestJSON string) (*types.PublicKeyCredential, error) {
	challenge := ""
	if requestJSON != "" {
		var opts protocol.PublicKeyCredentialRequestOptions
		if err := json.Unmarshal([]byte(requestJSON), &opts); err != nil {
			return nil, fmt.Errorf("malformed passkey request options: %w", err)
		}
		challenge = base64.RawURLEncoding.EncodeToString(opts.Challenge)
		if opts.RelyingPartyID != "" && opts.RelyingPartyID != record.RPID {
			return nil, ErrNoCredential
		}
	}

	clientData, err := json.Marshal(map[string]string{
		"type":      "webauthn.get",
		"challenge": challenge,
		"origin":    "https://" + record.RPID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode client data: %w", err)
	}

	authenticatorData, err := randomURLEncoded(37)
	if err != nil {
		return nil, err
	}
	signature, err := randomURLEncoded(72)
	if err != nil {
		return nil, err
	}

	return &types.PublicKeyCredential{
		RawID: record.CredentialID,
		ID:    record.CredentialID,
		Type:  "public-key",
		Response: &types.AuthenticatorResponse{
			ClientDataJSON:    base64.RawURLEncoding.EncodeToString(clientData),
			AuthenticatorData: authenticatorData,
			Signature:         signature,
			UserHandle:        record.UserHandle,
			PublicKey:         record.PublicKey,
			Transports:        record.Transports,
		},
		Transports:         record.Transports,
		PublicKeyAlgorithm: record.Algorithm,
		PublicKey:          record.PublicKey,
	}, nil
}

// userHandleString normalizes the user handle, which WebAuthn JSON may carry
// as a base64url string or raw bytes
func userHandleString(id any) string {
	switch v := id.(type) {
	case string:
		return v
	case []byte:
		return base64.RawURLEncoding.EncodeToString(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func randomURLEncoded(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
