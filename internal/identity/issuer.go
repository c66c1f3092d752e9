package identity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"credential-bridge/internal/types"
)

// Profile describes the account a LocalIssuer signs in
type Profile struct {
	SubjectID         string
	DisplayName       string
	GivenName         string
	FamilyName        string
	PhoneNumber       string
	ProfilePictureURI string
}

// LocalIssuer is a development implementation of the identity provider SDK.
// It mints HS256-signed ID tokens for a configured profile so the federated
// flow can be exercised without a real identity provider.
type LocalIssuer struct {
	issuer     string
	signingKey []byte
	profile    Profile
	tokenTTL   time.Duration
	logger     *logrus.Entry

	mu     sync.Mutex
	active map[string]bool
}

// NewLocalIssuer creates a local issuer for the given profile
func NewLocalIssuer(issuer string, signingKey []byte, profile Profile, logger *logrus.Entry) *LocalIssuer {
	return &LocalIssuer{
		issuer:     issuer,
		signingKey: signingKey,
		profile:    profile,
		tokenTTL:   time.Hour,
		logger:     logger,
		active:     make(map[string]bool),
	}
}

// SignIn mints an ID token for the configured profile
func (i *LocalIssuer) SignIn(ctx context.Context, clientID string, useButtonFlow bool) (types.FederatedCredential, error) {
	if clientID == "" {
		return types.FederatedCredential{}, fmt.Errorf("client id is required")
	}
	if i.profile.SubjectID == "" {
		return types.FederatedCredential{}, ErrNoAccount
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss": i.issuer,
		"sub": i.profile.SubjectID,
		"aud": clientID,
		"iat": now.Unix(),
		"exp": now.Add(i.tokenTTL).Unix(),
	}
	if i.profile.DisplayName != "" {
		claims["name"] = i.profile.DisplayName
	}
	if i.profile.GivenName != "" {
		claims["given_name"] = i.profile.GivenName
	}
	if i.profile.FamilyName != "" {
		claims["family_name"] = i.profile.FamilyName
	}
	if i.profile.PhoneNumber != "" {
		claims["phone_number"] = i.profile.PhoneNumber
	}
	if i.profile.ProfilePictureURI != "" {
		claims["picture"] = i.profile.ProfilePictureURI
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.signingKey)
	if err != nil {
		return types.FederatedCredential{}, fmt.Errorf("failed to sign id token: %w", err)
	}

	i.mu.Lock()
	i.active[i.profile.SubjectID] = true
	i.mu.Unlock()

	i.logger.WithFields(logrus.Fields{
		"subject_id":  i.profile.SubjectID,
		"button_flow": useButtonFlow,
	}).Info("Federated sign-in completed")

	return types.FederatedCredential{
		SubjectID:         i.profile.SubjectID,
		IDToken:           signed,
		DisplayName:       i.profile.DisplayName,
		GivenName:         i.profile.GivenName,
		FamilyName:        i.profile.FamilyName,
		PhoneNumber:       i.profile.PhoneNumber,
		ProfilePictureURI: i.profile.ProfilePictureURI,
	}, nil
}

// Revoke invalidates the session for a subject. Revoking an unknown subject
// is not an error.
func (i *LocalIssuer) Revoke(ctx context.Context, subjectID string) error {
	i.mu.Lock()
	delete(i.active, subjectID)
	i.mu.Unlock()

	i.logger.WithField("subject_id", subjectID).Info("Federated session revoked")
	return nil
}

// Active reports whether a subject currently has a session. Used by tests
// and the status endpoint.
func (i *LocalIssuer) Active(subjectID string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.active[subjectID]
}
