// Package localstore implements the platform credential store capability on
// top of a local SQLite database. It mirrors what a platform-native store
// does for a single device user: one current credential per kind, secrets
// encrypted at rest, no selection UI.
package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"credential-bridge/internal/database"
	"credential-bridge/internal/platform"
	"credential-bridge/internal/types"
)

// Store is a SQLite-backed platform credential store
type Store struct {
	db        *database.DB
	logger    *logrus.Entry
	available bool
}

// New creates a local store over an open database connection
func New(db *database.DB, logger *logrus.Entry) *Store {
	available := db != nil && db.Ping() == nil
	return &Store{
		db:        db,
		logger:    logger,
		available: available,
	}
}

// Available reports whether the store was reachable at construction
func (s *Store) Available() bool {
	return s.available
}

// SavePassword persists one password credential
func (s *Store) SavePassword(ctx context.Context, username, password string) error {
	if !s.available {
		return platform.ErrUnavailable
	}

	if err := s.db.SavePassword(username, password); err != nil {
		return err
	}

	s.logger.WithField("username", username).Info("Password credential saved")
	return nil
}

// SaveFederated persists a federated credential
func (s *Store) SaveFederated(ctx context.Context, cred types.FederatedCredential) error {
	if !s.available {
		return platform.ErrUnavailable
	}

	if err := s.db.SaveFederated(cred); err != nil {
		return err
	}

	s.logger.WithField("subject_id", cred.SubjectID).Info("Federated credential saved")
	return nil
}

// CreatePasskey parses the creation request, mints a creation response, and
// persists the resulting passkey record
func (s *Store) CreatePasskey(ctx context.Context, requestJSON string) (string, error) {
	if !s.available {
		return "", platform.ErrUnavailable
	}

	opts, err := platform.ParseCreationRequest(requestJSON)
	if err != nil {
		return "", err
	}

	credential, record, err := platform.MintCreationResponse(opts)
	if err != nil {
		return "", err
	}

	if err := s.db.SavePasskey(database.PasskeyRow{
		CredentialID:      record.CredentialID,
		RPID:              record.RPID,
		UserHandle:        record.UserHandle,
		PublicKey:         record.PublicKey,
		Algorithm:         record.Algorithm,
		Transports:        record.Transports,
		ClientData:        record.ClientData,
		AttestationObject: record.AttestationObject,
	}); err != nil {
		return "", err
	}

	s.logger.WithFields(logrus.Fields{
		"rp_id":         record.RPID,
		"credential_id": record.CredentialID,
	}).Info("Passkey credential created")

	return marshalCredential(credential)
}

// Get issues one combined query over the enabled kinds and returns the most
// recently saved matching credential
func (s *Store) Get(ctx context.Context, query platform.Query) (*platform.Credential, error) {
	if !s.available {
		return nil, platform.ErrUnavailable
	}

	var best *platform.Credential
	var bestAt time.Time

	for _, kind := range query.Kinds {
		candidate, savedAt, err := s.lookup(kind, query.PasskeyRequestJSON)
		if errors.Is(err, database.ErrNotFound) || errors.Is(err, platform.ErrNoCredential) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if best == nil || savedAt.After(bestAt) {
			best = candidate
			bestAt = savedAt
		}
	}

	if best == nil {
		return nil, platform.ErrNoCredential
	}

	s.logger.WithField("kind", best.Kind).Debug("Credential retrieved")
	return best, nil
}

// lookup fetches the latest stored credential of one kind
func (s *Store) lookup(kind types.CredentialKind, passkeyRequestJSON string) (*platform.Credential, time.Time, error) {
	switch kind {
	case types.KindPassword:
		cred, savedAt, err := s.db.LatestPassword()
		if err != nil {
			return nil, time.Time{}, err
		}
		return &platform.Credential{Kind: types.KindPassword, Password: &cred}, savedAt, nil

	case types.KindFederated:
		cred, savedAt, err := s.db.LatestFederated()
		if err != nil {
			return nil, time.Time{}, err
		}
		return &platform.Credential{Kind: types.KindFederated, Federated: &cred}, savedAt, nil

	case types.KindPublicKey:
		row, savedAt, err := s.db.LatestPasskey()
		if err != nil {
			return nil, time.Time{}, err
		}
		assertion, err := platform.MintAssertion(platform.PasskeyRecord{
			CredentialID:      row.CredentialID,
			RPID:              row.RPID,
			UserHandle:        row.UserHandle,
			PublicKey:         row.PublicKey,
			Algorithm:         row.Algorithm,
			Transports:        row.Transports,
			ClientData:        row.ClientData,
			AttestationObject: row.AttestationObject,
		}, passkeyRequestJSON)
		if err != nil {
			return nil, time.Time{}, err
		}
		return &platform.Credential{Kind: types.KindPublicKey, PublicKey: assertion}, savedAt, nil

	default:
		return nil, time.Time{}, fmt.Errorf("unknown credential kind: %s", kind)
	}
}

// Clear removes every stored credential
func (s *Store) Clear(ctx context.Context) error {
	if !s.available {
		return platform.ErrUnavailable
	}

	if err := s.db.ClearAll(); err != nil {
		return err
	}

	s.logger.Info("Credential store cleared")
	return nil
}

func marshalCredential(credential *types.PublicKeyCredential) (string, error) {
	data, err := json.Marshal(credential)
	if err != nil {
		return "", fmt.Errorf("failed to encode creation response: %w", err)
	}
	return string(data), nil
}
