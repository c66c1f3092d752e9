// Package pgstore implements the platform credential store capability over
// PostgreSQL for server deployments where credentials are held centrally
// rather than on the device.
package pgstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"credential-bridge/internal/platform"
	"credential-bridge/internal/types"
)

// Store is a PostgreSQL-backed platform credential store
type Store struct {
	conn      *sql.DB
	logger    *logrus.Entry
	available bool
}

// New opens a connection to PostgreSQL and ensures the schema exists
func New(dsn string, logger *logrus.Entry) (*Store, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	store := &Store{conn: conn, logger: logger, available: true}
	if err := store.migrate(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *Store) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS password_credentials (
			id SERIAL PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL,
			saved_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS federated_credentials (
			id SERIAL PRIMARY KEY,
			subject_id TEXT UNIQUE NOT NULL,
			id_token TEXT NOT NULL,
			display_name TEXT,
			family_name TEXT,
			given_name TEXT,
			phone_number TEXT,
			profile_picture_uri TEXT,
			saved_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS passkey_credentials (
			id SERIAL PRIMARY KEY,
			credential_id TEXT UNIQUE NOT NULL,
			rp_id TEXT NOT NULL,
			user_handle TEXT NOT NULL,
			public_key TEXT NOT NULL,
			algorithm INTEGER NOT NULL,
			transports TEXT,
			client_data TEXT,
			attestation_object TEXT,
			saved_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}

	for i, stmt := range statements {
		if _, err := s.conn.Exec(stmt); err != nil {
			return fmt.Errorf("failed to run migration %d: %w", i+1, err)
		}
	}

	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.conn.Close()
}

// Available reports whether the store was reachable at construction
func (s *Store) Available() bool {
	return s.available
}

// SavePassword persists one password credential
func (s *Store) SavePassword(ctx context.Context, username, password string) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO password_credentials (username, password, saved_at)
		VALUES ($1, $2, now())
		ON CONFLICT (username) DO UPDATE SET password = EXCLUDED.password, saved_at = now()`,
		username, password)
	if err != nil {
		return fmt.Errorf("failed to store password credential: %w", err)
	}

	s.logger.WithField("username", username).Info("Password credential saved")
	return nil
}

// SaveFederated persists a federated credential
func (s *Store) SaveFederated(ctx context.Context, cred types.FederatedCredential) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO federated_credentials
			(subject_id, id_token, display_name, family_name, given_name, phone_number, profile_picture_uri, saved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (subject_id) DO UPDATE SET
			id_token = EXCLUDED.id_token,
			display_name = EXCLUDED.display_name,
			family_name = EXCLUDED.family_name,
			given_name = EXCLUDED.given_name,
			phone_number = EXCLUDED.phone_number,
			profile_picture_uri = EXCLUDED.profile_picture_uri,
			saved_at = now()`,
		cred.SubjectID, cred.IDToken, cred.DisplayName, cred.FamilyName,
		cred.GivenName, cred.PhoneNumber, cred.ProfilePictureURI)
	if err != nil {
		return fmt.Errorf("failed to store federated credential: %w", err)
	}

	s.logger.WithField("subject_id", cred.SubjectID).Info("Federated credential saved")
	return nil
}

// CreatePasskey parses the creation request, mints a creation response, and
// persists the resulting passkey record
func (s *Store) CreatePasskey(ctx context.Context, requestJSON string) (string, error) {
	opts, err := platform.ParseCreationRequest(requestJSON)
	if err != nil {
		return "", err
	}

	credential, record, err := platform.MintCreationResponse(opts)
	if err != nil {
		return "", err
	}

	transports, err := json.Marshal(record.Transports)
	if err != nil {
		return "", fmt.Errorf("failed to marshal transports: %w", err)
	}

	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO passkey_credentials
			(credential_id, rp_id, user_handle, public_key, algorithm, transports, client_data, attestation_object, saved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())`,
		record.CredentialID, record.RPID, record.UserHandle, record.PublicKey,
		record.Algorithm, string(transports), record.ClientData, record.AttestationObject)
	if err != nil {
		return "", fmt.Errorf("failed to store passkey credential: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"rp_id":         record.RPID,
		"credential_id": record.CredentialID,
	}).Info("Passkey credential created")

	data, err := json.Marshal(credential)
	if err != nil {
		return "", fmt.Errorf("failed to encode creation response: %w", err)
	}
	return string(data), nil
}

// Get issues one combined query over the enabled kinds and returns the most
// recently saved matching credential
func (s *Store) Get(ctx context.Context, query platform.Query) (*platform.Credential, error) {
	var best *platform.Credential
	var bestAt time.Time

	for _, kind := range query.Kinds {
		candidate, savedAt, err := s.lookup(ctx, kind, query.PasskeyRequestJSON)
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, platform.ErrNoCredential) {
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

	return best, nil
}

func (s *Store) lookup(ctx context.Context, kind types.CredentialKind, passkeyRequestJSON string) (*platform.Credential, time.Time, error) {
	switch kind {
	case types.KindPassword:
		var cred types.PasswordCredential
		var savedAt time.Time
		err := s.conn.QueryRowContext(ctx, `
			SELECT username, password, saved_at FROM password_credentials
			ORDER BY saved_at DESC, id DESC LIMIT 1`).Scan(&cred.Username, &cred.Password, &savedAt)
		if err != nil {
			return nil, time.Time{}, err
		}
		return &platform.Credential{Kind: types.KindPassword, Password: &cred}, savedAt, nil

	case types.KindFederated:
		var cred types.FederatedCredential
		var savedAt time.Time
		err := s.conn.QueryRowContext(ctx, `
			SELECT subject_id, id_token, COALESCE(display_name, ''), COALESCE(family_name, ''),
				COALESCE(given_name, ''), COALESCE(phone_number, ''), COALESCE(profile_picture_uri, ''), saved_at
			FROM federated_credentials
			ORDER BY saved_at DESC, id DESC LIMIT 1`).Scan(
			&cred.SubjectID, &cred.IDToken, &cred.DisplayName, &cred.FamilyName,
			&cred.GivenName, &cred.PhoneNumber, &cred.ProfilePictureURI, &savedAt)
		if err != nil {
			return nil, time.Time{}, err
		}
		return &platform.Credential{Kind: types.KindFederated, Federated: &cred}, savedAt, nil

	case types.KindPublicKey:
		var record platform.PasskeyRecord
		var transports string
		var savedAt time.Time
		err := s.conn.QueryRowContext(ctx, `
			SELECT credential_id, rp_id, user_handle, public_key, algorithm,
				COALESCE(transports, '[]'), COALESCE(client_data, ''), COALESCE(attestation_object, ''), saved_at
			FROM passkey_credentials
			ORDER BY saved_at DESC, id DESC LIMIT 1`).Scan(
			&record.CredentialID, &record.RPID, &record.UserHandle, &record.PublicKey,
			&record.Algorithm, &transports, &record.ClientData, &record.AttestationObject, &savedAt)
		if err != nil {
			return nil, time.Time{}, err
		}
		if err := json.Unmarshal([]byte(transports), &record.Transports); err != nil {
			return nil, time.Time{}, fmt.Errorf("failed to unmarshal transports: %w", err)
		}
		assertion, err := platform.MintAssertion(record, passkeyRequestJSON)
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
	statements := []string{
		"DELETE FROM password_credentials",
		"DELETE FROM federated_credentials",
		"DELETE FROM passkey_credentials",
	}

	for _, stmt := range statements {
		if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to clear credentials: %w", err)
		}
	}

	s.logger.Info("Credential store cleared")
	return nil
}
