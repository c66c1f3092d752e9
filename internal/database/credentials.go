package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"credential-bridge/internal/types"
)

// ErrNotFound is returned when no credential row matches a query
var ErrNotFound = errors.New("credential not found")

// PasskeyRow is a stored passkey credential record
type PasskeyRow struct {
	CredentialID      string
	RPID              string
	UserHandle        string
	PublicKey         string
	Algorithm         int
	Transports        []string
	ClientData        string
	AttestationObject string
}

// SavePassword stores a password credential, replacing any previous entry for
// the same username. The password column is encrypted.
func (db *DB) SavePassword(username, password string) error {
	encrypted, err := db.Encrypt([]byte(password))
	if err != nil {
		return fmt.Errorf("failed to encrypt password: %w", err)
	}

	_, err = db.conn.Exec(`
		INSERT INTO password_credentials (username, password, saved_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(username) DO UPDATE SET password = excluded.password, saved_at = CURRENT_TIMESTAMP`,
		username, encrypted)
	if err != nil {
		return fmt.Errorf("failed to store password credential: %w", err)
	}

	return nil
}

// LatestPassword returns the most recently saved password credential
func (db *DB) LatestPassword() (types.PasswordCredential, time.Time, error) {
	var cred types.PasswordCredential
	var encrypted string
	var savedAt time.Time

	err := db.conn.QueryRow(`
		SELECT username, password, saved_at FROM password_credentials
		ORDER BY saved_at DESC, id DESC LIMIT 1`).Scan(&cred.Username, &encrypted, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return cred, time.Time{}, ErrNotFound
	}
	if err != nil {
		return cred, time.Time{}, fmt.Errorf("failed to query password credential: %w", err)
	}

	plaintext, err := db.Decrypt(encrypted)
	if err != nil {
		return cred, time.Time{}, fmt.Errorf("failed to decrypt password: %w", err)
	}
	cred.Password = string(plaintext)

	return cred, savedAt, nil
}

// SaveFederated stores a federated credential, replacing any previous entry
// for the same subject. The ID token column is encrypted.
func (db *DB) SaveFederated(cred types.FederatedCredential) error {
	encrypted, err := db.Encrypt([]byte(cred.IDToken))
	if err != nil {
		return fmt.Errorf("failed to encrypt id token: %w", err)
	}

	_, err = db.conn.Exec(`
		INSERT INTO federated_credentials
			(subject_id, id_token, display_name, family_name, given_name, phone_number, profile_picture_uri, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(subject_id) DO UPDATE SET
			id_token = excluded.id_token,
			display_name = excluded.display_name,
			family_name = excluded.family_name,
			given_name = excluded.given_name,
			phone_number = excluded.phone_number,
			profile_picture_uri = excluded.profile_picture_uri,
			saved_at = CURRENT_TIMESTAMP`,
		cred.SubjectID, encrypted, cred.DisplayName, cred.FamilyName,
		cred.GivenName, cred.PhoneNumber, cred.ProfilePictureURI)
	if err != nil {
		return fmt.Errorf("failed to store federated credential: %w", err)
	}

	return nil
}

// LatestFederated returns the most recently saved federated credential
func (db *DB) LatestFederated() (types.FederatedCredential, time.Time, error) {
	var cred types.FederatedCredential
	var encrypted string
	var savedAt time.Time

	err := db.conn.QueryRow(`
		SELECT subject_id, id_token, display_name, family_name, given_name, phone_number, profile_picture_uri, saved_at
		FROM federated_credentials
		ORDER BY saved_at DESC, id DESC LIMIT 1`).Scan(
		&cred.SubjectID, &encrypted, &cred.DisplayName, &cred.FamilyName,
		&cred.GivenName, &cred.PhoneNumber, &cred.ProfilePictureURI, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return cred, time.Time{}, ErrNotFound
	}
	if err != nil {
		return cred, time.Time{}, fmt.Errorf("failed to query federated credential: %w", err)
	}

	plaintext, err := db.Decrypt(encrypted)
	if err != nil {
		return cred, time.Time{}, fmt.Errorf("failed to decrypt id token: %w", err)
	}
	cred.IDToken = string(plaintext)

	return cred, savedAt, nil
}

// SavePasskey stores a passkey credential record
func (db *DB) SavePasskey(row PasskeyRow) error {
	transports, err := json.Marshal(row.Transports)
	if err != nil {
		return fmt.Errorf("failed to marshal transports: %w", err)
	}

	_, err = db.conn.Exec(`
		INSERT INTO passkey_credentials
			(credential_id, rp_id, user_handle, public_key, algorithm, transports, client_data, attestation_object, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(credential_id) DO UPDATE SET
			public_key = excluded.public_key,
			algorithm = excluded.algorithm,
			transports = excluded.transports,
			client_data = excluded.client_data,
			attestation_object = excluded.attestation_object,
			saved_at = CURRENT_TIMESTAMP`,
		row.CredentialID, row.RPID, row.UserHandle, row.PublicKey,
		row.Algorithm, string(transports), row.ClientData, row.AttestationObject)
	if err != nil {
		return fmt.Errorf("failed to store passkey credential: %w", err)
	}

	return nil
}

// LatestPasskey returns the most recently saved passkey credential
func (db *DB) LatestPasskey() (PasskeyRow, time.Time, error) {
	var row PasskeyRow
	var transports string
	var savedAt time.Time

	err := db.conn.QueryRow(`
		SELECT credential_id, rp_id, user_handle, public_key, algorithm, transports, client_data, attestation_object, saved_at
		FROM passkey_credentials
		ORDER BY saved_at DESC, id DESC LIMIT 1`).Scan(
		&row.CredentialID, &row.RPID, &row.UserHandle, &row.PublicKey,
		&row.Algorithm, &transports, &row.ClientData, &row.AttestationObject, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return row, time.Time{}, ErrNotFound
	}
	if err != nil {
		return row, time.Time{}, fmt.Errorf("failed to query passkey credential: %w", err)
	}

	if transports != "" {
		if err := json.Unmarshal([]byte(transports), &row.Transports); err != nil {
			return row, time.Time{}, fmt.Errorf("failed to unmarshal transports: %w", err)
		}
	}

	return row, savedAt, nil
}

// ClearAll removes every stored credential. Used by logout.
func (db *DB) ClearAll() error {
	statements := []string{
		"DELETE FROM password_credentials",
		"DELETE FROM federated_credentials",
		"DELETE FROM passkey_credentials",
	}

	for _, stmt := range statements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("failed to clear credentials: %w", err)
		}
	}

	return nil
}
