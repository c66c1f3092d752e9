package database

import (
	"fmt"
)

// migrate runs database migrations to create the required schema
func (db *DB) migrate() error {
	migrations := []string{
		createPasswordCredentialsTable,
		createFederatedCredentialsTable,
		createPasskeyCredentialsTable,
		createIndexes,
	}

	for i, migration := range migrations {
		if _, err := db.conn.Exec(migration); err != nil {
			return fmt.Errorf("failed to run migration %d: %w", i+1, err)
		}
	}

	return nil
}

const createPasswordCredentialsTable = `
CREATE TABLE IF NOT EXISTS password_credentials (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT UNIQUE NOT NULL,
    password TEXT NOT NULL, -- Encrypted
    saved_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`

const createFederatedCredentialsTable = `
CREATE TABLE IF NOT EXISTS federated_credentials (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    subject_id TEXT UNIQUE NOT NULL,
    id_token TEXT NOT NULL, -- Encrypted
    display_name TEXT,
    family_name TEXT,
    given_name TEXT,
    phone_number TEXT,
    profile_picture_uri TEXT,
    saved_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`

const createPasskeyCredentialsTable = `
CREATE TABLE IF NOT EXISTS passkey_credentials (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    credential_id TEXT UNIQUE NOT NULL,
    rp_id TEXT NOT NULL,
    user_handle TEXT NOT NULL,
    public_key TEXT NOT NULL,
    algorithm INTEGER NOT NULL,
    transports TEXT, -- JSON array
    client_data TEXT,
    attestation_object TEXT,
    saved_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`

const createIndexes = `
CREATE INDEX IF NOT EXISTS idx_password_saved_at ON password_credentials(saved_at);
CREATE INDEX IF NOT EXISTS idx_federated_saved_at ON federated_credentials(saved_at);
CREATE INDEX IF NOT EXISTS idx_passkey_rp_id ON passkey_credentials(rp_id);
CREATE INDEX IF NOT EXISTS idx_passkey_saved_at ON passkey_credentials(saved_at);`
