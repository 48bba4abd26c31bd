package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS user_roles (
    user_id INTEGER NOT NULL REFERENCES users(id),
    role    TEXT NOT NULL CHECK (role IN ('admin', 'owner', 'tenant', 'user')),
    PRIMARY KEY (user_id, role)
);

CREATE TABLE IF NOT EXISTS item_categories (
    id          INTEGER PRIMARY KEY,
    name        TEXT NOT NULL UNIQUE,
    description TEXT
);

CREATE TABLE IF NOT EXISTS items (
    id            INTEGER PRIMARY KEY,
    owner_id      INTEGER NOT NULL REFERENCES users(id),
    category_id   INTEGER REFERENCES item_categories(id) ON DELETE SET NULL,
    name          TEXT NOT NULL,
    description   TEXT,
    price_per_day REAL NOT NULL DEFAULT 0 CHECK (price_per_day >= 0),
    status        TEXT NOT NULL DEFAULT 'approving' CHECK (status IN ('public', 'approving', 'denied', 'deleted')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE TABLE IF NOT EXISTS loans (
    id         INTEGER PRIMARY KEY,
    item_id    INTEGER NOT NULL REFERENCES items(id),
    tenant_id  INTEGER NOT NULL REFERENCES users(id),
    status     TEXT NOT NULL DEFAULT 'inquired',
    from_date  DATETIME NOT NULL,
    to_date    DATETIME NOT NULL,
    version    INTEGER NOT NULL DEFAULT 1,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK (to_date >= from_date)
);

CREATE INDEX IF NOT EXISTS idx_loans_tenant ON loans(tenant_id);
CREATE INDEX IF NOT EXISTS idx_loans_item ON loans(item_id);

CREATE TABLE IF NOT EXISTS pickup_protocols (
    id                          INTEGER PRIMARY KEY,
    loan_id                     INTEGER NOT NULL UNIQUE REFERENCES loans(id),
    description                 TEXT NOT NULL DEFAULT '',
    accepted_refundable_deposit REAL NOT NULL DEFAULT 0,
    confirmed_at                DATETIME,
    created_at                  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at                  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS return_protocols (
    id                          INTEGER PRIMARY KEY,
    loan_id                     INTEGER NOT NULL UNIQUE REFERENCES loans(id),
    description                 TEXT NOT NULL DEFAULT '',
    returned_refundable_deposit REAL NOT NULL DEFAULT 0,
    confirmed_at                DATETIME,
    created_at                  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at                  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS images (
    id                 INTEGER PRIMARY KEY,
    owner_id           INTEGER NOT NULL REFERENCES users(id),
    item_id            INTEGER REFERENCES items(id),
    pickup_protocol_id INTEGER REFERENCES pickup_protocols(id),
    return_protocol_id INTEGER REFERENCES return_protocols(id),
    data               BLOB NOT NULL,
    mime               TEXT NOT NULL,
    created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK ((item_id IS NOT NULL) + (pickup_protocol_id IS NOT NULL) + (return_protocol_id IS NOT NULL) <= 1)
);

CREATE TABLE IF NOT EXISTS profiles (
    user_id      INTEGER PRIMARY KEY REFERENCES users(id),
    display_name TEXT NOT NULL DEFAULT '',
    bio          TEXT,
    image_id     INTEGER REFERENCES images(id) ON DELETE SET NULL,
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS reviews (
    id         INTEGER PRIMARY KEY,
    loan_id    INTEGER NOT NULL REFERENCES loans(id),
    author_id  INTEGER NOT NULL REFERENCES users(id),
    comment    TEXT NOT NULL DEFAULT '',
    rating     INTEGER NOT NULL CHECK (rating BETWEEN 0 AND 5),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (loan_id, author_id)
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: profile images are looked up by owner when listing a
	// user's uploads.
	`CREATE INDEX IF NOT EXISTS idx_images_owner ON images(owner_id)`,
}

// EnsureSchema creates all tables and indexes if they don't already exist
// and applies pending migrations.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}
	return nil
}
