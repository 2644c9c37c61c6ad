package database

// migrations run in order; position i+1 is the schema version it produces.
// Never edit or reorder an applied entry, append a new one instead.
var migrations = []string{
	migrationKVEntries,
	migrationKVIndexes,
}

// kv_entries backs the ephemeral key-value store. expires_at is unix
// milliseconds; 0 means the entry never expires.
const migrationKVEntries = `
CREATE TABLE IF NOT EXISTS kv_entries (
    key TEXT PRIMARY KEY,
    value BLOB NOT NULL,
    expires_at INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

const migrationKVIndexes = `
CREATE INDEX IF NOT EXISTS idx_kv_entries_expires_at ON kv_entries(expires_at);
`
