package cache

// schema is the additive, forward-compatible SQLite schema for the
// resolver's cache contract (spec.md §3/§4.5), grounded on the
// CREATE-TABLE-IF-NOT-EXISTS embedded-schema-string pattern used by
// steveyegge-beads and untoldecay-BeadsLog's internal/storage/sqlite
// packages in the retrieval pack.
const schema = `
CREATE TABLE IF NOT EXISTS recording (
    id TEXT PRIMARY KEY,
    payload TEXT NOT NULL,
    fetched_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS release (
    id TEXT PRIMARY KEY,
    payload TEXT NOT NULL,
    fetched_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS discogs_release (
    id TEXT PRIMARY KEY,
    payload TEXT NOT NULL,
    fetched_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS discogs_search (
    query_fingerprint TEXT PRIMARY KEY,
    payload TEXT NOT NULL,
    fetched_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS processed_files (
    path TEXT PRIMARY KEY,
    mtime_ns INTEGER NOT NULL,
    size_bytes INTEGER NOT NULL,
    organized INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS moves (
    source_path TEXT NOT NULL,
    target_path TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_moves_source ON moves(source_path);

CREATE TABLE IF NOT EXISTS directory_releases (
    directory_path TEXT PRIMARY KEY,
    provider TEXT NOT NULL,
    release_id TEXT NOT NULL,
    score REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS directory_hashes (
    directory_path TEXT PRIMARY KEY,
    hash TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS hash_releases (
    directory_hash TEXT PRIMARY KEY,
    provider TEXT NOT NULL,
    release_id TEXT NOT NULL,
    score REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS release_homes (
    release_key TEXT PRIMARY KEY,
    directory_path TEXT NOT NULL,
    track_count INTEGER NOT NULL,
    directory_hash TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS ignored_directories (
    directory_path TEXT PRIMARY KEY,
    reason TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS deferred_prompts (
    directory_path TEXT PRIMARY KEY,
    reason TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS canonical_names (
    cluster_key TEXT PRIMARY KEY,
    display_name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    event TEXT NOT NULL,
    payload TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_events_event ON audit_events(event);

CREATE TABLE IF NOT EXISTS schema_meta (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// migrations holds additive ALTER TABLE statements applied after the base
// schema, in order, the way steveyegge-beads' numbered migrations/NNN_*.go
// files are applied — kept here as a single ordered slice since the
// resolver's migration surface is small enough not to warrant one file per
// migration yet.
var migrations = []string{
	// Example shape for a future additive column; intentionally empty for
	// the initial schema version. New entries append here, never rewrite
	// history.
}
