// Package cache implements the resolver's persistent directory/release
// cache contract (spec.md §3): a single SQLite database, opened with a
// single writer connection the way the teacher's internal/core packages
// never needed to but untoldecay-BeadsLog's storage layer does, so that
// concurrent directory workers never race on writes.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"resolverd/internal/domain"
)

// Store wraps the cache database handle and exposes the operations the
// resolver pipeline needs against it.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path, applies
// the base schema and any additive migrations, and restricts the pool to a
// single connection — SQLite only tolerates one writer at a time, and the
// resolver's worker pool (internal/resolver/pool.go) already serializes
// writes through this single *sql.DB rather than fighting SQLITE_BUSY.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: apply schema: %w", err)
	}
	for i, stmt := range migrations {
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			if strings.Contains(err.Error(), "duplicate column") {
				continue
			}
			db.Close()
			return nil, fmt.Errorf("cache: apply migration %d: %w", i, err)
		}
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// DirectoryHash returns the last recorded content hash for directoryPath,
// and whether one was found.
func (s *Store) DirectoryHash(ctx context.Context, directoryPath string) (string, bool, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, `SELECT hash FROM directory_hashes WHERE directory_path = ?`, directoryPath).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache: read directory hash: %w", err)
	}
	return hash, true, nil
}

// SetDirectoryHash records directoryPath's current content hash, so the
// next run can skip re-resolving an unchanged directory.
func (s *Store) SetDirectoryHash(ctx context.Context, directoryPath, hash string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO directory_hashes (directory_path, hash) VALUES (?, ?)
		ON CONFLICT(directory_path) DO UPDATE SET hash = excluded.hash
	`, directoryPath, hash)
	if err != nil {
		return fmt.Errorf("cache: set directory hash: %w", err)
	}
	return nil
}

// DirectoryRelease returns the previously applied release for directoryPath
// (provider, release id, score), if one is recorded.
func (s *Store) DirectoryRelease(ctx context.Context, directoryPath string) (provider domain.Provider, releaseID string, score float64, found bool, err error) {
	var p string
	row := s.db.QueryRowContext(ctx, `SELECT provider, release_id, score FROM directory_releases WHERE directory_path = ?`, directoryPath)
	err = row.Scan(&p, &releaseID, &score)
	if err == sql.ErrNoRows {
		return "", "", 0, false, nil
	}
	if err != nil {
		return "", "", 0, false, fmt.Errorf("cache: read directory release: %w", err)
	}
	return domain.Provider(p), releaseID, score, true, nil
}

// SetDirectoryRelease records the release applied to directoryPath.
func (s *Store) SetDirectoryRelease(ctx context.Context, directoryPath string, provider domain.Provider, releaseID string, score float64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO directory_releases (directory_path, provider, release_id, score) VALUES (?, ?, ?, ?)
		ON CONFLICT(directory_path) DO UPDATE SET provider = excluded.provider, release_id = excluded.release_id, score = excluded.score
	`, directoryPath, string(provider), releaseID, score)
	if err != nil {
		return fmt.Errorf("cache: set directory release: %w", err)
	}
	return nil
}

// HashRelease returns the release previously bound to a content hash
// (independent of directory path — the "moved but unchanged" case).
func (s *Store) HashRelease(ctx context.Context, hash string) (provider domain.Provider, releaseID string, score float64, found bool, err error) {
	var p string
	row := s.db.QueryRowContext(ctx, `SELECT provider, release_id, score FROM hash_releases WHERE directory_hash = ?`, hash)
	err = row.Scan(&p, &releaseID, &score)
	if err == sql.ErrNoRows {
		return "", "", 0, false, nil
	}
	if err != nil {
		return "", "", 0, false, fmt.Errorf("cache: read hash release: %w", err)
	}
	return domain.Provider(p), releaseID, score, true, nil
}

// SetHashRelease binds a content hash to the release applied for it.
func (s *Store) SetHashRelease(ctx context.Context, hash string, provider domain.Provider, releaseID string, score float64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO hash_releases (directory_hash, provider, release_id, score) VALUES (?, ?, ?, ?)
		ON CONFLICT(directory_hash) DO UPDATE SET provider = excluded.provider, release_id = excluded.release_id, score = excluded.score
	`, hash, string(provider), releaseID, score)
	if err != nil {
		return fmt.Errorf("cache: set hash release: %w", err)
	}
	return nil
}

// ReleaseHome is the recorded "best known directory" for a release key.
type ReleaseHome struct {
	DirectoryPath string
	TrackCount    int
	DirectoryHash string
}

// ReleaseHome returns the recorded home directory for releaseKey, if any.
func (s *Store) ReleaseHome(ctx context.Context, releaseKey string) (ReleaseHome, bool, error) {
	var h ReleaseHome
	row := s.db.QueryRowContext(ctx, `SELECT directory_path, track_count, directory_hash FROM release_homes WHERE release_key = ?`, releaseKey)
	err := row.Scan(&h.DirectoryPath, &h.TrackCount, &h.DirectoryHash)
	if err == sql.ErrNoRows {
		return ReleaseHome{}, false, nil
	}
	if err != nil {
		return ReleaseHome{}, false, fmt.Errorf("cache: read release home: %w", err)
	}
	return h, true, nil
}

// SetReleaseHome records (or replaces) the home directory for releaseKey.
func (s *Store) SetReleaseHome(ctx context.Context, releaseKey string, home ReleaseHome) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO release_homes (release_key, directory_path, track_count, directory_hash) VALUES (?, ?, ?, ?)
		ON CONFLICT(release_key) DO UPDATE SET directory_path = excluded.directory_path, track_count = excluded.track_count, directory_hash = excluded.directory_hash
	`, releaseKey, home.DirectoryPath, home.TrackCount, home.DirectoryHash)
	if err != nil {
		return fmt.Errorf("cache: set release home: %w", err)
	}
	return nil
}

// CachedRelease returns the previously fetched release payload for
// releaseKey ("<provider>:<release_id>"), decoded into dest, if cached.
func (s *Store) CachedRelease(ctx context.Context, releaseKey string, dest any) (bool, error) {
	var payload string
	row := s.db.QueryRowContext(ctx, `SELECT payload FROM release WHERE id = ?`, releaseKey)
	err := row.Scan(&payload)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache: read release: %w", err)
	}
	if err := json.Unmarshal([]byte(payload), dest); err != nil {
		return false, fmt.Errorf("cache: decode cached release %s: %w", releaseKey, err)
	}
	return true, nil
}

// PutRelease stores a release payload under releaseKey.
func (s *Store) PutRelease(ctx context.Context, releaseKey string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode release %s: %w", releaseKey, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO release (id, payload, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at
	`, releaseKey, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("cache: put release %s: %w", releaseKey, err)
	}
	return nil
}

// CachedDiscogsSearch returns a cached Discogs search result for
// queryFingerprint, decoded into dest.
func (s *Store) CachedDiscogsSearch(ctx context.Context, queryFingerprint string, dest any) (bool, error) {
	var payload string
	row := s.db.QueryRowContext(ctx, `SELECT payload FROM discogs_search WHERE query_fingerprint = ?`, queryFingerprint)
	err := row.Scan(&payload)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache: read discogs search: %w", err)
	}
	if err := json.Unmarshal([]byte(payload), dest); err != nil {
		return false, fmt.Errorf("cache: decode cached discogs search: %w", err)
	}
	return true, nil
}

// PutDiscogsSearch caches a Discogs search result under queryFingerprint.
func (s *Store) PutDiscogsSearch(ctx context.Context, queryFingerprint string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode discogs search: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO discogs_search (query_fingerprint, payload, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(query_fingerprint) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at
	`, queryFingerprint, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("cache: put discogs search: %w", err)
	}
	return nil
}

// IsProcessed reports whether path was already organized in a prior run
// with unchanged size/mtime, letting the pipeline skip re-applying it.
func (s *Store) IsProcessed(ctx context.Context, path string, mtimeNs, sizeBytes int64) (bool, error) {
	var gotMtime, gotSize int64
	var organized int
	row := s.db.QueryRowContext(ctx, `SELECT mtime_ns, size_bytes, organized FROM processed_files WHERE path = ?`, path)
	err := row.Scan(&gotMtime, &gotSize, &organized)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache: read processed_files: %w", err)
	}
	return organized != 0 && gotMtime == mtimeNs && gotSize == sizeBytes, nil
}

// MarkProcessed records that path has been organized at its current
// mtime/size.
func (s *Store) MarkProcessed(ctx context.Context, path string, mtimeNs, sizeBytes int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO processed_files (path, mtime_ns, size_bytes, organized) VALUES (?, ?, ?, 1)
		ON CONFLICT(path) DO UPDATE SET mtime_ns = excluded.mtime_ns, size_bytes = excluded.size_bytes, organized = 1
	`, path, mtimeNs, sizeBytes)
	if err != nil {
		return fmt.Errorf("cache: mark processed: %w", err)
	}
	return nil
}

// RecordMove appends an entry to the moves ledger, used both for
// diagnostics and for "moves rollback".
func (s *Store) RecordMove(ctx context.Context, sourcePath, targetPath string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO moves (source_path, target_path) VALUES (?, ?)`, sourcePath, targetPath)
	if err != nil {
		return fmt.Errorf("cache: record move: %w", err)
	}
	return nil
}

// Move is one recorded relocation.
type Move struct {
	SourcePath string
	TargetPath string
	CreatedAt  time.Time
}

// RecentMoves returns the most recent limit moves, newest first, for the
// "moves rollback" CLI command.
func (s *Store) RecentMoves(ctx context.Context, limit int) ([]Move, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT source_path, target_path, created_at FROM moves ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("cache: list moves: %w", err)
	}
	defer rows.Close()

	var moves []Move
	for rows.Next() {
		var m Move
		if err := rows.Scan(&m.SourcePath, &m.TargetPath, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("cache: scan move: %w", err)
		}
		moves = append(moves, m)
	}
	return moves, rows.Err()
}

// IsIgnored reports whether directoryPath was marked to be left alone.
func (s *Store) IsIgnored(ctx context.Context, directoryPath string) (bool, error) {
	var reason string
	row := s.db.QueryRowContext(ctx, `SELECT reason FROM ignored_directories WHERE directory_path = ?`, directoryPath)
	err := row.Scan(&reason)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache: read ignored_directories: %w", err)
	}
	return true, nil
}

// IgnoreDirectory marks directoryPath to be skipped on future scans.
func (s *Store) IgnoreDirectory(ctx context.Context, directoryPath, reason string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ignored_directories (directory_path, reason) VALUES (?, ?)
		ON CONFLICT(directory_path) DO UPDATE SET reason = excluded.reason
	`, directoryPath, reason)
	if err != nil {
		return fmt.Errorf("cache: ignore directory: %w", err)
	}
	return nil
}

// DeferPrompt records that directoryPath needs an interactive decision the
// next time the operator runs "deferred process".
func (s *Store) DeferPrompt(ctx context.Context, directoryPath, reason string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO deferred_prompts (directory_path, reason) VALUES (?, ?)
		ON CONFLICT(directory_path) DO UPDATE SET reason = excluded.reason
	`, directoryPath, reason)
	if err != nil {
		return fmt.Errorf("cache: defer prompt: %w", err)
	}
	return nil
}

// DeferredPrompt is one directory awaiting an interactive decision.
type DeferredPrompt struct {
	DirectoryPath string
	Reason        string
	CreatedAt     time.Time
}

// ListDeferredPrompts returns every directory currently awaiting a
// decision, oldest first.
func (s *Store) ListDeferredPrompts(ctx context.Context) ([]DeferredPrompt, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT directory_path, reason, created_at FROM deferred_prompts ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("cache: list deferred prompts: %w", err)
	}
	defer rows.Close()

	var out []DeferredPrompt
	for rows.Next() {
		var p DeferredPrompt
		if err := rows.Scan(&p.DirectoryPath, &p.Reason, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("cache: scan deferred prompt: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ClearDeferredPrompt removes directoryPath from the deferred queue once
// it has been resolved.
func (s *Store) ClearDeferredPrompt(ctx context.Context, directoryPath string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM deferred_prompts WHERE directory_path = ?`, directoryPath)
	if err != nil {
		return fmt.Errorf("cache: clear deferred prompt: %w", err)
	}
	return nil
}

// CanonicalName returns the display name recorded for an artist/album
// cluster key, used to keep "The Beatles" and "Beatles, The" from
// producing two different organizer folders.
func (s *Store) CanonicalName(ctx context.Context, clusterKey string) (string, bool, error) {
	var name string
	row := s.db.QueryRowContext(ctx, `SELECT display_name FROM canonical_names WHERE cluster_key = ?`, clusterKey)
	err := row.Scan(&name)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache: read canonical name: %w", err)
	}
	return name, true, nil
}

// SetCanonicalName records the display name to use for clusterKey.
func (s *Store) SetCanonicalName(ctx context.Context, clusterKey, displayName string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO canonical_names (cluster_key, display_name) VALUES (?, ?)
		ON CONFLICT(cluster_key) DO UPDATE SET display_name = excluded.display_name
	`, clusterKey, displayName)
	if err != nil {
		return fmt.Errorf("cache: set canonical name: %w", err)
	}
	return nil
}

// AppendAuditEvent appends an immutable record to the audit log.
func (s *Store) AppendAuditEvent(ctx context.Context, event string, payload any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("cache: encode audit event %s: %w", event, err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO audit_events (event, payload) VALUES (?, ?)`, event, string(encoded))
	if err != nil {
		return fmt.Errorf("cache: append audit event %s: %w", event, err)
	}
	return nil
}
