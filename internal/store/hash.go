package store

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/hermes-project/hermes/internal/herrors"
)

// HashTracker answers whether a file or chunk's content has changed since
// it was last indexed, using one file_hashes table keyed either by a bare
// file path ("path") or a chunk key ("path::chunk-name") — both share the
// same (project_id, key) primary key, so no schema split is needed.
type HashTracker struct {
	store *Store
}

// NewHashTracker returns a tracker bound to store.
func NewHashTracker(s *Store) *HashTracker {
	return &HashTracker{store: s}
}

// ComputeHash returns the hex SHA-256 digest of content.
func ComputeHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// IsUnchanged reports whether the stored hash for key matches hash.
func (h *HashTracker) IsUnchanged(key, hash string) (bool, error) {
	unlock := h.store.Lock()
	defer unlock()

	var stored string
	row := h.store.db.QueryRow(
		`SELECT hash FROM file_hashes WHERE project_id = ? AND key = ?`,
		h.store.projectID, key,
	)
	if err := row.Scan(&stored); err != nil {
		return false, nil // not found: not unchanged
	}
	return stored == hash, nil
}

// UpdateHash records key's current hash.
func (h *HashTracker) UpdateHash(key, hash string) error {
	unlock := h.store.Lock()
	defer unlock()

	_, err := h.store.db.Exec(
		`INSERT INTO file_hashes (project_id, key, hash, indexed_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(project_id, key) DO UPDATE SET hash = excluded.hash, indexed_at = excluded.indexed_at`,
		h.store.projectID, key, hash, nowRFC3339(),
	)
	if err != nil {
		return herrors.StorageError("update file hash", err)
	}
	return nil
}

// IsChunkUnchanged is IsUnchanged specialized for chunk keys, kept as a
// distinct name so call sites read clearly.
func (h *HashTracker) IsChunkUnchanged(chunkKey, currentHash string) (bool, error) {
	return h.IsUnchanged(chunkKey, currentHash)
}

// UpdateChunkHash is UpdateHash specialized for chunk keys.
func (h *HashTracker) UpdateChunkHash(chunkKey, hash string) error {
	return h.UpdateHash(chunkKey, hash)
}

// ChunkKey builds the "path::chunk-name" composite key a chunk's hash is
// stored under.
func ChunkKey(filePath, chunkName string) string {
	return filePath + "::" + chunkName
}
