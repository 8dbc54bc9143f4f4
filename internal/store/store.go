package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite" // pure-Go SQLite driver, no CGO

	"github.com/hermes-project/hermes/internal/herrors"
)

// CurrentSchemaVersion is the schema version this build creates/expects.
// Forward-compatible: new columns may be added with defaults without
// bumping this.
const CurrentSchemaVersion = 1

// Store owns the single SQLite connection for one project's index. Every
// statement, read or write, passes through its mutex: the embedded engine
// is not multi-writer, so one lock gives simple, correct ordering and
// bounds contention to short statements.
type Store struct {
	mu        sync.Mutex
	db        *sql.DB
	path      string
	projectID string
}

// Open opens (creating if absent) the on-disk store at path, bound to
// projectID. It enables WAL + synchronous=NORMAL and runs migrations.
func Open(path, projectID string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, herrors.Wrap(herrors.ErrCodeFilePermission, err)
	}

	// A short-lived OS-level lock guards first-open schema creation against
	// a second hermes process racing to initialize the same fresh database;
	// the in-process mutex below only serializes this process's goroutines.
	fl := flock.New(path + ".lock")
	if err := fl.Lock(); err != nil {
		return nil, herrors.Wrap(herrors.ErrCodeFilePermission, err)
	}
	defer func() { _ = fl.Unlock() }()

	dsn := path + "?_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, herrors.Wrap(herrors.ErrCodeFileNotFound, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, herrors.Wrap(herrors.ErrCodeStorageError, err)
		}
	}

	s := &Store{db: db, path: path, projectID: projectID}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// OpenInMemory opens a private in-memory store, used by tests and by
// callers that don't need persistence.
func OpenInMemory(projectID string) (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, herrors.Wrap(herrors.ErrCodeStorageError, err)
	}
	db.SetMaxOpenConns(1)
	s := &Store{db: db, path: ":memory:", projectID: projectID}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// ProjectID returns the project label this store instance is bound to.
func (s *Store) ProjectID() string { return s.projectID }

// Path returns the database file path ("" / ":memory:" for in-memory stores).
func (s *Store) Path() string { return s.path }

// DB returns the underlying handle, for components (graph, temporal,
// telemetry) that need to run their own statements under the store's lock.
func (s *Store) DB() *sql.DB { return s.db }

// Lock acquires the store's write/read mutex and returns the release func.
// Every statement-issuing method in this package and its sibling
// components (graph, temporal, telemetry, hash tracker) must be wrapped
// with this.
func (s *Store) Lock() func() {
	s.mu.Lock()
	return s.mu.Unlock
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	unlock := s.Lock()
	defer unlock()
	return s.db.Close()
}

var schemaDDL = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS nodes (
	id TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	name TEXT NOT NULL,
	node_type TEXT NOT NULL,
	file_path TEXT,
	start_line INTEGER,
	end_line INTEGER,
	summary TEXT,
	content_hash TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_nodes_project ON nodes(project_id);
CREATE INDEX IF NOT EXISTS idx_nodes_name_lower ON nodes(project_id, name COLLATE NOCASE);
CREATE INDEX IF NOT EXISTS idx_nodes_file_path ON nodes(project_id, file_path);

CREATE TABLE IF NOT EXISTS edges (
	id TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	source_id TEXT NOT NULL,
	target_id TEXT NOT NULL,
	edge_type TEXT NOT NULL,
	weight REAL NOT NULL DEFAULT 1.0,
	UNIQUE(source_id, target_id, edge_type)
);
CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source_id);
CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target_id);

CREATE VIRTUAL TABLE IF NOT EXISTS fts_content USING fts5(
	node_id UNINDEXED,
	project_id UNINDEXED,
	name,
	content,
	file_path UNINDEXED,
	tokenize = 'porter unicode61'
);

CREATE TABLE IF NOT EXISTS file_hashes (
	key TEXT NOT NULL,
	project_id TEXT NOT NULL,
	hash TEXT NOT NULL,
	indexed_at TEXT NOT NULL,
	PRIMARY KEY (project_id, key)
);

CREATE TABLE IF NOT EXISTS temporal_facts (
	id TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	node_id TEXT,
	fact_type TEXT NOT NULL,
	content TEXT NOT NULL,
	valid_from TEXT NOT NULL,
	valid_to TEXT,
	superseded_by TEXT,
	source_ref TEXT
);
CREATE INDEX IF NOT EXISTS idx_facts_project_type ON temporal_facts(project_id, fact_type);
CREATE INDEX IF NOT EXISTS idx_facts_node ON temporal_facts(node_id);

CREATE TABLE IF NOT EXISTS accounting (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id TEXT NOT NULL,
	session_id TEXT NOT NULL,
	query_text TEXT NOT NULL,
	pointer_tokens INTEGER NOT NULL,
	fetched_tokens INTEGER NOT NULL,
	traditional_estimate INTEGER NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_accounting_project ON accounting(project_id);
CREATE INDEX IF NOT EXISTS idx_accounting_session ON accounting(project_id, session_id);

-- Reserved for a future pointer-level disk cache; the result/fetch caches
-- today live only in memory.
CREATE TABLE IF NOT EXISTS pointer_cache (
	cache_key TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	payload TEXT NOT NULL,
	inserted_at TEXT NOT NULL
);

INSERT OR IGNORE INTO schema_version (version) VALUES (1);
`

func (s *Store) migrate() error {
	unlock := s.Lock()
	defer unlock()

	if _, err := s.db.Exec(schemaDDL); err != nil {
		return herrors.Wrap(herrors.ErrCodeStorageError, fmt.Errorf("init schema: %w", err))
	}
	return nil
}

// nowRFC3339 returns the current time formatted the way every timestamp
// column in this store is stored: UTC, RFC3339.
func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
