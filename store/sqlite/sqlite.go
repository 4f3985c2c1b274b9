// Package sqlite is a store.Backend on SQLite. Bodies are stored as BSON so
// ids, datetimes and bytes keep their kinds. BSON datetimes hold
// milliseconds and float32 reads back as a double; store.Collection
// accounts for both.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/reoring/dstruct/codec"
	"github.com/reoring/dstruct/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB is a SQLite connection holding the documents table.
type DB struct {
	*sql.DB
}

// Open opens the database file in WAL mode.
func Open(file string) (*DB, error) {
	db, err := sql.Open("sqlite3", file+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA temp_store = MEMORY"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set pragma: %w", err)
	}
	return &DB{DB: db}, nil
}

type migration struct {
	version string
	stmts   string
}

// migrations lists the embedded scripts in version order.
func migrations() ([]migration, error) {
	names, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	out := make([]migration, 0, len(names))
	for _, name := range names {
		b, err := migrationsFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		out = append(out, migration{version: strings.TrimSuffix(path.Base(name), ".sql"), stmts: string(b)})
	}
	return out, nil
}

func (db *DB) appliedVersions() (map[string]bool, error) {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return nil, fmt.Errorf("create migrations table: %w", err)
	}
	rows, err := db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("query migrations: %w", err)
	}
	defer rows.Close()
	applied := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan migration: %w", err)
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func (db *DB) apply(m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(m.stmts); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
		return err
	}
	return tx.Commit()
}

// Migrate applies the embedded migrations not yet recorded, each in its own
// transaction.
func (db *DB) Migrate() error {
	applied, err := db.appliedVersions()
	if err != nil {
		return err
	}
	all, err := migrations()
	if err != nil {
		return err
	}
	for _, m := range all {
		if applied[m.version] {
			continue
		}
		if err := db.apply(m); err != nil {
			return fmt.Errorf("migration %s: %w", m.version, err)
		}
	}
	return nil
}

// Backend implements store.Backend on a migrated DB.
type Backend struct {
	db *DB
}

// NewBackend wraps db, which must already be migrated.
func NewBackend(db *DB) *Backend { return &Backend{db: db} }

// OpenBackend opens and migrates the database file.
func OpenBackend(file string) (*Backend, error) {
	db, err := Open(file)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return NewBackend(db), nil
}

func (b *Backend) Put(ctx context.Context, collection, key string, data any) error {
	body, err := codec.EncodeBSON(data)
	if err != nil {
		return err
	}
	_, err = b.db.ExecContext(ctx,
		`INSERT INTO documents (collection, doc_key, body, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (collection, doc_key) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		collection, key, body,
	)
	return err
}

func (b *Backend) Get(ctx context.Context, collection, key string) (any, error) {
	var body []byte
	err := b.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND doc_key = ?`,
		collection, key,
	).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return codec.DecodeBSON(body, nil)
}

func (b *Backend) Delete(ctx context.Context, collection, key string) error {
	res, err := b.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND doc_key = ?`,
		collection, key,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (b *Backend) List(ctx context.Context, collection string) ([]store.Record, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT doc_key, body FROM documents WHERE collection = ? ORDER BY doc_key`,
		collection,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []store.Record
	for rows.Next() {
		var (
			key  string
			body []byte
		)
		if err := rows.Scan(&key, &body); err != nil {
			return nil, err
		}
		data, err := codec.DecodeBSON(body, nil)
		if err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, key, err)
		}
		recs = append(recs, store.Record{Key: key, Data: data})
	}
	return recs, rows.Err()
}

// Close closes the database connection.
func (b *Backend) Close() error { return b.db.Close() }
