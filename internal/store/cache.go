// Package store implements a content-addressed cache for compiled bytecode
// programs (SPEC_FULL.md §4.9): callers compile, look the Program up by its
// Digest, and store it when no entry exists yet. It is grounded on the
// teacher's internal/database package (db_manager.go/database.go), which
// picks a driver by DSN scheme and blank-imports every supported one; the
// same multi-driver pattern is reused here across the pack's SQL drivers
// instead of Sentra's own multi-database scripting surface.
package store

import (
	"bytes"
	"database/sql"
	"encoding/gob"
	"fmt"
	"strings"

	_ "github.com/denisenkom/go-mssqldb" // DSN scheme: sqlserver://
	_ "github.com/go-sql-driver/mysql"   // DSN scheme: mysql://
	_ "github.com/lib/pq"                // DSN scheme: postgres://
	_ "modernc.org/sqlite"               // DSN scheme: sqlite://, or a bare file path

	"ysetl/internal/bytecode"
	verrors "ysetl/internal/errors"
)

// Cache is a SQL-backed store of compiled Programs keyed by Digest().
type Cache struct {
	db     *sql.DB
	driver string
}

// Open connects to the cache database named by dsn and ensures its table
// exists. The DSN's scheme prefix selects the driver, following the
// teacher's DatabaseModule dispatch: "postgres://" or "postgresql://" for
// lib/pq, "mysql://" for go-sql-driver/mysql, "sqlserver://" for
// go-mssqldb, anything else (including a bare file path) falls back to
// modernc.org/sqlite, the pure-Go driver this repo carries in place of the
// teacher's cgo-based mattn/go-sqlite3.
func Open(dsn string) (*Cache, error) {
	driver, source := resolveDriver(dsn)
	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, verrors.New(verrors.Unsupported, "opening program cache %q: %v", dsn, err)
	}
	if err := db.Ping(); err != nil {
		return nil, verrors.New(verrors.Unsupported, "pinging program cache %q: %v", dsn, err)
	}
	c := &Cache{db: db, driver: driver}
	if err := c.ensureSchema(driver); err != nil {
		return nil, err
	}
	return c, nil
}

// placeholder returns the nth (1-indexed) bind-parameter marker for the
// cache's driver. lib/pq (driver "postgres") requires numbered $1, $2, ...
// markers and does not accept "?" at all; every other driver in this
// package's DSN-scheme table (modernc.org/sqlite, go-sql-driver/mysql,
// go-mssqldb) accepts plain "?" markers, so only postgres needs its own
// case.
func (c *Cache) placeholder(n int) string {
	if c.driver == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func resolveDriver(dsn string) (driver, source string) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres", dsn
	case strings.HasPrefix(dsn, "mysql://"):
		return "mysql", strings.TrimPrefix(dsn, "mysql://")
	case strings.HasPrefix(dsn, "sqlserver://"):
		return "sqlserver", dsn
	case strings.HasPrefix(dsn, "sqlite://"):
		return "sqlite", strings.TrimPrefix(dsn, "sqlite://")
	default:
		return "sqlite", dsn
	}
}

func (c *Cache) ensureSchema(driver string) error {
	ddl := `CREATE TABLE IF NOT EXISTS program_cache (
		digest VARCHAR(64) PRIMARY KEY,
		payload BLOB,
		cached_at BIGINT
	)`
	if driver == "postgres" {
		ddl = `CREATE TABLE IF NOT EXISTS program_cache (
			digest VARCHAR(64) PRIMARY KEY,
			payload BYTEA,
			cached_at BIGINT
		)`
	}
	if _, err := c.db.Exec(ddl); err != nil {
		return verrors.New(verrors.Unsupported, "creating program_cache table: %v", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// payload is the on-disk encoding of a cached Program, via encoding/gob
// (matching the plain-struct, no-interface-fields shape of bytecode.Program
// and value.Value — nothing here needs gob.Register).
type payload struct {
	Instructions    []byte
	Constants       []byte // gob-encoded []value.Value, kept as its own blob for forward-compat
	GlobalSlotCount int
}

// Get looks up a Program by digest. A cache miss is reported as (nil,
// false, nil) — it is never an error, per SPEC_FULL.md's cache policy: a
// cold or unreachable cache degrades to "always recompile", not failure.
func (c *Cache) Get(digest string) (*bytecode.Program, bool, error) {
	var blob []byte
	var cachedAt int64
	query := fmt.Sprintf(`SELECT payload, cached_at FROM program_cache WHERE digest = %s`, c.placeholder(1))
	row := c.db.QueryRow(query, digest)
	if err := row.Scan(&blob, &cachedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, nil
	}

	prog, err := decodeProgram(blob)
	if err != nil {
		// A corrupted cache entry is also treated as a miss, not an error —
		// the caller simply recompiles and a later Put overwrites it.
		return nil, false, nil
	}
	prog.SetCachedAt(cachedAt)
	return prog, true, nil
}

// Put stores prog under its own Digest, stamping CachedAt with storedAt
// (unix seconds; passed in rather than read from time.Now so the cache
// package never reaches for wall-clock time itself). Rather than an
// upsert — whose syntax differs across all four supported drivers
// (ON CONFLICT for sqlite/postgres, ON DUPLICATE KEY for mysql, MERGE for
// sqlserver) — Put deletes any existing row for this digest and inserts
// fresh; a content-addressed cache has no concurrent-writer correctness
// requirement an atomic upsert would buy, and a digest collision on two
// different payloads can't happen short of a hash break.
func (c *Cache) Put(prog *bytecode.Program, storedAt int64) error {
	blob, err := encodeProgram(prog)
	if err != nil {
		return verrors.New(verrors.Unsupported, "encoding program for cache: %v", err)
	}
	digest := prog.Digest()

	delQuery := fmt.Sprintf(`DELETE FROM program_cache WHERE digest = %s`, c.placeholder(1))
	if _, err := c.db.Exec(delQuery, digest); err != nil {
		return verrors.New(verrors.Unsupported, "evicting stale cache entry: %v", err)
	}

	insQuery := fmt.Sprintf(
		`INSERT INTO program_cache (digest, payload, cached_at) VALUES (%s, %s, %s)`,
		c.placeholder(1), c.placeholder(2), c.placeholder(3),
	)
	if _, err := c.db.Exec(insQuery, digest, blob, storedAt); err != nil {
		return verrors.New(verrors.Unsupported, "writing program to cache: %v", err)
	}
	prog.SetCachedAt(storedAt)
	return nil
}

func encodeProgram(prog *bytecode.Program) ([]byte, error) {
	var constBuf bytes.Buffer
	if err := gob.NewEncoder(&constBuf).Encode(prog.Constants); err != nil {
		return nil, err
	}
	p := payload{
		Instructions:    prog.Instructions,
		Constants:       constBuf.Bytes(),
		GlobalSlotCount: prog.GlobalSlotCount,
	}
	var out bytes.Buffer
	if err := gob.NewEncoder(&out).Encode(p); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func decodeProgram(blob []byte) (*bytecode.Program, error) {
	var p payload
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&p); err != nil {
		return nil, err
	}
	prog := bytecode.New()
	prog.Instructions = p.Instructions
	prog.GlobalSlotCount = p.GlobalSlotCount
	if err := gob.NewDecoder(bytes.NewReader(p.Constants)).Decode(&prog.Constants); err != nil {
		return nil, fmt.Errorf("decoding cached constants: %w", err)
	}
	return prog, nil
}
