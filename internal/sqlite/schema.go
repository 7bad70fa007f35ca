// Package sqlite implements the embedded-database storage backend for shelf.
package sqlite

// Schema DDL. Statements are idempotent so EnsureSchema can run on every
// startup against an existing database.
const (
	// AUTOINCREMENT keeps ids from being reused after the highest row is
	// deleted; sqlite_sequence also advances when rows are inserted with
	// explicit ids during migration.
	createProjects = `CREATE TABLE IF NOT EXISTS projects (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL CHECK (name <> ''),
    description TEXT NOT NULL DEFAULT '',
    url TEXT NOT NULL CHECK (url <> ''),
    path TEXT NOT NULL DEFAULT '',
    image TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`
)

// Connection pragmas applied once after opening.
var pragmas = []string{
	"PRAGMA busy_timeout = 5000;",
	"PRAGMA journal_mode = WAL;",
	"PRAGMA synchronous = NORMAL;",
	"PRAGMA foreign_keys = ON;",
}

// schemaDDL lists all CREATE statements in dependency order.
var schemaDDL = []string{
	createProjects,
}

// projectColumns is the column list shared by every SELECT.
const projectColumns = "id, name, description, url, path, image, created_at, updated_at"
