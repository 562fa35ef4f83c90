// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// modernc.org/sqlite is a pure Go translation of SQLite, so the binary builds
// without a C toolchain. Tests use ":memory:" databases.
//
// TABLE NAMES:
// The catalog tables keep the legacy Portuguese names (jogos, avaliacoes,
// generos, empresas) because the public JSON schema of the catalog API is
// derived from them and the page adapter understands exactly that schema.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements every repository interface.
type DB struct {
	conn *sql.DB
}

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/letterplay.db"  → file-based database (persistent)
//   - ":memory:"            → in-memory database (tests)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every pooled connection to ":memory:" would get its own empty database,
	// so in-memory databases are pinned to a single connection.
	if isMemory(dbPath) {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if !isMemory(dbPath) {
		// WAL lets page renders read while a review is being written.
		if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
		}
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

func isMemory(dbPath string) bool {
	return dbPath == ":memory:" || strings.HasPrefix(dbPath, "file::memory:")
}

// dsn adds per-connection pragmas for file databases. Pragmas executed with
// conn.Exec only apply to the one pooled connection that ran them.
func dsn(dbPath string) string {
	if isMemory(dbPath) || strings.Contains(dbPath, "?") {
		return dbPath
	}
	return dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE ... IF NOT EXISTS makes it safe to run on
// every start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			username      TEXT NOT NULL UNIQUE COLLATE NOCASE,
			github_id     INTEGER UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS empresas (
			id_empresa INTEGER PRIMARY KEY AUTOINCREMENT,
			nome       TEXT NOT NULL UNIQUE
		);
		CREATE TABLE IF NOT EXISTS generos (
			id_genero   INTEGER PRIMARY KEY AUTOINCREMENT,
			nome_genero TEXT NOT NULL UNIQUE
		);
		CREATE TABLE IF NOT EXISTS jogos (
			id_jogo           INTEGER PRIMARY KEY AUTOINCREMENT,
			titulo            TEXT NOT NULL,
			descricao         TEXT NOT NULL DEFAULT '',
			capa_url          TEXT NOT NULL DEFAULT '',
			nota_metacritic   INTEGER,
			data_lancamento   TEXT NOT NULL DEFAULT '',
			id_desenvolvedora INTEGER REFERENCES empresas(id_empresa),
			id_publicadora    INTEGER REFERENCES empresas(id_empresa),
			created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS jogo_generos (
			id_jogo   INTEGER NOT NULL REFERENCES jogos(id_jogo) ON DELETE CASCADE,
			id_genero INTEGER NOT NULL REFERENCES generos(id_genero),
			PRIMARY KEY (id_jogo, id_genero)
		);
		CREATE TABLE IF NOT EXISTS screenshots (
			id_screenshot INTEGER PRIMARY KEY AUTOINCREMENT,
			id_jogo       INTEGER NOT NULL REFERENCES jogos(id_jogo) ON DELETE CASCADE,
			url           TEXT NOT NULL,
			posicao       INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_screenshots_jogo ON screenshots(id_jogo);
	`)
	if err != nil {
		return fmt.Errorf("creating catalog tables: %w", err)
	}

	// One review per (user, game): the service overwrites instead of inserting twice.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS avaliacoes (
			id_avaliacao INTEGER PRIMARY KEY AUTOINCREMENT,
			nota         INTEGER NOT NULL CHECK (nota BETWEEN 1 AND 5),
			comentario   TEXT NOT NULL DEFAULT '',
			id_jogo      INTEGER NOT NULL REFERENCES jogos(id_jogo) ON DELETE CASCADE,
			id_user      INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (id_user, id_jogo)
		);
		CREATE INDEX IF NOT EXISTS idx_avaliacoes_jogo ON avaliacoes(id_jogo);
	`)
	if err != nil {
		return fmt.Errorf("creating avaliacoes table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS watchlist (
			id_user    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			id_jogo    INTEGER NOT NULL REFERENCES jogos(id_jogo) ON DELETE CASCADE,
			status     TEXT NOT NULL DEFAULT 'AINDA NAO JOGADO',
			favorito   INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (id_user, id_jogo)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating watchlist table: %w", err)
	}

	return nil
}
