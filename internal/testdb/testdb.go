// Package testdb provisions throwaway stores for package tests.
package testdb

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/poppy/pkg/database"
)

// SQLiteSchema mirrors the production tables. Names compare case-insensitively
// like the default MariaDB collation.
const SQLiteSchema = `
CREATE TABLE regista (
	idR INTEGER PRIMARY KEY AUTOINCREMENT,
	nome TEXT NOT NULL UNIQUE COLLATE NOCASE,
	eta INTEGER NOT NULL
);
CREATE TABLE piattaforma (
	idP INTEGER PRIMARY KEY AUTOINCREMENT,
	nome TEXT NOT NULL UNIQUE COLLATE NOCASE
);
CREATE TABLE movies (
	idF INTEGER PRIMARY KEY AUTOINCREMENT,
	titolo TEXT NOT NULL UNIQUE COLLATE NOCASE,
	idR INTEGER NOT NULL REFERENCES regista(idR),
	anno INTEGER NOT NULL,
	genere TEXT NOT NULL
);
CREATE TABLE dove_vederlo (
	idF INTEGER PRIMARY KEY REFERENCES movies(idF),
	idP1 INTEGER NULL REFERENCES piattaforma(idP),
	idP2 INTEGER NULL REFERENCES piattaforma(idP)
);
`

// MySQLSchema is the MariaDB/MySQL equivalent of SQLiteSchema.
const MySQLSchema = `
CREATE TABLE regista (
	idR INT AUTO_INCREMENT PRIMARY KEY,
	nome VARCHAR(255) NOT NULL UNIQUE,
	eta INT NOT NULL
);
CREATE TABLE piattaforma (
	idP INT AUTO_INCREMENT PRIMARY KEY,
	nome VARCHAR(255) NOT NULL UNIQUE
);
CREATE TABLE movies (
	idF INT AUTO_INCREMENT PRIMARY KEY,
	titolo VARCHAR(255) NOT NULL UNIQUE,
	idR INT NOT NULL,
	anno INT NOT NULL,
	genere VARCHAR(255) NOT NULL,
	FOREIGN KEY (idR) REFERENCES regista(idR)
);
CREATE TABLE dove_vederlo (
	idF INT PRIMARY KEY,
	idP1 INT NULL,
	idP2 INT NULL,
	FOREIGN KEY (idF) REFERENCES movies(idF),
	FOREIGN KEY (idP1) REFERENCES piattaforma(idP),
	FOREIGN KEY (idP2) REFERENCES piattaforma(idP)
);
`

func Logger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

// New returns a file backed sqlite store with the movie schema applied.
func New(t *testing.T) database.DB {
	t.Helper()

	db := Empty(t)
	Apply(t, db, SQLiteSchema)
	return db
}

// Empty returns a file backed sqlite store with no tables.
func Empty(t *testing.T) database.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "poppy.db")
	conn, err := sqlx.Open(database.DriverSQLite, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return database.NewDatabaseInstance(conn, Logger())
}

// Apply runs each statement of a semicolon separated script.
func Apply(t *testing.T, db database.DB, script string) {
	t.Helper()

	for _, stmt := range strings.Split(script, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		_, err := db.ExecContext(t.Context(), stmt)
		require.NoError(t, err)
	}
}
