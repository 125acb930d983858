package database

import (
	"github.com/huandu/go-sqlbuilder"
)

// Dialect is the SQL family spoken by the store.
type Dialect string

const (
	DialectMySQL    Dialect = "mysql"
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

func DialectFor(driverName string) Dialect {
	switch driverName {
	case DriverPostgres, DriverPgx:
		return DialectPostgres
	case DriverSQLite, "sqlite3":
		return DialectSQLite
	default:
		return DialectMySQL
	}
}

func (d Dialect) Flavor() sqlbuilder.Flavor {
	switch d {
	case DialectPostgres:
		return sqlbuilder.PostgreSQL
	case DialectSQLite:
		return sqlbuilder.SQLite
	default:
		return sqlbuilder.MySQL
	}
}

// SystemDatabases are the catalogs that are never user data.
func (d Dialect) SystemDatabases() map[string]bool {
	switch d {
	case DialectPostgres:
		return map[string]bool{
			"postgres":  true,
			"template0": true,
			"template1": true,
		}
	case DialectSQLite:
		return map[string]bool{"temp": true}
	default:
		return map[string]bool{
			"information_schema": true,
			"mysql":              true,
			"performance_schema": true,
			"sys":                true,
		}
	}
}
