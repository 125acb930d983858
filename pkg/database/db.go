package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverMySQL    = "mysql"
	DriverMariaDB  = "mariadb"
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverSQLite   = "sqlite"
)

// Config describes how to reach the store.
type Config struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	// Database name, or the file path for sqlite
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Querier is satisfied by both DB and Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	QueryRowxContext(ctx context.Context, query string, args ...any) *sqlx.Row
	QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error)
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

type DB interface {
	Querier
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
	Close() error
	Connx(ctx context.Context) (*sqlx.Conn, error)
	DriverName() string
	PingContext(ctx context.Context) error
	Stats() sql.DBStats
	Dialect() Dialect
	GetTx(ctx context.Context, opts *sql.TxOptions) (context.Context, Tx, error)
}

type DatabaseInstance struct {
	*sqlx.DB
	logger  ectologger.Logger
	dialect Dialect
}

func NewDatabaseInstance(db *sqlx.DB, logger ectologger.Logger) DB {
	return &DatabaseInstance{
		DB:      db,
		logger:  logger,
		dialect: DialectFor(db.DriverName()),
	}
}

// Open creates the pool without connecting. Connectivity is checked by Ping.
func Open(cfg Config, logger ectologger.Logger) (DB, error) {
	driverName, dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	logger.WithFields(map[string]any{
		"driver": cfg.Driver,
		"host":   cfg.Host,
		"port":   cfg.Port,
		"name":   cfg.Name,
	}).Info("database pool created")

	return NewDatabaseInstance(db, logger), nil
}

// DSN returns the registered driver name and connection string for the config.
func (cfg Config) DSN() (string, string, error) {
	switch cfg.Driver {
	case DriverMySQL, DriverMariaDB:
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = cfg.Host + ":" + strconv.Itoa(cfg.Port)
		mc.DBName = cfg.Name
		return DriverMySQL, mc.FormatDSN(), nil
	case DriverPostgres, DriverPgx:
		sslMode := cfg.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, sslMode)
		return cfg.Driver, dsn, nil
	case DriverSQLite:
		if cfg.Name == "" {
			return "", "", fmt.Errorf("sqlite requires DB_NAME to be a file path")
		}
		return DriverSQLite, cfg.Name, nil
	default:
		return "", "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func (db *DatabaseInstance) Dialect() Dialect {
	return db.dialect
}

func (db *DatabaseInstance) GetTx(ctx context.Context, opts *sql.TxOptions) (context.Context, Tx, error) {
	return GetTx(ctx, db.logger, db, opts)
}
