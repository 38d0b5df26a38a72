package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// Dialect is the SQL flavour spoken by the underlying driver.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

// Driver names accepted by NewDB.
const (
	DriverPgx    = "pgx"
	DriverSQLite = "sqlite3"
)

func (d Dialect) placeholder(n int) string {
	if d == SQLite {
		return "?"
	}
	return fmt.Sprintf("$%d", n)
}

// DB wraps sql.DB for Postgres (pgx) or SQLite.
type DB struct {
	Client  *sql.DB
	Dialect Dialect
}

// NewDB opens a connection pool with sane defaults and pings it.
func NewDB(driver, connString string) (*DB, error) {
	var dialect Dialect
	switch driver {
	case DriverPgx, "postgres":
		driver, dialect = DriverPgx, Postgres
	case DriverSQLite, "sqlite":
		driver, dialect = DriverSQLite, SQLite
	default:
		return nil, errors.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, connString)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if dialect == SQLite {
		// a single connection keeps :memory: databases alive and serializes writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return &DB{Client: db, Dialect: dialect}, errors.Wrap(db.PingContext(ctx), "pinging database")
}

// Healthy reports whether the database answers a ping.
func (d *DB) Healthy(ctx context.Context) bool {
	if d == nil || d.Client == nil {
		return false
	}
	return d.Client.PingContext(ctx) == nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}
