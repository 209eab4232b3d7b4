// Package servermysql ships the decision log to a shared MySQL database so
// several machines can be watched from one place.
package servermysql

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

//go:embed sql/servermigrate.sql
var migrate string

const (
	maxSqlExecutionTime = 2 * time.Second
	dialTimeout         = 5 * time.Second
)

type ServerMySQL struct {
	db *sql.DB
}

// New connects with a go-sql-driver DSN such as
// "nvfans:secret@tcp(db.lan:3306)/fans" and creates the table if needed.
func New(dsn string) (*ServerMySQL, error) {
	cfg, err := newConfig(dsn)
	if err != nil {
		return nil, err
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("mysql connector: %w", err)
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(2)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Addr, err)
	}
	if _, err := db.ExecContext(ctx, migrate); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec migration: %w", err)
	}
	return &ServerMySQL{db: db}, nil
}

func newConfig(dsn string) (*mysql.Config, error) {
	if dsn == "" {
		return nil, fmt.Errorf("servermysql: dsn is required")
	}
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	//a slow database must never hold up a decision cycle for long
	if cfg.Timeout == 0 {
		cfg.Timeout = dialTimeout
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = dialTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = dialTimeout
	}
	return cfg, nil
}

func (sm *ServerMySQL) Close() error {
	return sm.db.Close()
}

func (sm *ServerMySQL) Create(query string, args ...any) error {
	ctx, cancel := context.WithTimeout(context.Background(), maxSqlExecutionTime)
	defer cancel()
	result, err := sm.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	rowsCount, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsCount != 1 {
		return fmt.Errorf("expected 1 row affected, got %d", rowsCount)
	}
	return nil
}
