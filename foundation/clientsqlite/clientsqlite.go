// Package clientsqlite is the local sqlite database the daemon logs its
// decisions to.
package clientsqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// migrate will be executed every time the New function is
// called. For this reason it must be crafted in a way that it
// doesn't create duplicate data.
//
//go:embed sql/clientmigrate.sql
var migrate string

const queryTimeout = 2 * time.Second

type ClientSqlite struct {
	db *sql.DB
}

func New(filePath string) (*ClientSqlite, error) {
	const connectionParams = "?_pragma=busy_timeout(1000)&_pragma=journal_mode(WAL)"

	dataSourceName := fmt.Sprintf("%s%s", filePath, connectionParams)
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("open connection: %q: %w", dataSourceName, err)
	}

	cln := ClientSqlite{db: db}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	if _, err := cln.db.ExecContext(ctx, migrate); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec migration: %w", err)
	}

	return &cln, nil
}

func (sw *ClientSqlite) Close() error {
	return sw.db.Close()
}

func (sw *ClientSqlite) Version() (string, error) {
	var version string
	if err := sw.QueryRow("select sqlite_version()", nil, &version); err != nil {
		return "", fmt.Errorf("query version: %w", err)
	}
	return version, nil
}

func (sw *ClientSqlite) Create(query string, args ...any) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	statement, err := sw.db.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer statement.Close()

	if _, err = statement.ExecContext(ctx, args...); err != nil {
		return fmt.Errorf("exec: %w", err)
	}

	return nil
}

// Query calls scan once per row; scan reads the current row with rows.Scan.
func (sw *ClientSqlite) Query(query string, params []any, scan func(rows *sql.Rows) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	rows, err := sw.db.QueryContext(ctx, query, params...)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
	}
	return rows.Err()
}

func (sw *ClientSqlite) QueryRow(query string, params []any, fields ...any) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	row := sw.db.QueryRowContext(ctx, query, params...)
	return row.Scan(fields...)
}

// ExecuteQuery no result is returned
func (sw *ClientSqlite) ExecuteQuery(query string, params []any) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	if _, err := sw.db.ExecContext(ctx, query, params...); err != nil {
		return fmt.Errorf("execute query %q: %w", query, err)
	}
	return nil
}
