// Package busdecisionlog keeps a record of every decision the fan
// controller makes:
// 1. storing it in the local sqlite database
// 2. optionally copying it to a shared MySQL database
// 3. reading back the latest entries for diagnostics
package busdecisionlog

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
)

// Store is satisfied by clientsqlite.ClientSqlite and servermysql.ServerMySQL.
type Store interface {
	Create(query string, args ...any) error
}

// Querier is a Store that can also be read back.
type Querier interface {
	Query(query string, params []any, scan func(rows *sql.Rows) error) error
}

type Handler struct {
	//required
	stores []Store

	//internal
	executionID      string
	hostname         string
	decisionsHandled int
}

func New(stores ...Store) (*Handler, error) {
	var valid []Store
	for _, s := range stores {
		if s != nil {
			valid = append(valid, s)
		}
	}
	if len(valid) == 0 {
		return nil, errors.New("decision log: at least one store is required")
	}
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return &Handler{stores: valid, executionID: uuid.NewString(), hostname: hostname}, nil
}

// ExecutionID identifies this run of the daemon in every stored row.
func (h *Handler) ExecutionID() string {
	return h.executionID
}

func (h *Handler) DecisionsHandled() int {
	return h.decisionsHandled
}

// HandleDecision writes d to every store. A failing store doesn't stop the
// others; all failures come back joined.
func (h *Handler) HandleDecision(d Decision) error {
	h.decisionsHandled++
	d.ExecutionIdentifier = h.executionID
	d.Hostname = h.hostname

	var errs []error
	for i, store := range h.stores {
		if err := create(store, d); err != nil {
			errs = append(errs, fmt.Errorf("store %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Recent returns up to limit decisions, newest first, from the first store
// that can be queried.
func (h *Handler) Recent(limit int) ([]Decision, error) {
	for _, store := range h.stores {
		if q, ok := store.(Querier); ok {
			return queryRecent(q, limit)
		}
	}
	return nil, errors.New("decision log: no queryable store")
}
