// Package sqlbackend adapts database/sql-backed drivers into
// executor.ExecuteCallback implementations: the opaque connection handle
// an executor.StatementUnit carries is a *sql.Stmt prepared once per
// data source, and the unit's ParameterSets are the argument lists bound
// against it.
package sqlbackend

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/innerpeacez/sharding-sphere/executor"
)

// Backend wraps one database/sql connection pool for a single data
// source and prepares statements against it.
type Backend struct {
	db *sql.DB
}

// Open opens a database by driver name and data source name, mirroring
// the client SDKs' Open(driverName, dataSourceName) signature.
func Open(driverName, dataSourceName string) (*Backend, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	return &Backend{db: db}, nil
}

// Wrap adapts an already-open *sql.DB.
func Wrap(db *sql.DB) *Backend { return &Backend{db: db} }

// Close releases the underlying pool.
func (b *Backend) Close() error { return b.db.Close() }

// Prepare returns a *sql.Stmt suitable for use as a StatementUnit's Conn
// field: callers build one StatementUnit per shard, each carrying the
// Stmt prepared against that shard's Backend.
func (b *Backend) Prepare(ctx context.Context, query string) (*sql.Stmt, error) {
	return b.db.PrepareContext(ctx, query)
}

// QueryCallback returns an ExecuteCallback that treats a unit's Conn as
// a *sql.Stmt and runs it once per parameter set, returning the last
// *sql.Rows. Units intended for fan-out almost always carry a single
// parameter set; ParameterSets with len > 1 run sequentially against the
// same statement, discarding every *sql.Rows but the last.
func QueryCallback() executor.ExecuteCallback[*sql.Rows] {
	return func(ctx context.Context, unit executor.StatementUnit) (*sql.Rows, error) {
		stmt, ok := unit.Conn.(*sql.Stmt)
		if !ok {
			return nil, fmt.Errorf("sqlbackend: unit.Conn is %T, want *sql.Stmt", unit.Conn)
		}
		if len(unit.ParameterSets) == 0 {
			return stmt.QueryContext(ctx)
		}
		var rows *sql.Rows
		for _, params := range unit.ParameterSets {
			r, err := stmt.QueryContext(ctx, params...)
			if err != nil {
				return nil, err
			}
			rows = r
		}
		return rows, nil
	}
}

// ExecCallback returns an ExecuteCallback for statements with no result
// set (INSERT/UPDATE/DELETE/DDL), returning the aggregate rows-affected
// count across every parameter set.
func ExecCallback() executor.ExecuteCallback[int64] {
	return func(ctx context.Context, unit executor.StatementUnit) (int64, error) {
		stmt, ok := unit.Conn.(*sql.Stmt)
		if !ok {
			return 0, fmt.Errorf("sqlbackend: unit.Conn is %T, want *sql.Stmt", unit.Conn)
		}
		var total int64
		for _, params := range unit.ParameterSets {
			res, err := stmt.ExecContext(ctx, params...)
			if err != nil {
				return total, err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return total, err
			}
			total += n
		}
		return total, nil
	}
}
