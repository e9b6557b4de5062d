package pgload

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// Common errors.
var (
	// ErrSchemaMismatch means a record's decomposed row does not match the
	// arity the target statement or column list expects.
	ErrSchemaMismatch = errors.New("pgload: row does not match statement parameters")

	// ErrRaceLost means a concurrent caller inserted the row first and
	// this caller could not read it back afterwards.
	ErrRaceLost = errors.New("pgload: lost fetch-or-insert race")
)

// Row is a record that decomposes into an ordered list of SQL values
// matching the target table's column order. The decomposition must be
// total and order-stable for a given type.
type Row interface {
	SQLRow() []any
}

// Insert writes records in one committed transaction: the statement is
// prepared once and executed per record. Any failure aborts the whole
// batch; there is no partial success.
func Insert[T Row](ctx context.Context, pool *pgxpool.Pool, stmt string, records []T) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Name the statement by its SQL so pooled connections can carry
	// prepared statements for several different inserts at once
	sd, err := tx.Prepare(ctx, stmt, stmt)
	if err != nil {
		return fmt.Errorf("prepare %q: %w", stmt, err)
	}

	for i, record := range records {
		row := record.SQLRow()
		if len(row) != len(sd.ParamOIDs) {
			return fmt.Errorf("%w: record %d has %d values, statement %q expects %d",
				ErrSchemaMismatch, i, len(row), stmt, len(sd.ParamOIDs))
		}
		if _, err := tx.Exec(ctx, stmt, row...); err != nil {
			return fmt.Errorf("execute %q for record %d: %w", stmt, i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit %q: %w", stmt, err)
	}

	logrus.WithFields(logrus.Fields{
		"stmt":    stmt,
		"records": len(records),
	}).Debug("insert batch committed")
	return nil
}

// Copy bulk-loads records into table via the binary COPY protocol, inside
// one transaction. A copy stream cannot skip bad rows once started, so
// callers must deduplicate and validate upstream; any row failure aborts
// the transaction and nothing is written.
func Copy[T Row](ctx context.Context, pool *pgxpool.Pool, table string, columns []string, records []T) error {
	// Fail fast on arity before the stream opens
	for i, record := range records {
		if n := len(record.SQLRow()); n != len(columns) {
			return fmt.Errorf("%w: record %d has %d values, copy into %q expects %d columns",
				ErrSchemaMismatch, i, n, table, len(columns))
		}
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	n, err := tx.CopyFrom(ctx, tableIdentifier(table), columns,
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			return records[i].SQLRow(), nil
		}))
	if err != nil {
		return fmt.Errorf("copy into %q: %w", table, err)
	}
	if n != int64(len(records)) {
		return fmt.Errorf("copy into %q: wrote %d of %d rows", table, n, len(records))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit copy into %q: %w", table, err)
	}

	logrus.WithFields(logrus.Fields{
		"table": table,
		"rows":  n,
	}).Debug("copy committed")
	return nil
}

// tableIdentifier splits a possibly schema-qualified table name into a
// quoted identifier.
func tableIdentifier(table string) pgx.Identifier {
	return pgx.Identifier(strings.Split(table, "."))
}
