package keymap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/constraints"
)

// Fetch builds a KeyMap from a Postgres query. The query must project
// exactly two columns, key first, value second:
//
//	SELECT symbol_pk, symbol FROM symbols
//
// The next-key cursor is computed by a linear scan from zero once all rows
// are loaded.
func Fetch[K constraints.Integer, V comparable](ctx context.Context, pool *pgxpool.Pool, query string) (*KeyMap[K, V], error) {
	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("keymap fetch %q: %w", query, err)
	}
	defer rows.Close()

	m := New[K, V]()
	for rows.Next() {
		var (
			k K
			v V
		)
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("keymap fetch %q: scan: %w", query, err)
		}
		if err := m.insert(k, v); err != nil {
			return nil, fmt.Errorf("keymap fetch %q: %w", query, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("keymap fetch %q: %w", query, err)
	}

	m.advance()

	logrus.WithFields(logrus.Fields{
		"pairs":    m.Len(),
		"next_key": m.next,
	}).Debug("key map fetched")

	return m, nil
}

// Persist writes every pair to Postgres in one transaction using the given
// insert statement, which must take the key as $1 and the value as $2:
//
//	INSERT INTO symbols (symbol_pk, symbol) VALUES ($1, $2)
//
// The statement is prepared once and executed per pair; any failure aborts
// the transaction and nothing is written.
func (m *KeyMap[K, V]) Persist(ctx context.Context, pool *pgxpool.Pool, stmt string) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("keymap persist: acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("keymap persist: begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Name the statement by its SQL so pooled connections can carry
	// prepared statements for several different persists at once
	if _, err := tx.Prepare(ctx, stmt, stmt); err != nil {
		return fmt.Errorf("keymap persist: prepare %q: %w", stmt, err)
	}

	for k, v := range m.byKey {
		if _, err := tx.Exec(ctx, stmt, k, v); err != nil {
			return fmt.Errorf("keymap persist: execute %q with (%v, %v): %w", stmt, k, v, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("keymap persist: commit: %w", err)
	}

	logrus.WithField("pairs", m.Len()).Debug("key map persisted")
	return nil
}
