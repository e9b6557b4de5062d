package pgload

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// FetchOne executes a statement expected to project a single column of a
// single row and returns the scanned value.
func FetchOne[T any](ctx context.Context, pool *pgxpool.Pool, stmt string, args ...any) (T, error) {
	var result T
	if err := pool.QueryRow(ctx, stmt, args...).Scan(&result); err != nil {
		return result, fmt.Errorf("fetch %q: %w", stmt, err)
	}
	return result, nil
}

// FetchAll executes a statement and collects every row through rowFn.
func FetchAll[T any](ctx context.Context, pool *pgxpool.Pool, stmt string, rowFn func(pgx.Rows) (T, error), args ...any) ([]T, error) {
	rows, err := pool.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch %q: %w", stmt, err)
	}
	defer rows.Close()

	var results []T
	for rows.Next() {
		result, err := rowFn(rows)
		if err != nil {
			return nil, fmt.Errorf("fetch %q: %w", stmt, err)
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch %q: %w", stmt, err)
	}
	return results, nil
}

// FetchOrInsert resolves a reference value to its single-column result:
// fetch first; if no row exists, insert and fetch again. Both statements
// take the same parameters.
//
// Two concurrent callers can both miss the fetch and both attempt the
// insert; the table's uniqueness constraint is the backstop. The loser's
// insert fails with a unique violation and falls through to the winner's
// row. If the re-fetch fails too the operation fails with ErrRaceLost
// rather than returning stale data.
func FetchOrInsert[T any](ctx context.Context, pool *pgxpool.Pool, fetchStmt, insertStmt string, args ...any) (T, error) {
	var result T

	err := pool.QueryRow(ctx, fetchStmt, args...).Scan(&result)
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return result, fmt.Errorf("fetch %q: %w", fetchStmt, err)
	}

	logrus.WithField("stmt", fetchStmt).Debug("no row found, inserting")

	if _, err := pool.Exec(ctx, insertStmt, args...); err != nil {
		if !isUniqueViolation(err) {
			return result, fmt.Errorf("insert %q: %w", insertStmt, err)
		}
		// A concurrent insert won; its row is the one to return
	}

	if err := pool.QueryRow(ctx, fetchStmt, args...).Scan(&result); err != nil {
		return result, fmt.Errorf("refetch %q: %w: %w", fetchStmt, ErrRaceLost, err)
	}
	return result, nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
