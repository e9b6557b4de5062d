//go:build integration

package keymap_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ligustah/gulp/internal/testutils"
	"github.com/ligustah/gulp/pkg/keymap"
)

func TestKeyMapIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	t.Log("Starting Postgres container...")
	pg := testutils.StartPostgresContainer(t, ctx)
	defer func() {
		if err := pg.Close(ctx); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	}()

	pool, err := pg.OpenPool(ctx)
	require.NoError(t, err)
	defer pool.Close()

	_, err = pool.Exec(ctx, `CREATE TABLE symbols (
		symbol_pk SMALLINT PRIMARY KEY,
		symbol    TEXT NOT NULL UNIQUE
	)`)
	require.NoError(t, err)

	const (
		fetchStmt   = "SELECT symbol_pk, symbol FROM symbols"
		persistStmt = `INSERT INTO symbols (symbol_pk, symbol) VALUES ($1, $2)
			ON CONFLICT (symbol_pk) DO UPDATE SET symbol = EXCLUDED.symbol`
	)

	t.Run("fetch empty", func(t *testing.T) {
		m, err := keymap.Fetch[int16, string](ctx, pool, fetchStmt)
		require.NoError(t, err)
		require.Equal(t, 0, m.Len())
		require.Equal(t, int16(0), m.NextKey())
	})

	t.Run("persist and fetch round trip", func(t *testing.T) {
		m := keymap.New[int16, string]()
		for _, symbol := range []string{"AAPL", "MSFT", "NVDA"} {
			m.Transact(symbol)
		}

		require.NoError(t, m.Persist(ctx, pool, persistStmt))

		fetched, err := keymap.Fetch[int16, string](ctx, pool, fetchStmt)
		require.NoError(t, err)
		require.Equal(t, m.Pairs(), fetched.Pairs())
		require.Equal(t, m.NextKey(), fetched.NextKey())
	})

	t.Run("persist is repeatable with upsert", func(t *testing.T) {
		fetched, err := keymap.Fetch[int16, string](ctx, pool, fetchStmt)
		require.NoError(t, err)

		fetched.Transact("AMZN")
		require.NoError(t, fetched.Persist(ctx, pool, persistStmt))
		require.NoError(t, fetched.Persist(ctx, pool, persistStmt))

		again, err := keymap.Fetch[int16, string](ctx, pool, fetchStmt)
		require.NoError(t, err)
		require.Equal(t, fetched.Pairs(), again.Pairs())
		require.Equal(t, 4, again.Len())
	})

	t.Run("fetch fills gaps before appending", func(t *testing.T) {
		_, err := pool.Exec(ctx, "DELETE FROM symbols WHERE symbol = 'MSFT'")
		require.NoError(t, err)

		m, err := keymap.Fetch[int16, string](ctx, pool, fetchStmt)
		require.NoError(t, err)

		freed := m.NextKey()
		require.Equal(t, freed, m.Transact("TSLA"))
		require.Greater(t, m.NextKey(), freed)
	})

	t.Run("failed persist writes nothing", func(t *testing.T) {
		before, err := keymap.Fetch[int16, string](ctx, pool, fetchStmt)
		require.NoError(t, err)

		m, err := keymap.FromMap(before.Pairs())
		require.NoError(t, err)
		m.Transact("GOOG")

		// A plain insert conflicts with the rows already present,
		// aborting the transaction partway through
		err = m.Persist(ctx, pool, "INSERT INTO symbols (symbol_pk, symbol) VALUES ($1, $2)")
		require.Error(t, err)

		after, err := keymap.Fetch[int16, string](ctx, pool, fetchStmt)
		require.NoError(t, err)
		require.Equal(t, before.Pairs(), after.Pairs(), "failed persist must leave the table unchanged")
		require.Equal(t, before.NextKey(), after.NextKey())
	})
}
