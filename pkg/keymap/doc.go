// Package keymap provides a bijective surrogate-key allocator.
//
// A KeyMap pairs dense integer surrogate keys with deduplicated business
// values, both directions unique, and hands out the lowest free key on
// allocation. It can be bulk-loaded from and bulk-persisted to Postgres;
// the component is schema-agnostic and trusts the caller's SQL to target a
// two-column (key, value) projection.
//
// # Usage
//
//	m, err := keymap.Fetch[int32, string](ctx, pool, "SELECT symbol_pk, symbol FROM symbols")
//	...
//	pk := m.Transact("BTCUSDT") // existing key, or the lowest free one
//	...
//	err = m.Persist(ctx, pool, "INSERT INTO symbols (symbol_pk, symbol) VALUES ($1, $2)")
//
// Mutation happens only through Transact; persistence is bulk, on demand,
// never write-through.
package keymap
