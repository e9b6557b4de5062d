// Package pgload loads batches of records into Postgres.
//
// Records implement [Row], decomposing into an ordered list of SQL values
// matching the target table's column order. Two load paths exist:
//
//   - [Insert]: one transaction, one prepared statement executed per
//     record. All-or-nothing per batch.
//   - [Copy]: the binary COPY protocol for bulk data. Fast, but a started
//     stream cannot skip bad rows, so rows must be deduplicated and
//     validated upstream (e.g. through a keymap.KeyMap).
//
// For small reference tables, [FetchOrInsert] resolves a value to its
// surrogate key idempotently, relying on the table's uniqueness
// constraint to settle concurrent races.
//
// # Usage
//
//	type Price struct {
//	    SymbolPK int32
//	    Date     time.Time
//	    Close    float64
//	}
//
//	func (p Price) SQLRow() []any {
//	    return []any{p.SymbolPK, p.Date, p.Close}
//	}
//
//	err := pgload.Copy(ctx, pool, "prices",
//	    []string{"symbol_pk", "date", "close"}, prices)
//
// Every call checks out one pool connection and returns it on all paths;
// each call's transaction is independent, so calls may run concurrently
// up to the pool's limit.
package pgload
