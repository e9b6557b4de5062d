// Package etl composes extract and load stages into pipelines.
//
// An [Extractor] obtains raw objects from a remote source; a [Loader]
// persists them to a store. The two never call each other; [Run] owns the
// sequencing. Surrogate-key assignment sits between the stages: an
// extractor's records pass through a keymap.KeyMap to pick up their
// stable integer identity before the loader writes them.
//
//	ex := etl.ExtractorFunc[[]Ticker](func(ctx context.Context) ([]Ticker, error) {
//	    var tickers []Ticker
//	    return tickers, client.FetchJSON(ctx, url, &tickers)
//	})
//	ld := etl.LoaderFunc[[]Ticker](func(ctx context.Context, tickers []Ticker) error {
//	    rows := make([]TickerRow, 0, len(tickers))
//	    for _, t := range tickers {
//	        rows = append(rows, TickerRow{SymbolPK: keys.Transact(t.Symbol), Bid: t.Bid, Ask: t.Ask})
//	    }
//	    return pgload.Copy(ctx, pool, "tickers", tickerColumns, rows)
//	})
//	err := etl.Run(ctx, "tickers", ex, ld)
package etl
