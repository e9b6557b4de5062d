// Package http provides the HTTP client used by extract stages.
//
// This package handles:
//   - Connection pooling for high parallelism
//   - HEAD requests to probe remote file size
//   - Strict range requests for chunked downloads (206 or failure)
//   - JSON API fetches
//   - Retry with exponential backoff
//
// # Usage
//
//	client := http.NewClient(http.DefaultOptions())
//
//	// Probe file size
//	info, err := client.Head(ctx, url)
//	// info.Size, info.AcceptsRanges
//
//	// Download a range
//	resp, err := client.GetRange(ctx, url, startByte, endByte)
//	defer resp.Body.Close()
//
//	// Fetch an API payload
//	var tickers []Ticker
//	err = client.FetchJSON(ctx, url, &tickers)
package http
