package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ligustah/gulp/pkg/etl"
	"github.com/ligustah/gulp/pkg/pgload"
)

// maxLineSize bounds a single NDJSON record.
const maxLineSize = 16 * 1024 * 1024

// jsonRow is one NDJSON record decomposed into column order.
type jsonRow struct {
	values []any
}

func (r jsonRow) SQLRow() []any { return r.values }

// runLoad reads newline-delimited JSON records from a file and loads them
// into a Postgres table, either with binary COPY or a prepared INSERT
// transaction. Both modes are atomic: a bad record aborts the whole load.
func runLoad(args []string) int {
	fs := flag.NewFlagSet("load", flag.ExitOnError)

	file := fs.String("file", "", "Path to NDJSON file (required)")
	table := fs.String("table", "", "Destination table, optionally schema-qualified (required)")
	columns := fs.String("columns", "", "Comma-separated column names in record order (required)")
	mode := fs.String("mode", "copy", "Load mode: copy or insert")
	dsn := fs.String("dsn", "", "Postgres connection string (or GULP_DATABASE_DSN)")
	configPath := fs.String("config", "", "Path to YAML config file")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: gulp load [options]

Load newline-delimited JSON records into a Postgres table. Each record
must be a JSON object; values are bound in the order given by -columns.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	if *file == "" || *table == "" || *columns == "" {
		fmt.Fprintln(os.Stderr, "Error: -file, -table, and -columns are required")
		fs.Usage()
		return ExitInvalidArgs
	}
	if *mode != "copy" && *mode != "insert" {
		fmt.Fprintf(os.Stderr, "Error: invalid mode %q (want copy or insert)\n", *mode)
		return ExitInvalidArgs
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return ExitInvalidArgs
	}
	if *dsn != "" {
		cfg.Database.DSN = *dsn
	}
	if cfg.Database.DSN == "" {
		fmt.Fprintln(os.Stderr, "Error: no database DSN configured")
		return ExitInvalidArgs
	}
	if err := setupLogging(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	cols := splitColumns(*columns)
	if len(cols) == 0 {
		fmt.Fprintln(os.Stderr, "Error: -columns must name at least one column")
		return ExitInvalidArgs
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\n[gulp] Received interrupt, shutting down...")
		cancel()
	}()

	pool, err := openPool(ctx, cfg.Database.DSN, cfg.Database.MaxConns)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to database: %v\n", err)
		return ExitDatabaseError
	}
	defer pool.Close()

	extractor := etl.ExtractorFunc[[]jsonRow](func(ctx context.Context) ([]jsonRow, error) {
		return readRecords(*file, cols)
	})
	loader := etl.LoaderFunc[[]jsonRow](func(ctx context.Context, rows []jsonRow) error {
		if *mode == "insert" {
			return pgload.Insert(ctx, pool, insertStatement(*table, cols), rows)
		}
		return pgload.Copy(ctx, pool, *table, cols, rows)
	})

	if err := etl.Run(ctx, *table, extractor, loader); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitDatabaseError
	}

	fmt.Fprintf(os.Stderr, "[gulp] Load complete: %s\n", *table)
	return ExitSuccess
}

func openPool(ctx context.Context, dsn string, maxConns int) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}
	return pgxpool.NewWithConfig(ctx, poolCfg)
}

// readRecords parses an NDJSON file into rows ordered by cols. A column
// missing from a record binds as NULL.
func readRecords(path string, cols []string) ([]jsonRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open records file: %w", err)
	}
	defer f.Close()

	var rows []jsonRow

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var record map[string]any
		if err := json.Unmarshal([]byte(text), &record); err != nil {
			return nil, fmt.Errorf("parse record at line %d: %w", line, err)
		}

		values := make([]any, len(cols))
		for i, col := range cols {
			values[i] = record[col]
		}
		rows = append(rows, jsonRow{values: values})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read records file: %w", err)
	}

	return rows, nil
}

// insertStatement builds a positional INSERT for the given columns.
func insertStatement(table string, cols []string) string {
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
}

func splitColumns(s string) []string {
	var cols []string
	for _, col := range strings.Split(s, ",") {
		if col = strings.TrimSpace(col); col != "" {
			cols = append(cols, col)
		}
	}
	return cols
}
