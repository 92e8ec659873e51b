// Package sqlexec runs queries against the connected database and renders
// their results as display rows.
package sqlexec

import (
	"context"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/kobzarvs/qsql/internal/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const describePostgres = `
  SELECT schemaname AS schema, tablename AS name, 'table' AS type, tableowner AS owner
    FROM pg_tables
   WHERE schemaname NOT IN ('pg_catalog', 'information_schema')
   UNION
  SELECT schemaname AS schema, sequencename AS name, 'sequence' AS type, sequenceowner AS owner
    FROM pg_sequences
   WHERE schemaname NOT IN ('pg_catalog', 'information_schema')
   UNION
  SELECT schemaname AS schema, viewname AS name, 'view' AS type, viewowner AS owner
    FROM pg_views
   WHERE schemaname NOT IN ('pg_catalog', 'information_schema')
ORDER BY name`

const describeSQLite = `
  SELECT 'main' AS schema, name, type, '' AS owner
    FROM sqlite_master
   WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%'
ORDER BY name`

type Options struct {
	Driver      string
	DSN         string
	NullDisplay string
}

type Executor struct {
	db          *sqlx.DB
	driver      string
	nullDisplay string
}

// Open connects and pings so a bad DSN fails before the prompt appears.
func Open(ctx context.Context, opts Options) (*Executor, error) {
	var driverName string
	switch opts.Driver {
	case DriverPostgres, "":
		opts.Driver = DriverPostgres
		driverName = "pgx"
	case DriverSQLite:
		driverName = "sqlite"
	default:
		return nil, fmt.Errorf("unknown driver %q", opts.Driver)
	}
	db, err := sqlx.Open(driverName, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.Driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to %s: %w", opts.Driver, err)
	}
	logger.Debug("ping ok", "driver", opts.Driver)
	return New(db, opts.Driver, opts.NullDisplay), nil
}

func New(db *sqlx.DB, driver, nullDisplay string) *Executor {
	if nullDisplay == "" {
		nullDisplay = "None"
	}
	return &Executor{db: db, driver: driver, nullDisplay: nullDisplay}
}

// Run executes query and returns the formatted result. Input starting with
// a backslash lists the database's relations instead.
func (e *Executor) Run(ctx context.Context, query string) ([]string, error) {
	query = strings.TrimSpace(query)
	if strings.HasPrefix(query, `\`) {
		query = e.describeQuery()
	}
	start := time.Now()
	rows, err := e.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var records [][]string
	for rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return nil, err
		}
		record := make([]string, len(vals))
		for i, v := range vals {
			record[i] = e.display(v)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logger.Debug("query finished", "rows", len(records), "elapsed", time.Since(start))

	if len(cols) == 0 {
		return []string{"OK"}, nil
	}
	out := FormatTable(cols, records)
	return append(out, rowCount(len(records))), nil
}

func (e *Executor) describeQuery() string {
	if e.driver == DriverSQLite {
		return describeSQLite
	}
	return describePostgres
}

func (e *Executor) display(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return e.nullDisplay
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(v)
	}
}

func (e *Executor) Close() error {
	return e.db.Close()
}

func rowCount(n int) string {
	if n == 1 {
		return "(1 row)"
	}
	return fmt.Sprintf("(%d rows)", n)
}
