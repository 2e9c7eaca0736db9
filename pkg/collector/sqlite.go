package collector

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/helmcode/sql-copilot/pkg/bundle"
)

// SQLite collects diagnostics from a SQLite database file. Connections are
// short-lived: one per Collect call, closed before returning, so repeated
// measurements run against the same file without shared state.
type SQLite struct {
	path   string
	logger *zap.Logger
}

func NewSQLite(path string, logger *zap.Logger) *SQLite {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLite{path: path, logger: logger}
}

func (c *SQLite) open() (*sql.DB, error) {
	db, err := sql.Open("sqlite", c.path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	return db, nil
}

func (c *SQLite) Ping(ctx context.Context) error {
	db, err := c.open()
	if err != nil {
		return err
	}
	defer db.Close()
	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("ping sqlite database: %w", err)
	}
	return nil
}

func (c *SQLite) Collect(ctx context.Context, query string, planOnly bool) (bundle.Bundle, error) {
	db, err := c.open()
	if err != nil {
		return bundle.Bundle{}, err
	}
	defer db.Close()

	var logs []string
	tables := tableNames(query)

	plan := c.collectPlan(ctx, db, query, &logs)

	var preview string
	if !planOnly {
		preview = c.executeTimed(ctx, db, query, &logs)
	}

	b := bundle.Bundle{
		Query:         query,
		Explain:       plan,
		Logs:          strings.TrimSpace(strings.Join(logs, "\n")),
		Schema:        strings.TrimSpace(c.collectSchema(ctx, db, tables)),
		Stats:         strings.TrimSpace(c.collectStats(ctx, db, tables)),
		Config:        strings.TrimSpace(c.collectConfig(ctx, db)),
		System:        strings.TrimSpace(c.collectSystem()),
		ResultPreview: strings.TrimSpace(preview),
	}
	c.logger.Debug("sqlite diagnostics collected",
		zap.String("db", c.path),
		zap.Int("tables", len(tables)),
		zap.Bool("executed", !planOnly))
	return b, nil
}

func (c *SQLite) collectPlan(ctx context.Context, db *sql.DB, query string, logs *[]string) string {
	rows, err := db.QueryContext(ctx, "EXPLAIN QUERY PLAN "+query)
	if err != nil {
		*logs = append(*logs, fmt.Sprintf("Error getting query plan: %v", err))
		return ""
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		// EXPLAIN QUERY PLAN rows are: id, parent, notused, detail.
		var id, parent, notused int
		var detail string
		if err := rows.Scan(&id, &parent, &notused, &detail); err != nil {
			*logs = append(*logs, fmt.Sprintf("Error reading query plan row: %v", err))
			return strings.Join(lines, "\n")
		}
		lines = append(lines, fmt.Sprintf("%d|%d|%d|%s", id, parent, notused, detail))
	}
	*logs = append(*logs, "Query plan collected successfully")
	return strings.Join(lines, "\n")
}

// executeTimed runs the query, fetching at most previewLimit rows, and
// records the elapsed wall-clock time in the logs. Failures become log
// lines; the timing line is only written for successful executions.
func (c *SQLite) executeTimed(ctx context.Context, db *sql.DB, query string, logs *[]string) string {
	*logs = append(*logs, "Executing query with timing...")
	start := time.Now()

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		*logs = append(*logs, fmt.Sprintf("Query failed after %.2f ms: %v", msSince(start), err))
		return ""
	}
	defer rows.Close()

	cols, _ := rows.Columns()
	var fetched int
	var lines []string
	if len(cols) > 0 {
		lines = append(lines, strings.Join(cols, " | "))
		lines = append(lines, strings.Repeat("-", previewWidth(cols)))
	}
	for fetched < previewLimit && rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			*logs = append(*logs, fmt.Sprintf("Query failed after %.2f ms: %v", msSince(start), err))
			return ""
		}
		lines = append(lines, formatRow(vals))
		fetched++
	}
	if err := rows.Err(); err != nil {
		*logs = append(*logs, fmt.Sprintf("Query failed after %.2f ms: %v", msSince(start), err))
		return ""
	}

	*logs = append(*logs, fmt.Sprintf("Execution elapsed: %.2f ms", msSince(start)))
	*logs = append(*logs, fmt.Sprintf("Rows previewed: %d", fetched))
	return strings.Join(lines, "\n")
}

func (c *SQLite) collectSchema(ctx context.Context, db *sql.DB, tables []string) string {
	var lines []string
	for _, table := range tables {
		rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
		if err != nil {
			lines = append(lines, fmt.Sprintf("Error getting schema for %s: %v", table, err))
			continue
		}
		var cols []string
		for rows.Next() {
			var cid int
			var name, ctype string
			var notnull, pk int
			var dflt sql.NullString
			if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
				break
			}
			nullable := "NULL"
			if notnull != 0 {
				nullable = "NOT NULL"
			}
			col := fmt.Sprintf("  %s %s %s", name, ctype, nullable)
			if pk != 0 {
				col += " PRIMARY KEY"
			}
			cols = append(cols, col)
		}
		rows.Close()
		if len(cols) > 0 {
			lines = append(lines, "Table: "+table)
			lines = append(lines, cols...)
		}

		idxRows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_list(%s)", table))
		if err != nil {
			continue
		}
		var idxLines []string
		for idxRows.Next() {
			var seq int
			var name, origin string
			var unique, partial int
			if err := idxRows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
				break
			}
			line := "  " + name
			if unique != 0 {
				line += " UNIQUE"
			}
			idxLines = append(idxLines, line)
		}
		idxRows.Close()
		if len(idxLines) > 0 {
			lines = append(lines, "Indexes for "+table+":")
			lines = append(lines, idxLines...)
		}
	}
	return strings.Join(lines, "\n")
}

func (c *SQLite) collectStats(ctx context.Context, db *sql.DB, tables []string) string {
	var lines []string
	for _, table := range tables {
		var count int64
		if err := db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count); err != nil {
			lines = append(lines, fmt.Sprintf("Error getting stats for %s: %v", table, err))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %d rows", table, count))

		var statName string
		err := db.QueryRowContext(ctx, "SELECT tbl FROM sqlite_stat1 WHERE tbl = ? LIMIT 1", table).Scan(&statName)
		if err == nil {
			lines = append(lines, fmt.Sprintf("  Statistics available for %s", table))
		} else {
			lines = append(lines, fmt.Sprintf("  No statistics for %s (run ANALYZE)", table))
		}
	}
	return strings.Join(lines, "\n")
}

var configPragmas = []string{
	"cache_size", "page_size", "journal_mode", "synchronous",
	"temp_store", "mmap_size",
}

func (c *SQLite) collectConfig(ctx context.Context, db *sql.DB) string {
	var lines []string
	for _, pragma := range configPragmas {
		var value any
		if err := db.QueryRowContext(ctx, "PRAGMA "+pragma).Scan(&value); err != nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %v", pragma, value))
	}
	return strings.Join(lines, "\n")
}

func (c *SQLite) collectSystem() string {
	lines := []string{
		"Database: SQLite",
		"Database file: " + c.path,
	}
	if fi, err := os.Stat(c.path); err == nil {
		lines = append(lines, fmt.Sprintf("File size: %.1f MB", float64(fi.Size())/1024/1024))
	}
	lines = append(lines, fmt.Sprintf("Platform: %s %s", runtime.GOOS, runtime.GOARCH))
	return strings.Join(lines, "\n")
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}

func formatRow(vals []any) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		switch t := v.(type) {
		case nil:
			parts[i] = "NULL"
		case []byte:
			parts[i] = string(t)
		default:
			parts[i] = fmt.Sprintf("%v", t)
		}
	}
	return strings.Join(parts, " | ")
}

func previewWidth(cols []string) int {
	w := 0
	for _, c := range cols {
		w += len(c)
	}
	w += 3 * (len(cols) - 1)
	if w > 120 {
		w = 120
	}
	return w
}
