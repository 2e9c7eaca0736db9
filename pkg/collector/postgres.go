package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/helmcode/sql-copilot/pkg/bundle"
)

// Postgres collects diagnostics from a PostgreSQL server. Like the SQLite
// collector it opens one short-lived connection per Collect call.
type Postgres struct {
	dsn    string
	logger *zap.Logger
}

func NewPostgres(dsn string, logger *zap.Logger) *Postgres {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Postgres{dsn: dsn, logger: logger}
}

func (c *Postgres) Ping(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, c.dsn)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer conn.Close(ctx)
	return conn.Ping(ctx)
}

func (c *Postgres) Collect(ctx context.Context, query string, planOnly bool) (bundle.Bundle, error) {
	conn, err := pgx.Connect(ctx, c.dsn)
	if err != nil {
		return bundle.Bundle{}, fmt.Errorf("connect postgres: %w", err)
	}
	defer conn.Close(ctx)

	var logs []string
	tables := tableNames(query)

	plan := c.collectPlan(ctx, conn, query, planOnly, &logs)

	var preview string
	if !planOnly {
		preview = c.executeTimed(ctx, conn, query, &logs)
	}

	b := bundle.Bundle{
		Query:         query,
		Explain:       plan,
		Logs:          strings.TrimSpace(strings.Join(logs, "\n")),
		Schema:        strings.TrimSpace(c.collectSchema(ctx, conn, tables)),
		Stats:         strings.TrimSpace(c.collectStats(ctx, conn, tables)),
		Config:        strings.TrimSpace(c.collectConfig(ctx, conn)),
		System:        strings.TrimSpace(c.collectSystem(ctx, conn)),
		ResultPreview: strings.TrimSpace(preview),
	}
	c.logger.Debug("postgres diagnostics collected",
		zap.Int("tables", len(tables)),
		zap.Bool("executed", !planOnly))
	return b, nil
}

// collectPlan runs EXPLAIN, with ANALYZE and BUFFERS when the query will be
// executed anyway. The estimated plan keeps plan-only collection side-effect
// free.
func (c *Postgres) collectPlan(ctx context.Context, conn *pgx.Conn, query string, planOnly bool, logs *[]string) string {
	stmt := "EXPLAIN (ANALYZE, BUFFERS) " + query
	if planOnly {
		stmt = "EXPLAIN " + query
	}
	rows, err := conn.Query(ctx, stmt)
	if err != nil {
		*logs = append(*logs, fmt.Sprintf("Error getting query plan: %v", err))
		return ""
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			*logs = append(*logs, fmt.Sprintf("Error reading query plan row: %v", err))
			return strings.Join(lines, "\n")
		}
		lines = append(lines, line)
	}
	*logs = append(*logs, "Query plan collected successfully")
	return strings.Join(lines, "\n")
}

func (c *Postgres) executeTimed(ctx context.Context, conn *pgx.Conn, query string, logs *[]string) string {
	*logs = append(*logs, "Executing query with timing...")
	start := time.Now()

	rows, err := conn.Query(ctx, query)
	if err != nil {
		*logs = append(*logs, fmt.Sprintf("Query failed after %.2f ms: %v", msSince(start), err))
		return ""
	}
	defer rows.Close()

	var cols []string
	for _, fd := range rows.FieldDescriptions() {
		cols = append(cols, fd.Name)
	}

	var fetched int
	var lines []string
	if len(cols) > 0 {
		lines = append(lines, strings.Join(cols, " | "))
		lines = append(lines, strings.Repeat("-", previewWidth(cols)))
	}
	for fetched < previewLimit && rows.Next() {
		vals, err := rows.Values()
		if err != nil {
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

func (c *Postgres) collectSchema(ctx context.Context, conn *pgx.Conn, tables []string) string {
	var lines []string
	for _, table := range tables {
		rows, err := conn.Query(ctx, `
			SELECT column_name, data_type, is_nullable
			FROM information_schema.columns
			WHERE table_name = $1
			ORDER BY ordinal_position`, table)
		if err != nil {
			lines = append(lines, fmt.Sprintf("Error getting schema for %s: %v", table, err))
			continue
		}
		var cols []string
		for rows.Next() {
			var name, dtype, nullable string
			if err := rows.Scan(&name, &dtype, &nullable); err != nil {
				break
			}
			null := "NULL"
			if nullable == "NO" {
				null = "NOT NULL"
			}
			cols = append(cols, fmt.Sprintf("  %s %s %s", name, dtype, null))
		}
		rows.Close()
		if len(cols) > 0 {
			lines = append(lines, "Table: "+table)
			lines = append(lines, cols...)
		}

		idxRows, err := conn.Query(ctx,
			`SELECT indexname, indexdef FROM pg_indexes WHERE tablename = $1`, table)
		if err != nil {
			continue
		}
		var idxLines []string
		for idxRows.Next() {
			var name, def string
			if err := idxRows.Scan(&name, &def); err != nil {
				break
			}
			idxLines = append(idxLines, "  "+def)
		}
		idxRows.Close()
		if len(idxLines) > 0 {
			lines = append(lines, "Indexes for "+table+":")
			lines = append(lines, idxLines...)
		}
	}
	return strings.Join(lines, "\n")
}

func (c *Postgres) collectStats(ctx context.Context, conn *pgx.Conn, tables []string) string {
	var lines []string
	for _, table := range tables {
		var reltuples float64
		var analyze, vacuum *time.Time
		err := conn.QueryRow(ctx, `
			SELECT c.reltuples, s.last_analyze, s.last_vacuum
			FROM pg_class c
			LEFT JOIN pg_stat_user_tables s ON s.relid = c.oid
			WHERE c.relname = $1`, table).Scan(&reltuples, &analyze, &vacuum)
		if err != nil {
			lines = append(lines, fmt.Sprintf("Error getting stats for %s: %v", table, err))
			continue
		}
		lines = append(lines, fmt.Sprintf("Table: %s", table))
		lines = append(lines, fmt.Sprintf("  Estimated rows: %.0f", reltuples))
		if analyze != nil {
			lines = append(lines, "  Last analyze: "+analyze.Format(time.RFC3339))
		} else {
			lines = append(lines, "  Never analyzed")
		}
		if vacuum != nil {
			lines = append(lines, "  Last vacuum: "+vacuum.Format(time.RFC3339))
		}
	}
	return strings.Join(lines, "\n")
}

// Planner-relevant settings worth surfacing to the model.
var pgSettings = []string{
	"work_mem", "shared_buffers", "effective_cache_size",
	"random_page_cost", "seq_page_cost", "max_parallel_workers_per_gather",
}

func (c *Postgres) collectConfig(ctx context.Context, conn *pgx.Conn) string {
	var lines []string
	for _, setting := range pgSettings {
		var value string
		if err := conn.QueryRow(ctx, "SHOW "+setting).Scan(&value); err != nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s = %s", setting, value))
	}
	return strings.Join(lines, "\n")
}

func (c *Postgres) collectSystem(ctx context.Context, conn *pgx.Conn) string {
	lines := []string{"Database: PostgreSQL"}
	var version string
	if err := conn.QueryRow(ctx, "SELECT version()").Scan(&version); err == nil {
		lines = append(lines, version)
	}
	var connections int
	if err := conn.QueryRow(ctx, "SELECT count(*) FROM pg_stat_activity").Scan(&connections); err == nil {
		lines = append(lines, fmt.Sprintf("Active connections: %d", connections))
	}
	return strings.Join(lines, "\n")
}
