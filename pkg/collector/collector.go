package collector

import (
	"context"
	"regexp"

	"github.com/helmcode/sql-copilot/pkg/bundle"
)

// Collector gathers a diagnostic bundle for one SQL statement. With planOnly
// set the statement is only planned, never executed; otherwise it is executed
// with wall-clock timing recorded in the bundle's logs using the
// "Execution elapsed: <n> ms" convention that bundle.ElapsedMS extracts.
//
// Execution errors (bad SQL, missing table) are reported as log text inside
// the bundle, not as Go errors; Collect only fails when the database itself
// is unreachable.
type Collector interface {
	Collect(ctx context.Context, sql string, planOnly bool) (bundle.Bundle, error)
	Ping(ctx context.Context) error
}

// previewLimit caps how many rows an executed query fetches for the
// result preview.
const previewLimit = 50

var tableRe = regexp.MustCompile(`(?i)\b(?:FROM|JOIN)\s+([A-Za-z_][A-Za-z0-9_]*)`)

// tableNames extracts the table identifiers referenced by a query, without
// duplicates, in first-appearance order.
func tableNames(sql string) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range tableRe.FindAllStringSubmatch(sql, -1) {
		name := m[1]
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}
