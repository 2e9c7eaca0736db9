package parser

import (
	"strings"
	"testing"
)

const mockImprovedResponse = "<improved>\n" +
	"-- rationale: Select only the needed columns and push the filter into an indexed lookup.\n" +
	"```sql\n" +
	"SELECT id, total, created_at\nFROM orders\nWHERE customer_id = 42\nORDER BY created_at DESC\n" +
	"```\n" +
	"</improved>"

func TestParseImprovedQuery(t *testing.T) {
	out := ParseImprovedQuery(mockImprovedResponse)

	if out.RawResponse != mockImprovedResponse {
		t.Error("raw response must be retained")
	}
	if !strings.Contains(out.Rationale, "indexed lookup") {
		t.Errorf("rationale = %q", out.Rationale)
	}
	if !strings.HasPrefix(out.ImprovedQuery, "SELECT id, total, created_at") {
		t.Errorf("query = %q", out.ImprovedQuery)
	}
	if strings.Contains(out.ImprovedQuery, "```") {
		t.Error("fence markers leaked into the query")
	}
}

func TestParseImprovedQueryGenericFence(t *testing.T) {
	out := ParseImprovedQuery("Here you go:\n```\nSELECT 1\n```")
	if out.ImprovedQuery != "SELECT 1" {
		t.Errorf("query = %q, want SELECT 1", out.ImprovedQuery)
	}
}

func TestParseImprovedQueryNoFence(t *testing.T) {
	out := ParseImprovedQuery("I cannot improve this query further.")
	if out.ImprovedQuery != "" {
		t.Errorf("query should be empty, got %q", out.ImprovedQuery)
	}
}

func TestSanitizeStatement(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain select",
			in:   "SELECT * FROM orders",
			want: "SELECT * FROM orders",
		},
		{
			name: "with cte",
			in:   "WITH recent AS (SELECT id FROM orders) SELECT * FROM recent",
			want: "WITH recent AS (SELECT id FROM orders) SELECT * FROM recent",
		},
		{
			name: "leading comments stripped",
			in:   "-- optimized version\n/* uses the new index */\nSELECT id FROM orders",
			want: "SELECT id FROM orders",
		},
		{
			name: "prose before keyword discarded",
			in:   "The improved query is: SELECT id FROM orders",
			want: "SELECT id FROM orders",
		},
		{
			name: "truncated at first terminator",
			in:   "SELECT id FROM orders; DROP TABLE orders",
			want: "SELECT id FROM orders",
		},
		{
			name: "ddl rejected",
			in:   "CREATE INDEX idx_orders_customer_id ON orders(customer_id)",
			want: "",
		},
		{
			name: "write rejected",
			in:   "DELETE FROM orders WHERE id = 1",
			want: "",
		},
		{
			name: "lowercase keyword accepted",
			in:   "select id from orders",
			want: "select id from orders",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeStatement(tt.in); got != tt.want {
				t.Errorf("SanitizeStatement(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// A rewrite that smuggles a write after the SELECT must come out read-only.
func TestParseImprovedQueryRejectsWriteSmuggling(t *testing.T) {
	out := ParseImprovedQuery("```sql\nSELECT 1; DELETE FROM orders\n```")
	if out.ImprovedQuery != "SELECT 1" {
		t.Errorf("query = %q, want SELECT 1", out.ImprovedQuery)
	}
}

func TestParseImprovedQueryCreateIndexRejected(t *testing.T) {
	out := ParseImprovedQuery("-- rationale: add the missing index\n```sql\nCREATE INDEX idx ON orders(customer_id)\n```")
	if out.ImprovedQuery != "" {
		t.Errorf("DDL candidate must be rejected, got %q", out.ImprovedQuery)
	}
	if out.Rationale == "" {
		t.Error("rationale should still be extracted")
	}
}
