package collector

import (
	"context"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestTableNames(t *testing.T) {
	tests := []struct {
		sql  string
		want []string
	}{
		{"SELECT * FROM orders", []string{"orders"}},
		{"SELECT * FROM orders o JOIN customers c ON c.id = o.customer_id", []string{"orders", "customers"}},
		{"select 1 from orders join orders self on 1=1", []string{"orders"}},
		{"SELECT 1", nil},
	}
	for _, tt := range tests {
		if got := tableNames(tt.sql); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("tableNames(%q) = %v, want %v", tt.sql, got, tt.want)
		}
	}
}

// End-to-end over a real file-backed database: seed a small sample, then
// collect with execution and check every bundle section came back populated.
func TestSQLiteCollect(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	err := CreateSampleDatabase(ctx, path, SampleOptions{Customers: 50, Orders: 100}, nil)
	if err != nil {
		t.Fatal(err)
	}

	coll := NewSQLite(path, nil)
	if err := coll.Ping(ctx); err != nil {
		t.Fatal(err)
	}

	b, err := coll.Collect(ctx, "SELECT * FROM orders WHERE customer_id = 1", false)
	if err != nil {
		t.Fatal(err)
	}

	if b.Explain == "" {
		t.Error("explain plan missing")
	}
	if !strings.Contains(b.Schema, "orders") {
		t.Errorf("schema missing orders table:\n%s", b.Schema)
	}
	if !strings.Contains(b.Stats, "orders") {
		t.Errorf("stats missing orders table:\n%s", b.Stats)
	}
	if b.Config == "" || b.System == "" {
		t.Error("config and system sections should be populated")
	}
	if _, ok := b.Elapsed(); !ok {
		t.Errorf("executed collection must record a timing, logs:\n%s", b.Logs)
	}
}

func TestSQLiteCollectPlanOnly(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")
	if err := CreateSampleDatabase(ctx, path, SampleOptions{Customers: 10, Orders: 20}, nil); err != nil {
		t.Fatal(err)
	}

	coll := NewSQLite(path, nil)
	b, err := coll.Collect(ctx, "SELECT * FROM orders", true)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := b.Elapsed(); ok {
		t.Errorf("plan-only collection must not record a timing, logs:\n%s", b.Logs)
	}
	if b.Explain == "" {
		t.Error("plan-only collection should still carry a plan")
	}
}

// Bad SQL is evidence, not a collection failure: the error lands in the
// bundle's logs.
func TestSQLiteCollectBadQuery(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")
	if err := CreateSampleDatabase(ctx, path, SampleOptions{Customers: 10, Orders: 20}, nil); err != nil {
		t.Fatal(err)
	}

	coll := NewSQLite(path, nil)
	b, err := coll.Collect(ctx, "SELECT * FROM no_such_table", false)
	if err != nil {
		t.Fatalf("bad SQL should not fail collection: %v", err)
	}
	if !strings.Contains(b.Logs, "no_such_table") && !strings.Contains(strings.ToLower(b.Logs), "error") && !strings.Contains(b.Logs, "failed") {
		t.Errorf("execution error missing from logs:\n%s", b.Logs)
	}
}

func TestCreateSampleDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sample.db")

	if err := CreateSampleDatabase(ctx, path, SampleOptions{Customers: 25, Orders: 40}, nil); err != nil {
		t.Fatal(err)
	}

	coll := NewSQLite(path, nil)
	b, err := coll.Collect(ctx, "SELECT COUNT(*) AS n FROM orders", false)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.ResultPreview, "40") {
		t.Errorf("expected 40 orders, preview:\n%s", b.ResultPreview)
	}

	// orders is deliberately shipped without secondary indexes.
	b, err = coll.Collect(ctx, "SELECT * FROM orders WHERE customer_id = 1", true)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(strings.ToUpper(b.Explain), "SCAN") {
		t.Errorf("unindexed lookup should plan as a scan:\n%s", b.Explain)
	}
}
