package collector

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SampleOptions sizes the demo database. Defaults match the documented
// sample dataset: 50k customers, 100k orders, skewed order statuses.
type SampleOptions struct {
	Customers int
	Orders    int
}

func (o *SampleOptions) defaults() {
	if o.Customers <= 0 {
		o.Customers = 50000
	}
	if o.Orders <= 0 {
		o.Orders = 100000
	}
}

// CreateSampleDatabase builds the demo e-commerce SQLite file. The orders
// table deliberately has no secondary indexes, so date, status and amount
// filters demonstrate the missing-index diagnosis. An existing file at path
// is replaced.
func CreateSampleDatabase(ctx context.Context, path string, opts SampleOptions, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts.defaults()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("create sqlite database: %w", err)
	}
	defer db.Close()

	ddl := []string{
		`CREATE TABLE customers (
			customer_id INTEGER PRIMARY KEY,
			customer_name TEXT NOT NULL,
			email TEXT UNIQUE,
			registration_date DATE
		)`,
		`CREATE TABLE orders (
			order_id INTEGER PRIMARY KEY,
			customer_id INTEGER,
			order_date TIMESTAMP,
			created_at TIMESTAMP,
			total_amount DECIMAL(10,2),
			status TEXT,
			FOREIGN KEY (customer_id) REFERENCES customers(customer_id)
		)`,
	}
	for _, stmt := range ddl {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert transaction: %w", err)
	}
	defer tx.Rollback()

	logger.Info("inserting customers", zap.Int("count", opts.Customers))
	custStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO customers (customer_id, customer_name, email, registration_date) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare customer insert: %w", err)
	}
	defer custStmt.Close()
	for i := 1; i <= opts.Customers; i++ {
		reg := now.AddDate(0, 0, -rng.Intn(1095)-1)
		_, err := custStmt.ExecContext(ctx, i,
			fmt.Sprintf("Customer_%06d", i),
			fmt.Sprintf("customer%d@example.com", i),
			reg.Format("2006-01-02"))
		if err != nil {
			return fmt.Errorf("insert customer %d: %w", i, err)
		}
	}

	logger.Info("inserting orders", zap.Int("count", opts.Orders))
	orderStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO orders (order_id, customer_id, order_date, created_at, total_amount, status) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare order insert: %w", err)
	}
	defer orderStmt.Close()
	for i := 1; i <= opts.Orders; i++ {
		orderDate := now.AddDate(0, 0, -rng.Intn(365)-1)
		createdAt := orderDate.Add(time.Duration(rng.Intn(61)-30) * time.Minute)
		amount := 10 + rng.Float64()*490
		_, err := orderStmt.ExecContext(ctx, i,
			rng.Intn(opts.Customers)+1,
			orderDate.Format("2006-01-02 15:04:05"),
			createdAt.Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%.2f", amount),
			sampleStatus(rng))
		if err != nil {
			return fmt.Errorf("insert order %d: %w", i, err)
		}
	}

	// The email index stays; orders.created_at, orders.status and
	// orders.total_amount are intentionally left unindexed.
	if _, err := tx.ExecContext(ctx, "CREATE INDEX idx_customers_email ON customers(email)"); err != nil {
		return fmt.Errorf("create email index: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit sample data: %w", err)
	}

	if _, err := db.ExecContext(ctx, "ANALYZE"); err != nil {
		return fmt.Errorf("analyze sample database: %w", err)
	}

	logger.Info("sample database created", zap.String("path", path))
	return nil
}

// Status distribution: 65% completed, 25% pending, 10% cancelled.
func sampleStatus(rng *rand.Rand) string {
	switch v := rng.Float64(); {
	case v < 0.65:
		return "completed"
	case v < 0.90:
		return "pending"
	default:
		return "cancelled"
	}
}
