package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"

	"StockScraper/internal/baseline"
	"StockScraper/internal/models"
)

// Supported database/sql driver names.
const (
	DriverSQLite = "sqlite"
	DriverLibSQL = "libsql"
)

const createBaselineTableSQL = `
CREATE TABLE IF NOT EXISTS baseline (
	"id" TEXT NOT NULL PRIMARY KEY,
	"item" TEXT NOT NULL,
	"price" TEXT NOT NULL DEFAULT '',
	"stock" TEXT NOT NULL DEFAULT 'Status Unknown',
	"created_at" DATETIME NOT NULL,
	"updated_at" DATETIME NOT NULL
);`

// ErrRecordNotFound is returned when an update targets an unknown id.
var ErrRecordNotFound = errors.New("baseline record not found")

// DBRepository is the SQL-backed baseline store.
type DBRepository struct {
	DB *sql.DB
}

var _ baseline.Store = (*DBRepository)(nil)

// Open connects to a local sqlite file (driver "sqlite") or a libsql
// server (driver "libsql") and makes sure the baseline table exists.
func Open(ctx context.Context, driver, dsn string) (*DBRepository, error) {
	if driver == "" {
		driver = DriverSQLite
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if driver == DriverSQLite {
		// an in-memory database lives in a single connection
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, createBaselineTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create baseline table: %w", err)
	}

	slog.Debug("baseline database initialized", "driver", driver)
	return &DBRepository{DB: db}, nil
}

// Close closes the database connection.
func (repo *DBRepository) Close() error {
	return repo.DB.Close()
}

// ReadAll returns every baseline record in insertion order.
func (repo *DBRepository) ReadAll(ctx context.Context) ([]models.BaselineRecord, error) {
	rows, err := repo.DB.QueryContext(ctx, `SELECT id, item, price, stock FROM baseline ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("query baseline: %w", err)
	}
	defer rows.Close()

	var records []models.BaselineRecord
	for rows.Next() {
		var rec models.BaselineRecord
		var stock string
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Price, &stock); err != nil {
			return nil, fmt.Errorf("scan baseline row: %w", err)
		}
		rec.Stock = models.StockStatus(stock)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate baseline rows: %w", err)
	}
	return records, nil
}

// Update writes price and stock for every record of the batch in one
// transaction, so a chunk is applied entirely or not at all.
func (repo *DBRepository) Update(ctx context.Context, batch []models.BaselineUpdate) error {
	tx, err := repo.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `UPDATE baseline SET price = ?, stock = ?, updated_at = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("prepare update: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, u := range batch {
		res, err := stmt.ExecContext(ctx, u.Fields.Price, string(u.Fields.Stock), now, u.ID)
		if err != nil {
			return fmt.Errorf("update %s: %w", u.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update %s: %w", u.ID, err)
		}
		if n == 0 {
			return fmt.Errorf("update %s: %w", u.ID, ErrRecordNotFound)
		}
	}
	return tx.Commit()
}

// Add starts tracking a product and returns the generated record.
func (repo *DBRepository) Add(ctx context.Context, name, price string, stock models.StockStatus) (models.BaselineRecord, error) {
	if stock == "" {
		stock = models.Unknown
	}
	rec := models.BaselineRecord{ID: uuid.NewString(), Name: name, Price: price, Stock: stock}

	now := time.Now().UTC()
	_, err := repo.DB.ExecContext(ctx,
		`INSERT INTO baseline (id, item, price, stock, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Name, rec.Price, string(rec.Stock), now, now,
	)
	if err != nil {
		return models.BaselineRecord{}, fmt.Errorf("insert baseline record: %w", err)
	}
	return rec, nil
}

// Remove stops tracking the record with the given id.
func (repo *DBRepository) Remove(ctx context.Context, id string) error {
	res, err := repo.DB.ExecContext(ctx, `DELETE FROM baseline WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete baseline record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRecordNotFound
	}
	return nil
}
