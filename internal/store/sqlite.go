package store

import (
	"context"
	"database/sql"
	"fmt"

	"stockviz/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface checks.
var _ CatalogReader = (*SQLiteStore)(nil)
var _ CatalogWriter = (*SQLiteStore)(nil)

// SQLiteStore keeps the catalog in a single daily_records table. The year
// column is the catalog bucket the record belongs to.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and runs
// migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS daily_records (
			symbol     TEXT    NOT NULL,
			date       TEXT    NOT NULL,
			year       INTEGER NOT NULL,
			open       REAL,
			high       REAL,
			low        REAL,
			close      REAL,
			market_cap REAL,
			PRIMARY KEY (symbol, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_daily_symbol_year ON daily_records(symbol, year)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// CatalogWriter implementation
// ---------------------------------------------------------------------------

// WriteCatalog upserts every record of c in one transaction.
func (s *SQLiteStore) WriteCatalog(ctx context.Context, c *domain.Catalog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO daily_records
		(symbol, date, year, open, high, low, close, market_cap)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, ticker := range c.Tickers() {
		for _, year := range c.Years(ticker) {
			recs, _ := c.Records(ticker, year)
			for _, r := range recs {
				if _, err := stmt.ExecContext(ctx, ticker, r.Date.String(), year,
					r.Open, r.High, r.Low, r.Close, r.MarketCap); err != nil {
					return fmt.Errorf("insert %s %s: %w", ticker, r.Date, err)
				}
			}
		}
	}
	return tx.Commit()
}

// ---------------------------------------------------------------------------
// CatalogReader implementation
// ---------------------------------------------------------------------------

// ReadCatalog loads every row, bucketed by its stored year.
func (s *SQLiteStore) ReadCatalog(ctx context.Context) (*domain.Catalog, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT symbol, date, year, open, high, low, close, market_cap
		FROM daily_records ORDER BY symbol, year, date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	b := domain.NewCatalogBuilder()
	for rows.Next() {
		var (
			symbol, date string
			year         int
			r            domain.DailyRecord
		)
		if err := rows.Scan(&symbol, &date, &year, &r.Open, &r.High, &r.Low, &r.Close, &r.MarketCap); err != nil {
			return nil, err
		}
		if r.Date, err = domain.ParseDate(date); err != nil {
			return nil, fmt.Errorf("%s row %s: %w", symbol, date, err)
		}
		b.Add(symbol, year, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return b.Build(), nil
}

// ListSymbols returns the distinct tickers in the table.
func (s *SQLiteStore) ListSymbols(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT symbol FROM daily_records ORDER BY symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, err
		}
		symbols = append(symbols, sym)
	}
	return symbols, rows.Err()
}
