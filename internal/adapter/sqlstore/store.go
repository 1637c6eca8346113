// Package sqlstore loads daily weather observations from a MySQL database
// into a date-indexed table.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/agroclim/dssat-weather-etl/internal/domain"
)

// Store wraps a MySQL connection used by the one-shot generator.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open connects to MySQL and verifies the connection. The DSN follows the
// go-sql-driver format: "user:pass@tcp(host:3306)/dbname". parseTime is
// forced on so DATE and DATETIME columns scan as time.Time.
func Open(dsn string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("mysql", ensureParseTime(dsn))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Store{db: db, logger: logger}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// LoadTable runs a query and materializes the result as a table. The first
// column must be a DATE or DATETIME and becomes the date index; every other
// column is read as a float variable, with NULL stored as a missing value.
func (s *Store) LoadTable(ctx context.Context, query string, args ...any) (*domain.Table, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Error("close observation rows", "error", err)
		}
	}()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read column names: %w", err)
	}
	if len(names) < 2 {
		return nil, fmt.Errorf("query must select a date column and at least one variable, got %d columns", len(names))
	}

	var (
		dates  []time.Time
		values = make([][]float64, len(names)-1)
	)
	for rows.Next() {
		var date sql.NullTime
		floats := make([]sql.NullFloat64, len(names)-1)
		dest := make([]any, len(names))
		dest[0] = &date
		for i := range floats {
			dest[i+1] = &floats[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan observation row: %w", err)
		}
		if !date.Valid {
			return nil, fmt.Errorf("row %d has a NULL date", len(dates))
		}
		dates = append(dates, date.Time)
		for i, f := range floats {
			v := domain.NA()
			if f.Valid {
				v = f.Float64
			}
			values[i] = append(values[i], v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate observation rows: %w", err)
	}

	tbl := domain.NewTable()
	for i, name := range names[1:] {
		if err := tbl.AddFloatColumn(name, values[i]); err != nil {
			return nil, err
		}
	}
	if err := tbl.SetIndex(dates); err != nil {
		return nil, err
	}

	s.logger.Info("loaded observations from database",
		"rows", len(dates),
		"variables", len(names)-1,
	)
	return tbl, nil
}

func ensureParseTime(dsn string) string {
	if strings.Contains(dsn, "parseTime=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "parseTime=true"
}
