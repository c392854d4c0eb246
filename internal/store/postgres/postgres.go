// Package postgres loads dataset files into a PostgreSQL candles table.
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"

	"github.com/budydeveloper/crypto-dataset/internal/model"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Columns copied into the staging table, in CopyFrom order.
var Columns = []string{
	"ticker", "timeframe", "ts", "open", "high", "low", "close", "volume",
	"close_time", "quote_volume", "trades", "taker_buy_base", "taker_buy_quote",
}

const (
	stagingTable = "candles_staging"

	createStaging = `CREATE TEMP TABLE ` + stagingTable + ` (LIKE candles INCLUDING DEFAULTS) ON COMMIT DROP`

	mergeStaging = `INSERT INTO candles SELECT * FROM ` + stagingTable + `
ON CONFLICT (ticker, timeframe, ts) DO NOTHING`
)

// Migrate applies the embedded migrations. An up-to-date schema is not an error.
func Migrate(databaseURL string) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	defer m.Close()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		slog.Debug("no migration was applied")
		return nil
	}
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	slog.Info("applied migrations")
	return nil
}

// Rows converts candles to CopyFrom rows for ticker and interval.
func Rows(ticker, interval string, candles []model.Candle) [][]interface{} {
	rows := make([][]interface{}, len(candles))
	for i, c := range candles {
		rows[i] = []interface{}{
			ticker, interval, c.Time,
			c.Open, c.High, c.Low, c.Close, c.Volume,
			nullTime(c.CloseTime), nullFloat(c.QuoteVolume), nullInt(c.Trades),
			nullFloat(c.TakerBuyBase), nullFloat(c.TakerBuyQuote),
		}
	}
	return rows
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

func nullFloat(f float64) interface{} {
	if f == 0 {
		return nil
	}
	return f
}

func nullInt(n int64) interface{} {
	if n == 0 {
		return nil
	}
	return n
}

// Load inserts candles for ticker and interval, skipping timestamps already stored.
// It returns the number of inserted rows.
func Load(ctx context.Context, databaseURL, ticker, interval string, candles []model.Candle) (int64, error) {
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return 0, fmt.Errorf("connect to database: %w", err)
	}
	defer conn.Close(ctx)

	tx, err := conn.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, createStaging); err != nil {
		return 0, fmt.Errorf("create staging table: %w", err)
	}
	copied, err := tx.CopyFrom(ctx, pgx.Identifier{stagingTable}, Columns, pgx.CopyFromRows(Rows(ticker, interval, candles)))
	if err != nil {
		return 0, fmt.Errorf("copy rows: %w", err)
	}
	tag, err := tx.Exec(ctx, mergeStaging)
	if err != nil {
		return 0, fmt.Errorf("merge rows: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	slog.Info("loaded candles", "ticker", ticker, "interval", interval, "copied", copied, "inserted", tag.RowsAffected())
	return tag.RowsAffected(), nil
}
