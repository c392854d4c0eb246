package postgres

import (
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/budydeveloper/crypto-dataset/internal/model"
)

func TestRows(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := Rows("BTCUSDT", "1h", []model.Candle{
		{Time: ts, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10, CloseTime: ts.Add(time.Hour - time.Millisecond), Trades: 7},
		{Time: ts.Add(time.Hour), Open: 1.5, High: 2, Low: 1, Close: 2, Volume: 3},
	})
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Len(t, r, len(Columns))
	}
	assert.Equal(t, []interface{}{
		"BTCUSDT", "1h", ts, 1.0, 2.0, 0.5, 1.5, 10.0,
		ts.Add(time.Hour - time.Millisecond), nil, int64(7), nil, nil,
	}, rows[0])
	assert.Nil(t, rows[1][8], "missing close time is NULL")
}

func TestEmbeddedMigrations(t *testing.T) {
	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"migrations/0001_create_candles.down.sql",
		"migrations/0001_create_candles.up.sql",
	}, names)

	up, err := fs.ReadFile(migrationFiles, "migrations/0001_create_candles.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(up), "PRIMARY KEY (ticker, timeframe, ts)")
}
