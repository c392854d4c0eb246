package crawl

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/budydeveloper/crypto-dataset/internal/model"
	"github.com/budydeveloper/crypto-dataset/internal/provider"
)

func TestSplitWindowsPartition(t *testing.T) {
	start := time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 40).Add(3 * time.Hour)

	ws := SplitWindows(start, end, 15)
	require.Len(t, ws, 3)
	assert.Equal(t, start, ws[0].From)
	assert.Equal(t, end, ws[len(ws)-1].To)
	for i, w := range ws {
		assert.True(t, w.From.Before(w.To))
		assert.LessOrEqual(t, w.To.Sub(w.From), 15*24*time.Hour)
		if i > 0 {
			assert.Equal(t, ws[i-1].To, w.From, "windows are contiguous")
		}
	}

	assert.Empty(t, SplitWindows(end, start, 15))
	assert.Empty(t, SplitWindows(start, end, 0))
}

func TestDownloadRangeSkipsFailedWindow(t *testing.T) {
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fp := newFake(first, time.Hour)
	fp.failFrom[first.AddDate(0, 0, 2)] = true

	iv, err := model.ParseInterval("1h")
	require.NoError(t, err)
	got, stats := DownloadRange(context.Background(), fp, provider.Query{Symbol: "BTCUSDT", Interval: iv}, first, first.AddDate(0, 0, 6), 2)

	assert.Equal(t, DownloadStats{Windows: 3, Failed: 1}, stats)
	require.Len(t, got, 96, "two of three windows")
	assert.Equal(t, first, got[0].Time)
	assert.Equal(t, first.AddDate(0, 0, 4), got[48].Time)
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i-1].Time.Before(got[i].Time))
	}
}

func TestDownloadRangeEmptyWindows(t *testing.T) {
	first := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	fp := newFake(first, 24*time.Hour)

	iv, err := model.ParseInterval("1d")
	require.NoError(t, err)
	got, stats := DownloadRange(context.Background(), fp, provider.Query{Symbol: "X", Interval: iv},
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC), 2)
	assert.Equal(t, 2, stats.Empty)
	assert.Len(t, got, 2)
}
