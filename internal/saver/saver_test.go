package saver

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/budydeveloper/crypto-dataset/internal/model"
)

func sampleRows() []Row {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return FromCandles([]model.Candle{
		{Time: t0, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10, Trades: 3},
		{Time: t0.Add(time.Hour), Open: 1.5, High: 2.5, Low: 1, Close: 2, Volume: 4, QuoteVolume: 8},
	})
}

func TestNewPacketSaver(t *testing.T) {
	for format, ext := range map[string]string{"csv": "csv", " JSON ": "json", "parquet": "parquet"} {
		s, err := NewPacketSaver(format, false)
		require.NoError(t, err)
		assert.Equal(t, ext, s.Extension())
	}
	s, err := NewPacketSaver("csv", true)
	require.NoError(t, err)
	assert.Equal(t, "csv.gz", s.Extension())

	_, err = NewPacketSaver("parquet", true)
	assert.Error(t, err)
	_, err = NewPacketSaver("xlsx", false)
	assert.Error(t, err)
}

func TestCSVSaver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, CSVSaver{}.Save(sampleRows(), path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "t,o,h,l,c,v,qv,n,tbb,tbq\n"+
		"1704067200000,1,2,0.5,1.5,10,0,3,0,0\n"+
		"1704070800000,1.5,2.5,1,2,4,8,0,0,0\n", string(b))
}

func TestGzipJSONSaver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json.gz")
	s, err := NewPacketSaver("json", true)
	require.NoError(t, err)
	require.NoError(t, s.Save(sampleRows(), path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	var got []Row
	require.NoError(t, json.NewDecoder(zr).Decode(&got))
	assert.Equal(t, sampleRows(), got)
}

func TestParquetSaver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.parquet")
	require.NoError(t, ParquetSaver{}.Save(sampleRows(), path))

	got, err := parquet.ReadFile[Row](path)
	require.NoError(t, err)
	assert.Equal(t, sampleRows(), got)
}

func TestSaveToMissingDir(t *testing.T) {
	err := CSVSaver{}.Save(sampleRows(), filepath.Join(t.TempDir(), "nope", "out.csv"))
	assert.Error(t, err)
}
