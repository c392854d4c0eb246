package csvtool

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "datetime,open,high,low,close,volume"

func rows(from, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("2024-01-01 00:%02d:00,%d,2,0.5,1.5,1", (from+i)%60, from+i)
	}
	return out
}

func write(t *testing.T, path string, lines ...string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

func read(t *testing.T, path string) []string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
}

func TestPartSizes(t *testing.T) {
	for n := 1; n <= 20; n++ {
		sizes := PartSizes(n, 3)
		sum, lo, hi := 0, sizes[0], sizes[0]
		for _, s := range sizes {
			sum += s
			lo, hi = min(lo, s), max(hi, s)
		}
		assert.Equal(t, n, sum)
		assert.LessOrEqual(t, hi-lo, 1)
		assert.GreaterOrEqual(t, sizes[0], sizes[2], "earlier parts take the remainder")
	}
	assert.Equal(t, []int{4, 3, 3}, PartSizes(10, 3))
	assert.Equal(t, []int{4, 4, 3}, PartSizes(11, 3))
}

func TestSplitThenJoinRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "BTC-USD_1m.csv")
	data := rows(0, 11)
	write(t, in, append([]string{header}, data...)...)

	parts := []string{filepath.Join(dir, "p1.csv"), filepath.Join(dir, "p2.csv"), filepath.Join(dir, "p3.csv")}
	sizes, err := Split(in, parts...)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 4, 3}, sizes)

	assert.Equal(t, append([]string{header}, data[:4]...), read(t, parts[0]))
	assert.Equal(t, append([]string{header}, data[4:8]...), read(t, parts[1]))
	assert.Equal(t, append([]string{header}, data[8:]...), read(t, parts[2]))

	joined := filepath.Join(dir, "joined.csv")
	n, err := Join(joined, parts...)
	require.NoError(t, err)
	assert.Equal(t, 11, n)
	assert.Equal(t, read(t, in), read(t, joined))
}

func TestSplitNoRows(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.csv")
	write(t, in, header)
	out := filepath.Join(dir, "p1.csv")

	_, err := Split(in, out, filepath.Join(dir, "p2.csv"), filepath.Join(dir, "p3.csv"))
	assert.True(t, errors.Is(err, ErrNoRows))
	assert.NoFileExists(t, out)
}

func TestJoinHeaderMismatch(t *testing.T) {
	dir := t.TempDir()
	a, b, c := filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.csv"), filepath.Join(dir, "c.csv")
	write(t, a, append([]string{header}, rows(0, 2)...)...)
	write(t, b, append([]string{header}, rows(2, 2)...)...)
	write(t, c, "Date,Open,High,Low,Close,Volume", "2024-01-01,1,2,0.5,1.5,1")

	out := filepath.Join(dir, "out.csv")
	_, err := Join(out, a, b, c)
	assert.True(t, errors.Is(err, ErrHeaderMismatch))
	assert.NoFileExists(t, out)
}

func TestJoinMissingInput(t *testing.T) {
	dir := t.TempDir()
	_, err := Join(filepath.Join(dir, "out.csv"), filepath.Join(dir, "nope.csv"))
	assert.Error(t, err)
}

func TestClean(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "BTC-USD_1h.csv")
	write(t, in,
		"Date,Symbol,Open,High,Low,Close,Volume,CloseTime,QuoteVol,Trades,TakerBuyBase,TakerBuyQuote",
		"2024-01-01 00:00:00,BTCUSDT,42000,42500,41800,42300,12.5,2024-01-01 00:59:59,500000,900,6,250000",
		"2024-01-01 01:00:00,BTCUSDT,42300,42400,42100,42200,8,2024-01-01 01:59:59,330000,700,4,170000",
	)
	out := CleanOutputPath(in)
	assert.Equal(t, filepath.Join(dir, "clean_BTC-USD_1h.csv"), out)

	n, err := Clean(in, out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{
		"Date,Close,High,Low,Open,Volume",
		"2024-01-01 00:00:00+00:00,42300,42500,41800,42000,12.5",
		"2024-01-01 01:00:00+00:00,42200,42400,42100,42300,8",
	}, read(t, out))
}

func TestCleanMissingColumn(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "x.csv")
	write(t, in, "Date,Open,High,Low,Close", "2024-01-01,1,2,0.5,1.5")
	_, err := Clean(in, filepath.Join(dir, "out.csv"))
	assert.ErrorContains(t, err, "Volume")
}
