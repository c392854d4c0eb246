package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestParseDatasetName(t *testing.T) {
	ticker, interval, ok := parseDatasetName("data/BTC/BTC-USD_1d.csv")
	require.True(t, ok)
	assert.Equal(t, "BTC-USD", ticker)
	assert.Equal(t, "1d", interval)

	_, _, ok = parseDatasetName("data/prices.csv")
	assert.False(t, ok)
	_, _, ok = parseDatasetName("BTC_.csv")
	assert.False(t, ok)
}

func TestSplitThenJoin(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.csv")
	content := "datetime,open,high,low,close,volume\n" +
		"2024-01-01,1,2,0.5,1.5,3\n" +
		"2024-01-02,1,2,0.5,1.5,3\n" +
		"2024-01-03,1,2,0.5,1.5,3\n" +
		"2024-01-04,1,2,0.5,1.5,3\n"
	require.NoError(t, os.WriteFile(in, []byte(content), 0644))
	p := func(name string) string { return filepath.Join(dir, name) }

	out, err := execute(t, "split", in, p("a.csv"), p("b.csv"), p("c.csv"))
	require.NoError(t, err)
	assert.Contains(t, out, "(2 rows)")

	out, err = execute(t, "join", p("a.csv"), p("b.csv"), p("c.csv"), p("joined.csv"))
	require.NoError(t, err)
	assert.Contains(t, out, "(4 rows)")

	joined, err := os.ReadFile(p("joined.csv"))
	require.NoError(t, err)
	assert.Equal(t, content, string(joined))
}

func TestSplitNeedsFourArgs(t *testing.T) {
	_, err := execute(t, "split", "in.csv", "a.csv")
	assert.Error(t, err)
}

func TestValidateFailureIsSilentError(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("datetime,open,high,low,close,volume\n2024-01-01,3,2,0.5,1.5,3\n"), 0644))

	out, err := execute(t, "validate", "--layout", "ohlcv", bad)
	assert.ErrorIs(t, err, errValidationFailed)
	assert.Contains(t, out, "Validating "+bad)
	assert.Contains(t, out, "ERROR")
}
