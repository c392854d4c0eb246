package tickers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Folder naming rules for a ticker's output directory.
const (
	FolderTrimSuffix = "trim-suffix" // BTCUSDT -> btc
	FolderSplitDash  = "split-dash"  // BTC-USD -> btc
	FolderTicker     = "ticker"      // EURUSD -> EURUSD
)

// LoadFromFile reads a list of tickers from a file.
// Supported formats, detected from content rather than extension:
//   - JSON array of strings (cryptos.txt)
//   - one ticker per line, '#' lines are treated as comments (forex.txt, stocks.txt)
func LoadFromFile(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tickers file %s: %w", path, err)
	}

	var tickers []string
	trimmed := bytes.TrimSpace(content)
	if bytes.HasPrefix(trimmed, []byte("[")) {
		if err := json.Unmarshal(trimmed, &tickers); err != nil {
			return nil, fmt.Errorf("parse JSON tickers %s: %w", path, err)
		}
	} else {
		tickers = parseTickersFromText(string(content))
	}

	// Remove empty and duplicates
	seen := make(map[string]bool)
	var unique []string
	for _, t := range tickers {
		t = strings.TrimSpace(strings.ToUpper(t))
		if t != "" && !seen[t] {
			seen[t] = true
			unique = append(unique, t)
		}
	}

	slog.Info("loaded tickers from file", "count", len(unique), "path", path)
	return unique, nil
}

// parseTickersFromText parses a plain text representation of tickers
// where each non-empty, non-comment line represents a ticker.
func parseTickersFromText(s string) []string {
	lines := strings.Split(s, "\n")
	var tickers []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			tickers = append(tickers, line)
		}
	}
	return tickers
}

// Folder returns the output directory name for ticker under rule.
func Folder(ticker, rule, suffix string) (string, error) {
	switch rule {
	case FolderTrimSuffix:
		return strings.ToLower(strings.TrimSuffix(ticker, suffix)), nil
	case FolderSplitDash:
		return strings.ToLower(strings.SplitN(ticker, "-", 2)[0]), nil
	case FolderTicker, "":
		return ticker, nil
	default:
		return "", fmt.Errorf("unknown folder rule %q", rule)
	}
}
