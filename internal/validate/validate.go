// Package validate checks dataset CSV files for structural and price-coherence errors.
package validate

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/budydeveloper/crypto-dataset/internal/model"
)

// Kind classifies a validation issue.
type Kind string

const (
	KindEmpty     Kind = "empty"
	KindHeader    Kind = "header"
	KindColumns   Kind = "columns"
	KindTimestamp Kind = "timestamp"
	KindNumeric   Kind = "numeric"
	KindPrice     Kind = "price"
	KindRead      Kind = "read"
)

// Layout selection.
const (
	LayoutAuto    = "auto"
	LayoutOHLCV   = "ohlcv"
	LayoutBinance = "binance"
)

// Issue is one problem found in a file. Line is the 1-based file line, header being line 1;
// zero for file-level issues.
type Issue struct {
	Line    int    `json:"line,omitempty"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", i.Line, i.Kind, i.Message)
	}
	return fmt.Sprintf("%s: %s", i.Kind, i.Message)
}

// FileResult collects the issues of one file.
type FileResult struct {
	Path   string  `json:"path"`
	Layout string  `json:"layout,omitempty"`
	Rows   int     `json:"rows"`
	Issues []Issue `json:"issues"`
}

// OK reports whether the file has no issues.
func (r FileResult) OK() bool { return len(r.Issues) == 0 }

// Options control header expectations.
type Options struct {
	Layout       string // auto, ohlcv or binance
	ExtraColumns int    // trailing columns accepted after the layout's columns
}

func (o Options) check() error {
	switch o.Layout {
	case "", LayoutAuto, LayoutOHLCV, LayoutBinance:
	default:
		return fmt.Errorf("unknown layout %q", o.Layout)
	}
	if o.ExtraColumns < 0 {
		return fmt.Errorf("extra columns must not be negative")
	}
	return nil
}

var timeFormats = []string{model.DateFormat, model.DateTimeFormat}

// File validates one file. Issues are accumulated; validation never stops at the first one.
func File(path string, opts Options) FileResult {
	res := FileResult{Path: path}
	add := func(line int, kind Kind, format string, args ...interface{}) {
		res.Issues = append(res.Issues, Issue{Line: line, Kind: kind, Message: fmt.Sprintf(format, args...)})
	}

	f, err := os.Open(path)
	if err != nil {
		add(0, KindRead, "%v", err)
		return res
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		add(0, KindEmpty, "file is empty")
		return res
	}
	if err != nil {
		add(1, KindRead, "%v", err)
		return res
	}

	layout := expectedLayout(header, opts.Layout)
	res.Layout = layout.Name
	want := len(layout.Columns) + opts.ExtraColumns
	if len(header) != want || !sameColumns(header[:min(len(header), len(layout.Columns))], layout.Columns) {
		add(1, KindHeader, "expected %v plus %d extra column(s), found %v", layout.Columns, opts.ExtraColumns, header)
	}

	line := 1
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			add(line, KindRead, "%v", err)
			// Syntax errors affect one record, I/O errors end the file.
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				continue
			}
			break
		}
		res.Rows++
		if len(rec) != want {
			add(line, KindColumns, "expected %d columns, found %d", want, len(rec))
			continue
		}
		if !validTime(rec[0]) {
			add(line, KindTimestamp, "invalid timestamp %q, expected YYYY-MM-DD or YYYY-MM-DD HH:MM:SS", rec[0])
		}

		var vals [5]decimal.Decimal
		names := [5]string{"open", "high", "low", "close", "volume"}
		numericOK := true
		for i := range vals {
			d, err := decimal.NewFromString(strings.TrimSpace(rec[i+1]))
			if err != nil {
				add(line, KindNumeric, "%s %q is not a number", names[i], rec[i+1])
				numericOK = false
				break
			}
			vals[i] = d
		}
		if !numericOK {
			continue
		}
		open, high, low, cls := vals[0], vals[1], vals[2], vals[3]
		if low.GreaterThan(open) || open.GreaterThan(high) {
			add(line, KindPrice, "open %s outside [low %s, high %s]", open, low, high)
		}
		if low.GreaterThan(cls) || cls.GreaterThan(high) {
			add(line, KindPrice, "close %s outside [low %s, high %s]", cls, low, high)
		}
	}
	return res
}

// Files validates each path in order.
func Files(paths []string, opts Options) ([]FileResult, error) {
	if err := opts.check(); err != nil {
		return nil, err
	}
	out := make([]FileResult, 0, len(paths))
	for _, p := range paths {
		out = append(out, File(p, opts))
	}
	return out, nil
}

// Discover lists files matching pattern in sorted order.
func Discover(pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*.csv"
	}
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// Failed reports whether any result has issues.
func Failed(results []FileResult) bool {
	for _, r := range results {
		if !r.OK() {
			return true
		}
	}
	return false
}

// Print writes a human readable summary, one block per file.
func Print(w io.Writer, results []FileResult) {
	for _, r := range results {
		fmt.Fprintf(w, "Validating %s\n", r.Path)
		if r.OK() {
			fmt.Fprintln(w, "  OK")
			continue
		}
		for _, i := range r.Issues {
			fmt.Fprintf(w, "  ERROR: %s\n", i)
		}
	}
}

type jsonReport struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Failed      bool         `json:"failed"`
	Files       []FileResult `json:"files"`
}

// WriteJSON writes results as an indented JSON report.
func WriteJSON(w io.Writer, results []FileResult, now time.Time) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{GeneratedAt: now.UTC(), Failed: Failed(results), Files: results})
}

func expectedLayout(header []string, name string) model.Layout {
	switch name {
	case LayoutBinance:
		return model.Binance
	case LayoutOHLCV:
		return model.OHLCV
	}
	if len(header) > 0 && strings.EqualFold(strings.TrimSpace(header[0]), model.Binance.Columns[0]) {
		return model.Binance
	}
	return model.OHLCV
}

func sameColumns(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if strings.TrimSpace(got[i]) != want[i] {
			return false
		}
	}
	return true
}

func validTime(s string) bool {
	for _, f := range timeFormats {
		if _, err := time.Parse(f, s); err == nil {
			return true
		}
	}
	return false
}
