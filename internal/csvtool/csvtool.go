// Package csvtool splits, joins and reshapes dataset CSV files.
package csvtool

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/budydeveloper/crypto-dataset/internal/model"
)

// ErrNoRows is returned by Split for an input without data rows.
var ErrNoRows = errors.New("input has no data rows")

// ErrHeaderMismatch is returned by Join when input headers differ.
var ErrHeaderMismatch = errors.New("headers do not match")

func openCSV(path string) (*os.File, *csv.Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open %s", path)
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return f, r, nil
}

func countRows(path string) ([]string, int, error) {
	f, r, err := openCSV(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	header, err := r.Read()
	if err == io.EOF {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, errors.Wrapf(err, "read header of %s", path)
	}
	n := 0
	for {
		_, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, errors.Wrapf(err, "read %s", path)
		}
		n++
	}
	return header, n, nil
}

// PartSizes distributes n rows over k parts: sizes differ by at most one and the first
// n mod k parts take the extra row.
func PartSizes(n, k int) []int {
	sizes := make([]int, k)
	for i := range sizes {
		sizes[i] = n / k
		if i < n%k {
			sizes[i]++
		}
	}
	return sizes
}

// Split copies the header of input to every output and distributes the data rows over
// the outputs in order. It returns the row count of each part.
func Split(input string, outputs ...string) ([]int, error) {
	if len(outputs) == 0 {
		return nil, errors.New("split: no outputs")
	}
	header, n, err := countRows(input)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errors.Wrap(ErrNoRows, input)
	}
	sizes := PartSizes(n, len(outputs))

	f, r, err := openCSV(input)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if _, err := r.Read(); err != nil {
		return nil, errors.Wrapf(err, "read header of %s", input)
	}

	for i, out := range outputs {
		if err := writePart(out, header, r, sizes[i]); err != nil {
			return nil, err
		}
		slog.Info("part written", "path", out, "rows", sizes[i])
	}
	return sizes, nil
}

func writePart(path string, header []string, r *csv.Reader, rows int) error {
	out, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	w := csv.NewWriter(out)
	if err := w.Write(header); err != nil {
		out.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	for i := 0; i < rows; i++ {
		rec, err := r.Read()
		if err != nil {
			out.Close()
			return errors.Wrap(err, "read input")
		}
		if err := w.Write(rec); err != nil {
			out.Close()
			return errors.Wrapf(err, "write %s", path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		out.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return errors.Wrapf(out.Close(), "close %s", path)
}

func readHeader(path string) ([]string, error) {
	f, r, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	h, err := r.Read()
	if err != nil {
		return nil, errors.Wrapf(err, "read header of %s", path)
	}
	return h, nil
}

func sameHeader(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Join writes the shared header once followed by the rows of every input in order.
// Headers are checked before output is created.
func Join(output string, inputs ...string) (int, error) {
	if len(inputs) == 0 {
		return 0, errors.New("join: no inputs")
	}
	var header []string
	for i, in := range inputs {
		h, err := readHeader(in)
		if err != nil {
			return 0, err
		}
		if i == 0 {
			header = h
			continue
		}
		if !sameHeader(header, h) {
			return 0, errors.Wrapf(ErrHeaderMismatch, "%s has %v, %s has %v", inputs[0], header, in, h)
		}
	}

	out, err := os.Create(output)
	if err != nil {
		return 0, errors.Wrapf(err, "create %s", output)
	}
	defer out.Close()
	w := csv.NewWriter(out)
	if err := w.Write(header); err != nil {
		return 0, errors.Wrapf(err, "write %s", output)
	}

	total := 0
	for _, in := range inputs {
		n, err := copyRows(in, w)
		if err != nil {
			return 0, err
		}
		total += n
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, errors.Wrapf(err, "write %s", output)
	}
	slog.Info("joined", "output", output, "inputs", len(inputs), "rows", total)
	return total, errors.Wrapf(out.Close(), "close %s", output)
}

func copyRows(path string, w *csv.Writer) (int, error) {
	f, r, err := openCSV(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	if _, err := r.Read(); err != nil {
		return 0, errors.Wrapf(err, "read header of %s", path)
	}
	n := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, errors.Wrapf(err, "read %s", path)
		}
		if err := w.Write(rec); err != nil {
			return n, errors.Wrap(err, "write output")
		}
		n++
	}
}

// Clean column order and timestamp format.
var cleanColumns = []string{"Date", "Close", "High", "Low", "Open", "Volume"}

const cleanTimeFormat = "2006-01-02 15:04:05+00:00"

// CleanOutputPath returns the default output of Clean: clean_<name> next to input.
func CleanOutputPath(input string) string {
	return filepath.Join(filepath.Dir(input), "clean_"+filepath.Base(input))
}

// Clean reshapes an exchange export (Date, Symbol, Open, High, Low, Close, Volume, ...)
// into Date,Close,High,Low,Open,Volume with UTC timestamps.
func Clean(input, output string) (int, error) {
	f, r, err := openCSV(input)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	header, err := r.Read()
	if err != nil {
		return 0, errors.Wrapf(err, "read header of %s", input)
	}
	idx := make([]int, len(cleanColumns))
	for i, col := range cleanColumns {
		idx[i] = -1
		for j, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), col) {
				idx[i] = j
				break
			}
		}
		if idx[i] < 0 {
			return 0, errors.Errorf("%s: missing column %q", input, col)
		}
	}

	out, err := os.Create(output)
	if err != nil {
		return 0, errors.Wrapf(err, "create %s", output)
	}
	defer out.Close()
	w := csv.NewWriter(out)
	if err := w.Write(cleanColumns); err != nil {
		return 0, errors.Wrapf(err, "write %s", output)
	}

	n, line := 0, 1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return n, errors.Wrapf(err, "read %s", input)
		}
		row := make([]string, len(idx))
		for i, j := range idx {
			if j >= len(rec) {
				return n, errors.Errorf("%s:%d: expected at least %d columns", input, line, j+1)
			}
			row[i] = strings.TrimSpace(rec[j])
		}
		t, err := parseCleanTime(row[0])
		if err != nil {
			return n, errors.Wrapf(err, "%s:%d", input, line)
		}
		row[0] = t.Format(cleanTimeFormat)
		if err := w.Write(row); err != nil {
			return n, errors.Wrapf(err, "write %s", output)
		}
		n++
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return n, errors.Wrapf(err, "write %s", output)
	}
	slog.Info("cleaned", "input", input, "output", output, "rows", n)
	return n, errors.Wrapf(out.Close(), "close %s", output)
}

func parseCleanTime(s string) (time.Time, error) {
	if t, err := model.ParseTime(s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.Errorf("unrecognised date %q", s)
	}
	return t.UTC(), nil
}
