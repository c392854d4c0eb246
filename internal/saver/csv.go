package saver

import (
	"encoding/csv"
	"io"
	"strconv"
)

// CSVSaver writes rows as CSV (header: t,o,h,l,c,v,qv,n,tbb,tbq).
type CSVSaver struct{}

func (CSVSaver) Extension() string { return "csv" }

func (s CSVSaver) Save(rows []Row, path string) error { return saveFile(path, rows, s.Encode) }

func (CSVSaver) Encode(out io.Writer, rows []Row) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"t", "o", "h", "l", "c", "v", "qv", "n", "tbb", "tbq"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write([]string{
			strconv.FormatInt(r.Timestamp, 10),
			floatStr(r.Open),
			floatStr(r.High),
			floatStr(r.Low),
			floatStr(r.Close),
			floatStr(r.Volume),
			floatStr(r.QuoteVolume),
			strconv.FormatInt(r.Trades, 10),
			floatStr(r.TakerBuyBase),
			floatStr(r.TakerBuyQuote),
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func floatStr(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
