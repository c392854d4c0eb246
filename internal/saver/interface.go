package saver

import (
	"fmt"
	"io"
	"strings"

	"github.com/budydeveloper/crypto-dataset/internal/model"
)

// Row is the export DTO for one candle (CSV/Parquet/JSON).
type Row struct {
	Timestamp     int64   `json:"t" parquet:"t"` // open time, Unix milliseconds
	Open          float64 `json:"o" parquet:"o"`
	High          float64 `json:"h" parquet:"h"`
	Low           float64 `json:"l" parquet:"l"`
	Close         float64 `json:"c" parquet:"c"`
	Volume        float64 `json:"v" parquet:"v"`
	QuoteVolume   float64 `json:"qv,omitempty" parquet:"qv,optional"`
	Trades        int64   `json:"n,omitempty" parquet:"n,optional"`
	TakerBuyBase  float64 `json:"tbb,omitempty" parquet:"tbb,optional"`
	TakerBuyQuote float64 `json:"tbq,omitempty" parquet:"tbq,optional"`
}

// FromCandles converts candles to export rows.
func FromCandles(candles []model.Candle) []Row {
	rows := make([]Row, len(candles))
	for i, c := range candles {
		rows[i] = Row{
			Timestamp:     c.Time.UnixMilli(),
			Open:          c.Open,
			High:          c.High,
			Low:           c.Low,
			Close:         c.Close,
			Volume:        c.Volume,
			QuoteVolume:   c.QuoteVolume,
			Trades:        c.Trades,
			TakerBuyBase:  c.TakerBuyBase,
			TakerBuyQuote: c.TakerBuyQuote,
		}
	}
	return rows
}

// PacketSaver writes rows to a file in one format.
type PacketSaver interface {
	Save(rows []Row, path string) error
	Extension() string
}

// StreamSaver is a PacketSaver that can also encode to any writer.
type StreamSaver interface {
	PacketSaver
	Encode(w io.Writer, rows []Row) error
}

// NewPacketSaver creates implementation by format (csv, parquet, json).
// gzip wraps csv and json output.
func NewPacketSaver(format string, gzip bool) (PacketSaver, error) {
	var s PacketSaver
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		s = CSVSaver{}
	case "parquet":
		s = ParquetSaver{}
	case "json":
		s = JSONSaver{}
	default:
		return nil, fmt.Errorf("unsupported export format %q (use: csv, parquet, json)", format)
	}
	if !gzip {
		return s, nil
	}
	ss, ok := s.(StreamSaver)
	if !ok {
		return nil, fmt.Errorf("gzip is not available for %s", s.Extension())
	}
	return GzipSaver{Inner: ss}, nil
}
