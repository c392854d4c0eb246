package saver

import (
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// GzipSaver compresses the output of a stream saver.
type GzipSaver struct {
	Inner StreamSaver
}

func (g GzipSaver) Extension() string { return g.Inner.Extension() + ".gz" }

func (g GzipSaver) Save(rows []Row, path string) error {
	return saveFile(path, rows, func(w io.Writer, rows []Row) error {
		zw := gzip.NewWriter(w)
		if err := g.Inner.Encode(zw, rows); err != nil {
			zw.Close()
			return err
		}
		return zw.Close()
	})
}

func saveFile(path string, rows []Row, encode func(io.Writer, []Row) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
