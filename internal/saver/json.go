package saver

import (
	"encoding/json"
	"io"
)

// JSONSaver writes rows as an indented JSON array.
type JSONSaver struct{}

func (JSONSaver) Extension() string { return "json" }

func (s JSONSaver) Save(rows []Row, path string) error { return saveFile(path, rows, s.Encode) }

func (JSONSaver) Encode(w io.Writer, rows []Row) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
