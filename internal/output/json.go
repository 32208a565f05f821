package output

import (
	"encoding/json"
	"io"
)

// JSONWriter writes JSON output, optionally indented.
type JSONWriter struct {
	w      io.Writer
	pretty bool
}

// Write serializes data as one JSON object followed by a newline.
func (w *JSONWriter) Write(data any) error {
	var out []byte
	var err error
	if w.pretty {
		out, err = json.MarshalIndent(data, "", "  ")
	} else {
		out, err = json.Marshal(data)
	}
	if err != nil {
		return err
	}
	if _, err := w.w.Write(out); err != nil {
		return err
	}
	_, err = io.WriteString(w.w, "\n")
	return err
}
