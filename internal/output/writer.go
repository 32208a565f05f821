// Package output serializes extraction results to the configured
// format.
package output

import (
	"fmt"
	"io"
)

// Format represents output format types.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Writer handles output serialization.
type Writer interface {
	// Write outputs a single result.
	Write(data any) error
}

// NewWriter creates a writer for the specified format. pretty controls
// JSON indentation and is ignored for YAML.
func NewWriter(w io.Writer, format Format, pretty bool) (Writer, error) {
	switch format {
	case FormatJSON:
		return &JSONWriter{w: w, pretty: pretty}, nil
	case FormatYAML:
		return &YAMLWriter{w: w}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
