// File: internal/bench/report.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package bench

import (
	"bytes"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
)

// WriteJSON encodes v as indented JSON without HTML escaping.
func WriteJSON(w io.Writer, v any) error {
	buf := &bytes.Buffer{}
	encoder := json.NewEncoder(buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
