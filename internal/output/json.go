package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// RenderJSON writes any view model as indented JSON.
func RenderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("render JSON: %w", err)
	}
	return nil
}
