package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// writeJSON prints v as indented JSON to path, or to w when path is empty.
func writeJSON(w io.Writer, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
