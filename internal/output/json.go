// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// WriteJSON encodes data as indented JSON without HTML escaping, so CPE
// and vector strings stay readable.
func WriteJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}

// WriteJSONFile replaces path with the JSON encoding of data.
func WriteJSONFile(path string, data any) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating JSON output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing JSON output: %w", cerr)
		}
	}()
	return WriteJSON(f, data)
}
