package util

import (
	"bytes"
	"encoding/json"
)

// IndentJSON re-indents raw JSON with two spaces per level. Object key order
// is kept as it appears in raw.
func IndentJSON(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(raw), "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
