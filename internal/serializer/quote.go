package serializer

import (
	"bytes"
	"encoding/json"
	"strings"
)

// quote renders s as a double-quoted string literal. JSON string syntax is
// valid TypeScript, and HTML escaping is turned off so <, > and & stay as
// written.
func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return `""`
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
