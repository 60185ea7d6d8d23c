package statement

import "strings"

// TokenizeLine splits one CSV line into fields. Commas inside a double-quoted
// run do not terminate a field; a quote character toggles the in-quotes state
// and is not emitted. Fields are trimmed of surrounding whitespace. Malformed
// quoting degrades to best-effort splitting, there is no error path.
func TokenizeLine(line string) []string {
	fields := make([]string, 0, 8)
	var current strings.Builder
	inQuotes := false

	for _, ch := range line {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}

	fields = append(fields, strings.TrimSpace(current.String()))
	return fields
}
