package statement

import (
	"fmt"
	"strings"
)

// ParseResult carries the outcome of parsing one statement file. Row-level
// failures are isolated: each bad row contributes one line-numbered error
// string and the remaining rows still parse.
type ParseResult struct {
	Transactions []*Transaction
	Errors       []string
}

// Parse reads a whole statement using the given layout. The first line is
// the header and is skipped; blank lines are ignored. Line numbers in error
// strings are 1-based positions in the file, so the first data row is line 2.
func Parse(content string, format Format) ParseResult {
	lines := strings.Split(strings.TrimSpace(content), "\n")

	var result ParseResult
	if len(lines) < 2 {
		return result
	}

	for i, line := range lines[1:] {
		lineNo := i + 2
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" {
			continue
		}

		tx, err := MapRow(format, TokenizeLine(line))
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", lineNo, err))
			continue
		}
		if tx == nil {
			// Both sides zero; dropped by policy.
			continue
		}
		result.Transactions = append(result.Transactions, tx)
	}

	return result
}

// ParseAuto detects the layout from the header line and parses with it.
// Detection is heuristic; use Parse directly to force a known format.
func ParseAuto(content string) (Format, ParseResult) {
	trimmed := strings.TrimSpace(content)
	header, _, _ := strings.Cut(trimmed, "\n")
	format := DetectFormat(header)
	return format, Parse(content, format)
}
