package statement

import "strings"

// Format identifies one of the known bank CSV export layouts. Each format
// fixes the column positions, the minimum field count and the sign
// convention for income versus expense.
type Format int

const (
	// FormatCommonwealth: Date, Description, Credit Amount, Debit Amount, Balance
	FormatCommonwealth Format = iota
	// FormatANZ: Date, Amount, Description, Balance (signed single amount)
	FormatANZ
	// FormatWestpac: Date, Description, Debit Amount, Credit Amount, Running Balance
	FormatWestpac
)

func (f Format) String() string {
	switch f {
	case FormatCommonwealth:
		return "commonwealth"
	case FormatANZ:
		return "anz"
	case FormatWestpac:
		return "westpac"
	default:
		return "unknown"
	}
}

// DetectFormat selects a layout from a statement's header line using
// case-insensitive substring heuristics. Distinct credit/debit columns plus a
// running-balance column mark a Westpac export; credit/debit without it mark
// Commonwealth; a single amount column next to a balance column marks ANZ.
// This is a best-effort classifier: when nothing matches it falls back to
// FormatCommonwealth, and callers may force a format explicitly.
func DetectFormat(header string) Format {
	h := strings.ToLower(header)

	if strings.Contains(h, "credit amount") && strings.Contains(h, "debit amount") {
		if strings.Contains(h, "running balance") {
			return FormatWestpac
		}
		return FormatCommonwealth
	}

	if strings.Contains(h, "amount") && strings.Contains(h, "balance") {
		return FormatANZ
	}

	return FormatCommonwealth
}
