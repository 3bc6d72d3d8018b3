package collector

import "strings"

// NormalizeTicker converts free-text user input to the canonical ticker form:
// trimmed, lower case, with inner whitespace runs replaced by a single dot.
// " Orlen " becomes "orlen" and "AAPL US" becomes "aapl.us".
func NormalizeTicker(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), ".")
}

// SplitTicker separates a multi-word ticker from the controls that follow it.
// The controls start at the first field after the ticker that begins with a
// digit or a sign, so ["AAPL", "US", "6", "months"] splits into "AAPL US"
// and ["6", "months"].
func SplitTicker(fields []string) (string, []string) {
	split := len(fields)
	for i := 1; i < len(fields); i++ {
		if c := fields[i][0]; (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.' {
			split = i
			break
		}
	}
	return strings.Join(fields[:split], " "), fields[split:]
}
