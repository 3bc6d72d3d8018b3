package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseLookback parses a trailing-duration specifier into a number of months.
// Accepted forms: "6", "6M", "6m", "6 months", "1 month".
func ParseLookback(s string) (int, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, suffix := range []string{"months", "month", "m"} {
		if strings.HasSuffix(v, suffix) {
			v = strings.TrimSpace(strings.TrimSuffix(v, suffix))
			break
		}
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: lookback %q is not a positive number of months", ErrMalformedInput, s)
	}
	return n, nil
}
