package dbexec

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var limitRe = regexp.MustCompile(`(?i)\blimit\s+(\d+)`)

// EnforceLimit guarantees every outgoing statement carries a row cap: a
// missing LIMIT is injected, and any LIMIT above max is rewritten down to max.
func EnforceLimit(query string, max int) string {
	trimmed := strings.TrimRight(strings.TrimSpace(query), ";")

	if !limitRe.MatchString(trimmed) {
		return fmt.Sprintf("%s LIMIT %d", trimmed, max)
	}

	return limitRe.ReplaceAllStringFunc(trimmed, func(match string) string {
		sub := limitRe.FindStringSubmatch(match)
		n, err := strconv.Atoi(sub[1])
		if err != nil || n > max {
			return fmt.Sprintf("LIMIT %d", max)
		}
		return match
	})
}
