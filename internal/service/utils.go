package service

import "strings"

// sanitizeUTF8 drops invalid UTF-8 sequences and surrounding blanks so that
// aggregator text never trips PostgreSQL encoding checks.
func sanitizeUTF8(s string) string {
	return strings.TrimSpace(strings.ToValidUTF8(s, ""))
}
