package service

import "strings"

// sanitizeText drops invalid UTF-8 and NUL bytes, neither of which Postgres
// accepts in a text column.
func sanitizeText(s string) string {
	s = strings.ToValidUTF8(s, "")
	return strings.ReplaceAll(s, "\x00", "")
}
