package app

import "strings"

// Query builders emit multi-line SQL; span attributes want one readable line.
const maxTracedQueryLen = 512

// formatDBQueryForTrace collapses whitespace runs and caps the length of the
// statement recorded on a DB span.
func formatDBQueryForTrace(query string) string {
	compact := strings.Join(strings.Fields(query), " ")
	if len(compact) > maxTracedQueryLen {
		return compact[:maxTracedQueryLen] + "..."
	}
	return compact
}
