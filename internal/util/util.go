// Package util holds small string helpers for text command arguments.
package util

import "strings"

// TrimQuotes removes one pair of matching surrounding quotes, single or
// double. Unbalanced quotes are kept.
func TrimQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// CleanArgs trims whitespace and surrounding quotes from each argument in
// place and returns args. Scripting hosts often quote every argument.
func CleanArgs(args []string) []string {
	for i, a := range args {
		args[i] = TrimQuotes(strings.TrimSpace(a))
	}
	return args
}
