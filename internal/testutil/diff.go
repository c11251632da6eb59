package testutil

import (
	"strings"

	"github.com/google/go-cmp/cmp"
)

// Diff returns a readable comparison of expected and actual output, or ""
// when they are equal. S-expressions are compared one node per line.
func Diff(expected, actual string) string {
	if expected == actual {
		return ""
	}
	return "(-expected +actual):\n" + cmp.Diff(nodeLines(expected), nodeLines(actual))
}

// nodeLines splits a tree in front of every nested node.
func nodeLines(s string) []string {
	return strings.Split(strings.ReplaceAll(s, " (", "\n("), "\n")
}
