// Package stacktrace shortens debug.Stack output for panic logs.
package stacktrace

import "strings"

// InternalPaths returns the "internal/<pkg>/<file>.go:<line>" locations of a
// debug.Stack dump, innermost frame first. Frames outside the module's
// internal tree are dropped.
func InternalPaths(stack []byte) []string {
	var paths []string
	for line := range strings.Lines(string(stack)) {
		loc, _, _ := strings.Cut(strings.TrimSpace(line), " ")
		_, rel, found := strings.Cut(loc, "/internal/")
		if !found || !strings.Contains(rel, ".go:") {
			continue
		}
		paths = append(paths, "internal/"+rel)
	}
	return paths
}
