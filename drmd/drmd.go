// Package drmd converts a small dialect of Markdown to HTML. It is a
// pure function from bytes to bytes: single-threaded, synchronous, and
// free of shared state (spec.md §5). Everything it allocates lives in
// an Arena that is released as a unit once ToHTML returns, success or
// failure.
package drmd

import "strings"

// bytesPerNodeEstimate is the output-buffer capacity ToHTML
// pre-reserves per arena node, per spec.md §4.4's "roughly 120 bytes
// per node" capacity note — avoids most of the strings.Builder's
// incremental regrowth for ordinary documents.
const bytesPerNodeEstimate = 120

// ToHTML parses input as drmd and renders it to HTML. It returns
// ErrOutOfMemory if the node arena's node budget is used up or lists
// nest deeper than the list-nesting stack allows, or ErrRecursionExceeded if the parsed tree is nested deeper
// than the render pass's bounded recursion allows. These are the only
// two errors it ever returns (spec.md §7).
func ToHTML(input []byte) ([]byte, error) {
	arena := NewArena()
	root, err := ParseDocument(arena, input)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.Grow(arena.Len() * bytesPerNodeEstimate)

	r := renderer{arena: arena, sb: &sb}
	if err := r.render(root, 0); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}
