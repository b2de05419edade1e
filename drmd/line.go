package drmd

import (
	"encoding/binary"
	"math/bits"
)

// location tracks the parser's position in the input buffer, playing
// the role of drmd.c's ParseLocation: cursor is the start of the line
// currently being examined, end is the buffer length, and
// lineStart/lineEnd/nspaces are filled in by analyzeLine.
type location struct {
	cursor    int
	end       int
	lineStart int
	lineEnd   int
	nspaces   int
}

// countLeadingWhitespace returns the number of bytes in data[start:end]
// that are ' ', '\t' or '\r' before the first byte that is none of
// those (spec.md §4.1: "\t counts as one space unit; \r counts as
// leading whitespace"). It scans 8 bytes at a time via SWAR and only
// drops to a byte loop for the tail once a clean word can't be found.
func countLeadingWhitespace(data []byte, start, end int) int {
	i := start
	for i+8 <= end {
		word := binary.LittleEndian.Uint64(data[i:])
		nonWS := invertLaneMask(swarWhitespaceMask(word))
		if nonWS != 0 {
			return i + bits.TrailingZeros64(nonWS)/8 - start
		}
		i += 8
	}
	for i < end {
		switch data[i] {
		case ' ', '\t', '\r':
			i++
		default:
			return i - start
		}
	}
	return i - start
}

// findLineEnd returns the index of the first '\n' or NUL byte in
// data[start:end], or end if there is none.
func findLineEnd(data []byte, start, end int) int {
	i := start
	for i+8 <= end {
		word := binary.LittleEndian.Uint64(data[i:])
		mask := swarLineEndMask(word)
		if mask != 0 {
			return i + bits.TrailingZeros64(mask)/8
		}
		i += 8
	}
	for i < end {
		if data[i] == '\n' || data[i] == 0 {
			return i
		}
		i++
	}
	return end
}

// analyzeLine fills in loc.lineStart/lineEnd/nspaces for the line
// beginning at loc.cursor. It is idempotent: calling it twice without
// an intervening advanceRow recomputes the same values.
func analyzeLine(data []byte, loc *location) {
	loc.lineStart = loc.cursor
	loc.nspaces = countLeadingWhitespace(data, loc.cursor, loc.end)
	loc.lineEnd = findLineEnd(data, loc.cursor+loc.nspaces, loc.end)
}

// advanceRow moves the cursor past the line's terminator, unless the
// line ran all the way to the end of the buffer (no trailing newline).
func advanceRow(loc *location) {
	if loc.lineEnd == loc.end {
		loc.cursor = loc.lineEnd
		return
	}
	loc.cursor = loc.lineEnd + 1
}
