package drmd

// stripSpace trims leading and trailing bytes from the set
// {' ', '\t', '\r', '\n', '\f', '\v'}, matching drmd.c's stripped_view
// helper. The returned slice aliases b; nothing is copied.
func stripSpace(b []byte) []byte {
	start := 0
	for start < len(b) && isStripSpace(b[start]) {
		start++
	}
	end := len(b)
	for end > start && isStripSpace(b[end-1]) {
		end--
	}
	return b[start:end]
}

func isStripSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', '\v':
		return true
	}
	return false
}
