package drmd

// PreBlocks parses input and returns the raw, pre-escape text of each
// fenced code block (Kind == KindPre), in document order, with one '\n'
// between lines and none after the last (render, by contrast, writes a
// '\n' after every line of a PRE node, the last one included).
//
// This exists for the CLI's optional syntax-highlighting extension
// (SPEC_FULL.md §4.6): chroma's lexers need the fenced block's actual
// source, not the HTML ToHTML already produced for it, since ToHTML's
// output has run every line through escapeInto and a lexer fed "&gt;"
// instead of ">" mis-tokenizes. The core renderer never calls this.
func PreBlocks(input []byte) ([][]byte, error) {
	arena := NewArena()
	root, err := ParseDocument(arena, input)
	if err != nil {
		return nil, err
	}
	var blocks [][]byte
	collectPreBlocks(arena, root, &blocks)
	return blocks, nil
}

func collectPreBlocks(arena *Arena, id NodeID, blocks *[][]byte) {
	n := arena.Get(id)
	if n.Kind == KindPre {
		var buf []byte
		for i, c := range n.Children {
			if i > 0 {
				buf = append(buf, '\n')
			}
			buf = append(buf, arena.Get(c).Header...)
		}
		*blocks = append(*blocks, buf)
		return
	}
	for _, c := range n.Children {
		collectPreBlocks(arena, c, blocks)
	}
}
