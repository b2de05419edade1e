package drmd

import "bytes"

// blockState tracks which kind of block the parser is currently
// extending, mirroring drmd.c's parse_md_node state variable.
type blockState int

const (
	stateNone blockState = iota
	statePara
	stateBullet
	stateList
	stateTable
	stateQuote
)

// listFrame is one level of the bounded list-nesting stack: the
// container list/bullets node at this indentation, the item currently
// being filled in, the indentation that opened this level, and whether
// the level is a BULLETS or a LIST.
type listFrame struct {
	list   NodeID
	item   NodeID
	indent int
	state  blockState
}

// maxListDepth bounds the list-nesting stack (spec.md §3: "bounded at
// 16"). Exceeding it degrades to ErrOutOfMemory rather than growing
// without limit, the same way drmd.c returns ERROR_OOM when its
// fixed-size stack array is exhausted.
const maxListDepth = 16

// classifyLine determines the block kind and marker-prefix length for
// the line whose first non-whitespace byte is at data[firstchar],
// dispatching on that byte the way drmd.c's parse_md_node does. '#',
// backtick-fence and the container kinds handled inline by parseBlock
// (QUOTE/TABLE continuation) are not reached here; this only covers
// the bullet/list/table/quote/paragraph dispatch table.
func classifyLine(data []byte, firstchar, end int) (state blockState, prefixLength int) {
	c := data[firstchar]
	switch {
	case c == 0xE2:
		// UTF-8 "•" (E2 80 A2) followed by a space opens a bullet.
		if firstchar+3 < end && data[firstchar+1] == 0x80 && data[firstchar+2] == 0xA2 && data[firstchar+3] == ' ' {
			return stateBullet, 4
		}
		return statePara, 0
	case c == '+' || c == '-' || c == '*' || c == 'o':
		if firstchar+1 != end && data[firstchar+1] == ' ' {
			return stateBullet, 1
		}
		return statePara, 0
	case c >= '0' && c <= '9':
		prefixLength = 1
		state = statePara
		for i := firstchar + 1; i != end; i++ {
			ch := data[i]
			if ch >= '0' && ch <= '9' {
				prefixLength++
				continue
			}
			if ch == '.' {
				prefixLength++
				state = stateList
			}
			break
		}
		return state, prefixLength
	case c == '|':
		return stateTable, 0
	case c == '>':
		return stateQuote, 0
	default:
		return statePara, 0
	}
}

// resolveListFrame updates the list-nesting stack for a freshly
// classified BULLET/LIST line at the given indentation, opening,
// reusing or popping frames exactly as drmd.c's parse_md_node does
// (three-way compare of nspaces against the current frame's
// indentation). On return, stack[*si] is the frame the caller should
// append the new LIST_ITEM to.
func resolveListFrame(arena *Arena, parent NodeID, stack *[maxListDepth]listFrame, si *int, newstate blockState, nspaces int) error {
	kind := KindBullets
	if newstate == stateList {
		kind = KindList
	}

	if *si == -1 {
		list, err := arena.Alloc(kind)
		if err != nil {
			return err
		}
		if err := arena.AppendChild(parent, list); err != nil {
			return err
		}
		stack[0] = listFrame{list: list, item: InvalidNode, indent: nspaces, state: newstate}
		*si = 0
		return nil
	}

	top := &stack[*si]
	switch {
	case nspaces > top.indent:
		nsi := *si + 1
		if nsi == maxListDepth {
			return ErrOutOfMemory
		}
		list, err := arena.Alloc(kind)
		if err != nil {
			return err
		}
		if err := arena.AppendChild(stack[*si].item, list); err != nil {
			return err
		}
		stack[nsi] = listFrame{list: list, item: InvalidNode, indent: nspaces, state: newstate}
		*si = nsi
		return nil

	case nspaces == top.indent:
		if top.state != newstate {
			attachTo := parent
			if *si > 0 {
				attachTo = stack[*si-1].item
			}
			list, err := arena.Alloc(kind)
			if err != nil {
				return err
			}
			if err := arena.AppendChild(attachTo, list); err != nil {
				return err
			}
			stack[*si] = listFrame{list: list, item: InvalidNode, indent: nspaces, state: newstate}
		}
		return nil

	default: // nspaces < top.indent: walk back up the stack
		for {
			*si--
			if *si < 0 {
				*si = 0
				list, err := arena.Alloc(kind)
				if err != nil {
					return err
				}
				if err := arena.AppendChild(parent, list); err != nil {
					return err
				}
				stack[0] = listFrame{list: list, item: InvalidNode, indent: nspaces, state: newstate}
				return nil
			}
			indent := stack[*si].indent
			if indent > nspaces {
				continue
			}
			if indent == nspaces {
				break
			}
			// indent < nspaces: no frame matches; start a fresh
			// top-level list, discarding the rest of the stack.
			*si = 0
			list, err := arena.Alloc(kind)
			if err != nil {
				return err
			}
			if err := arena.AppendChild(parent, list); err != nil {
				return err
			}
			stack[0] = listFrame{list: list, item: InvalidNode, indent: nspaces, state: newstate}
			return nil
		}
		top := &stack[*si]
		if top.state != newstate {
			attachTo := parent
			if *si > 0 {
				attachTo = stack[*si-1].item
			}
			list, err := arena.Alloc(kind)
			if err != nil {
				return err
			}
			if err := arena.AppendChild(attachTo, list); err != nil {
				return err
			}
			stack[*si] = listFrame{list: list, item: InvalidNode, indent: nspaces, state: newstate}
		}
		return nil
	}
}

// ParseDocument parses the whole of input into arena, returning the
// root DOC node. It is the Go counterpart of drmd.c's top-level call
// into parse_md_node with the document node as parent.
func ParseDocument(arena *Arena, input []byte) (NodeID, error) {
	root, err := arena.Alloc(KindDoc)
	if err != nil {
		return InvalidNode, err
	}
	if err := parseBlock(arena, input, root); err != nil {
		return InvalidNode, err
	}
	return root, nil
}

// parseBlock is the block-level state machine from spec.md §4.3,
// ported line-for-line from drmd.c's parse_md_node. It never recurses:
// nested lists are tracked with the explicit bounded stack above.
func parseBlock(arena *Arena, data []byte, parent NodeID) error {
	loc := location{cursor: 0, end: len(data)}
	state := stateNone
	var stack [maxListDepth]listFrame
	si := -1
	container := InvalidNode
	normalIndent := -1

	for loc.cursor != loc.end {
		analyzeLine(data, &loc)

		if loc.lineStart+loc.nspaces == loc.lineEnd {
			// Blank line: closes whatever was open.
			state = stateNone
			si = -1
			advanceRow(&loc)
			continue
		}

		if normalIndent < 0 {
			normalIndent = loc.nspaces
		}

		firstchar := loc.lineStart + loc.nspaces
		c := data[firstchar]

		if c == '#' {
			i := firstchar + 1
			level := 1
			for i != loc.end && data[i] == '#' {
				level++
				i++
			}
			h, err := arena.Alloc(KindHeading)
			if err != nil {
				return err
			}
			node := arena.Get(h)
			node.HeadingLevel = level
			node.Header = stripSpace(data[i:loc.lineEnd])
			if err := arena.AppendChild(parent, h); err != nil {
				return err
			}
			advanceRow(&loc)
			state = stateNone
			si = -1
			continue
		}

		if c == '`' && loc.lineEnd-firstchar == 3 && data[firstchar+1] == '`' && data[firstchar+2] == '`' {
			pre, err := arena.Alloc(KindPre)
			if err != nil {
				return err
			}
			if err := arena.AppendChild(parent, pre); err != nil {
				return err
			}
			advanceRow(&loc)
			for loc.cursor != loc.end {
				analyzeLine(data, &loc)
				fc := loc.lineStart + loc.nspaces
				if loc.lineEnd-fc == 3 && fc+2 < loc.end && data[fc] == '`' && data[fc+1] == '`' && data[fc+2] == '`' {
					advanceRow(&loc)
					break
				}
				s, err := arena.AllocString(data[loc.lineStart:loc.lineEnd])
				if err != nil {
					return err
				}
				if err := arena.AppendChild(pre, s); err != nil {
					return err
				}
				advanceRow(&loc)
			}
			state = stateNone
			si = -1
			continue
		}

		newstate, prefixLength := classifyLine(data, firstchar, loc.end)

		switch newstate {
		case stateBullet, stateList:
			if err := resolveListFrame(arena, parent, &stack, &si, newstate, loc.nspaces); err != nil {
				return err
			}
			item, err := arena.Alloc(KindListItem)
			if err != nil {
				return err
			}
			if err := arena.AppendChild(stack[si].list, item); err != nil {
				return err
			}
			stack[si].item = item
			content := stripSpace(data[firstchar+prefixLength : loc.lineEnd])
			s, err := arena.AllocString(content)
			if err != nil {
				return err
			}
			if err := arena.AppendChild(item, s); err != nil {
				return err
			}
			advanceRow(&loc)
			state = newstate
			continue

		case stateTable:
			if state != stateTable {
				t, err := arena.Alloc(KindTable)
				if err != nil {
					return err
				}
				if err := arena.AppendChild(parent, t); err != nil {
					return err
				}
				container = t
			}
			row, err := arena.Alloc(KindTableRow)
			if err != nil {
				return err
			}
			if err := arena.AppendChild(container, row); err != nil {
				return err
			}
			p := firstchar + 1
			for {
				rel := bytes.IndexByte(data[p:loc.lineEnd], '|')
				if rel < 0 {
					cell := stripSpace(data[p:loc.lineEnd])
					s, err := arena.AllocString(cell)
					if err != nil {
						return err
					}
					if err := arena.AppendChild(row, s); err != nil {
						return err
					}
					break
				}
				cell := stripSpace(data[p : p+rel])
				s, err := arena.AllocString(cell)
				if err != nil {
					return err
				}
				if err := arena.AppendChild(row, s); err != nil {
					return err
				}
				p = p + rel + 1
			}
			advanceRow(&loc)
			state = newstate
			si = -1
			continue

		case stateQuote:
			if state != stateQuote {
				q, err := arena.Alloc(KindQuote)
				if err != nil {
					return err
				}
				if err := arena.AppendChild(parent, q); err != nil {
					return err
				}
				container = q
				si = -1
			}
			content := stripSpace(data[loc.lineStart+1 : loc.lineEnd])
			s, err := arena.AllocString(content)
			if err != nil {
				return err
			}
			if err := arena.AppendChild(container, s); err != nil {
				return err
			}
			advanceRow(&loc)
			state = newstate
			continue

		default: // statePara
			if state == stateQuote {
				// A paragraph-looking line while inside a quote
				// extends the quote instead of closing it.
				content := stripSpace(data[firstchar:loc.lineEnd])
				s, err := arena.AllocString(content)
				if err != nil {
					return err
				}
				if err := arena.AppendChild(container, s); err != nil {
					return err
				}
				advanceRow(&loc)
				continue
			}
			if state == statePara || state == stateNone || loc.nspaces == normalIndent || state == stateTable {
				if state != statePara {
					p, err := arena.Alloc(KindPara)
					if err != nil {
						return err
					}
					if err := arena.AppendChild(parent, p); err != nil {
						return err
					}
					container = p
				}
				content := stripSpace(data[firstchar:loc.lineEnd])
				s, err := arena.AllocString(content)
				if err != nil {
					return err
				}
				if err := arena.AppendChild(container, s); err != nil {
					return err
				}
				advanceRow(&loc)
				si = -1
				state = statePara
				continue
			}
			// Otherwise this is a continuation line of the current
			// list item (indentation different from normalIndent,
			// under a BULLET/LIST state).
			content := stripSpace(data[firstchar:loc.lineEnd])
			s, err := arena.AllocString(content)
			if err != nil {
				return err
			}
			if err := arena.AppendChild(stack[si].item, s); err != nil {
				return err
			}
			advanceRow(&loc)
			continue
		}
	}
	return nil
}
