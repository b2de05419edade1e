package drmd

import "testing"

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		name           string
		line           string
		wantState      blockState
		wantPrefixLen  int
	}{
		{"dash bullet with space", "- item", stateBullet, 1},
		{"dash without following space is a paragraph", "-item", statePara, 0},
		{"asterisk bullet", "* item", stateBullet, 1},
		{"plus bullet", "+ item", stateBullet, 1},
		{"letter o bullet", "o item", stateBullet, 1},
		{"digit dot starts a list", "12. item", stateList, 3},
		{"digit without dot is a paragraph", "12 item", statePara, 2},
		{"lone digit at end of buffer is a paragraph", "7", statePara, 1},
		{"pipe starts a table", "|a|b", stateTable, 0},
		{"angle starts a quote", "> quoted", stateQuote, 0},
		{"ordinary text is a paragraph", "hello", statePara, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := []byte(tt.line)
			state, prefixLen := classifyLine(data, 0, len(data))
			if state != tt.wantState {
				t.Errorf("classifyLine(%q) state = %v, want %v", tt.line, state, tt.wantState)
			}
			if prefixLen != tt.wantPrefixLen {
				t.Errorf("classifyLine(%q) prefixLength = %d, want %d", tt.line, prefixLen, tt.wantPrefixLen)
			}
		})
	}
}

func TestToHTMLBlankLineClosesParagraph(t *testing.T) {
	got, err := ToHTML([]byte("para one\n\npara two\n"))
	if err != nil {
		t.Fatalf("ToHTML returned error: %v", err)
	}
	want := "<p>para one<p>para two"
	if string(got) != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestToHTMLThreeColumnTable(t *testing.T) {
	got, err := ToHTML([]byte("|a|b|c\n"))
	if err != nil {
		t.Fatalf("ToHTML returned error: %v", err)
	}
	want := "<table>\n<thead>\n<tr>\n<th>a<th>b<th>c\n<tbody>\n</table>\n"
	if string(got) != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestToHTMLDeeplyNestedListHitsRenderRecursionLimit(t *testing.T) {
	// Each nesting level costs 2 tree levels (BULLETS, then LIST_ITEM),
	// so 12 levels of nesting (well under the 16-deep list-stack bound)
	// already produces a tree deeper than maxRenderDepth.
	const levels = 12
	var in string
	for i := 0; i < levels; i++ {
		for j := 0; j < i; j++ {
			in += "  "
		}
		in += "- x\n"
	}
	_, err := ToHTML([]byte(in))
	if err == nil {
		t.Fatalf("expected an error for a tree deeper than %d, got nil", maxRenderDepth)
	}
}
