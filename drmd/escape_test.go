package drmd

import (
	"strings"
	"testing"
)

func TestEscapeIntoRules(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text is untouched", "hello world", "hello world"},
		{"bracket is preserved", "[link]", "[link]"},
		{"angle gt is escaped", "a > b", "a &gt; b"},
		{"single dash is literal", "a-b", "a-b"},
		{"double dash becomes ndash", "a--b", "a&ndash;b"},
		{"triple dash becomes mdash", "a---b", "a&mdash;b"},
		{"quadruple dash is mdash plus literal dash", "a----b", "a&mdash;-b"},
		{"amp passthrough for lt entity", "a&lt;b", "a&lt;b"},
		{"amp passthrough for gt entity", "a&gt;b", "a&gt;b"},
		{"bare amp becomes amp entity", "a&b", "a&amp;b"},
		{"code tag whitelisted", "<code>x</code>", "<code>x</code>"},
		{"hr tag whitelisted", "<hr>", "<hr>"},
		{"tt tag whitelisted", "<tt>x</tt>", "<tt>x</tt>"},
		{"br tag whitelisted", "a<br>b", "a<br>b"},
		{"short bold tag whitelisted", "<b>x</b>", "<b>x</b>"},
		{"short italic tag whitelisted", "<i>x</i>", "<i>x</i>"},
		{"unknown tag is escaped", "<script>", "&lt;script&gt;"},
		{"cr becomes space", "a\rb", "a b"},
		{"ff becomes space", "a\fb", "a b"},
		{"tab is preserved", "a\tb", "a\tb"},
		{"nul byte is dropped", "a\x00b", "ab"},
		{"bell byte is dropped", "a\x07b", "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sb strings.Builder
			escapeInto(&sb, []byte(tt.in))
			if got := sb.String(); got != tt.want {
				t.Errorf("escapeInto(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestEscapeScalarMatchesFastPath checks the property spec.md §4.5
// requires: the SWAR fast path and the pure-scalar path must agree on
// every input, including ones long enough to exercise the 8-byte word
// scan and ones that mix clean runs with special bytes at several
// different offsets mod 8.
func TestEscapeScalarMatchesFastPath(t *testing.T) {
	samples := []string{
		"",
		"short",
		"exactly8a",
		"this is a much longer run of plain ascii text with no specials in it at all",
		"pad-----ding across a word boundary with dashes--and--more--dashes",
		"mix [brackets] and <tags> and & amp; and > gt and \r\f control \x01\x02 bytes",
		"012345670123456701234567<b>x</b>012345670<code>y</code>01234567",
	}
	for _, s := range samples {
		t.Run(s, func(t *testing.T) {
			var fast strings.Builder
			escapeInto(&fast, []byte(s))

			var slow strings.Builder
			escapeScalar(&slow, []byte(s))

			if fast.String() != slow.String() {
				t.Errorf("fast path %q != scalar path %q for input %q", fast.String(), slow.String(), s)
			}
		})
	}
}
