package htmlutil

import "testing"

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"plain text", "hello world", "hello world"},
		{"simple tags", "<p>比特币<b>上涨</b>了</p>", "比特币 上涨 了"},
		{"entities", "A &amp; B &lt;tag&gt;", "A & B <tag>"},
		{"script dropped", "<p>kept</p><script>var x = 1;</script>", "kept"},
		{"style dropped", "<style>.a{color:red}</style>visible", "visible"},
		{"whitespace collapsed", "  a \n\n  b\t c  ", "a b c"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		if got := StripHTML(tt.in); got != tt.want {
			t.Errorf("%s: StripHTML(%q) = %q, want %q", tt.name, tt.in, got, tt.want)
		}
	}
}
