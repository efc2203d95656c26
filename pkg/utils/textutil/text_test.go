package textutil

import (
	"strings"
	"testing"
)

func TestCleanText_StripsHTML(t *testing.T) {
	got := CleanText("<p>比特币<b>上涨</b></p>")

	if strings.Contains(got, "<") {
		t.Errorf("CleanText left tags behind: %q", got)
	}
	if !strings.Contains(got, "比特币") || !strings.Contains(got, "上涨") {
		t.Errorf("CleanText dropped text content: %q", got)
	}
}

func TestCleanText_Empty(t *testing.T) {
	if got := CleanText(""); got != "" {
		t.Errorf("CleanText(\"\") = %q", got)
	}
}

func TestExtractTitle_FirstChineseSentence(t *testing.T) {
	got := ExtractTitle("比特币突破新高。更多细节如下,包括机构资金流入情况。", 60)

	if got != "比特币突破新高。" {
		t.Errorf("ExtractTitle = %q", got)
	}
}

func TestExtractTitle_TruncatesLongText(t *testing.T) {
	got := ExtractTitle(strings.Repeat("链", 100), 60)

	if !strings.HasSuffix(got, "...") {
		t.Errorf("long title should be ellipsized: %q", got)
	}
	if runes := len([]rune(got)); runes > 60 {
		t.Errorf("title is %d runes, want <= 60", runes)
	}
}

func TestExtractTitle_ShortTextKeptWhole(t *testing.T) {
	got := ExtractTitle("简短的快讯内容", 60)

	if got != "简短的快讯内容" {
		t.Errorf("ExtractTitle = %q", got)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"市场动态", "市场动态"},
		{"七万美元之后: 牛市/下半场?", "七万美元之后_牛市下半场"},
		{"hello world", "hello_world"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeFilename_CapsAt50Runes(t *testing.T) {
	got := SanitizeFilename(strings.Repeat("长", 80))

	if runes := len([]rune(got)); runes != 50 {
		t.Errorf("sanitized length = %d runes, want 50", runes)
	}
}

func TestStripMarkdown(t *testing.T) {
	md := "## 📊 市场动态\n\n- **比特币**价格*上涨*。\n\n> 引用一句话\n\n[详情](https://example.com)见链接。\n\n---\n\n`code`"

	got := StripMarkdown(md)

	for _, forbidden := range []string{"##", "**", "](", "> ", "---", "`", "📊"} {
		if strings.Contains(got, forbidden) {
			t.Errorf("StripMarkdown left %q in %q", forbidden, got)
		}
	}
	for _, want := range []string{"市场动态", "比特币", "上涨", "引用一句话", "详情", "code"} {
		if !strings.Contains(got, want) {
			t.Errorf("StripMarkdown dropped %q from %q", want, got)
		}
	}
}

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"bare array", `[{"a":1}]`, `[{"a":1}]`},
		{"json fence", "```json\n[1,2]\n```", "[1,2]"},
		{"plain fence", "```\n[1]\n```", "[1]"},
		{"surrounding prose", "结果如下: [1,2,3] 希望有帮助", "[1,2,3]"},
		{"no array", "抱歉，无法生成", ""},
	}
	for _, tt := range tests {
		if got := ExtractJSONArray(tt.in); got != tt.want {
			t.Errorf("%s: ExtractJSONArray = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestExtractJSONObject(t *testing.T) {
	got := ExtractJSONObject("前置文字 {\"title\": \"标题\"} 后置文字")

	if got != `{"title": "标题"}` {
		t.Errorf("ExtractJSONObject = %q", got)
	}
	if ExtractJSONObject("没有对象") != "" {
		t.Error("missing object should return empty string")
	}
}
