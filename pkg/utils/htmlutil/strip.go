// ABOUTME: HTML stripping built on the x/net/html tokenizer
// ABOUTME: Used to turn provider HTML bodies into plain text news content

package htmlutil

import (
	"html"
	"strings"

	xhtml "golang.org/x/net/html"
)

// StripHTML removes tags and decodes entities from an HTML fragment,
// returning whitespace-normalized plain text. Script and style content
// is dropped entirely.
func StripHTML(fragment string) string {
	if fragment == "" {
		return ""
	}

	tokenizer := xhtml.NewTokenizer(strings.NewReader(fragment))

	var sb strings.Builder
	skipDepth := 0

	for {
		tt := tokenizer.Next()
		switch tt {
		case xhtml.ErrorToken:
			return normalizeWhitespace(sb.String())
		case xhtml.StartTagToken:
			name, _ := tokenizer.TagName()
			if isSkipped(string(name)) {
				skipDepth++
			}
		case xhtml.EndTagToken:
			name, _ := tokenizer.TagName()
			if isSkipped(string(name)) && skipDepth > 0 {
				skipDepth--
			}
		case xhtml.TextToken:
			if skipDepth == 0 {
				sb.WriteString(html.UnescapeString(string(tokenizer.Text())))
				sb.WriteByte(' ')
			}
		}
	}
}

func isSkipped(tag string) bool {
	return tag == "script" || tag == "style"
}

// normalizeWhitespace collapses all runs of whitespace into single spaces
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
