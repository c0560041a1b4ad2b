package graph

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// blockTags are elements whose end marks a line boundary in the extracted
// text.
var blockTags = map[string]struct{}{
	"p": {}, "div": {}, "li": {}, "tr": {}, "table": {},
	"ul": {}, "ol": {}, "blockquote": {},
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
}

var newlineRuns = regexp.MustCompile(`\n{3,}`)

// htmlToText reduces an HTML body to plain text: tags are dropped, <br> and
// block boundaries become newlines, entities are decoded, and script and
// style content is discarded.
func htmlToText(source string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(source))

	var b strings.Builder
	var skip string

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return tidyText(b.String())
		case html.TextToken:
			if skip == "" {
				b.Write(tokenizer.Text())
			}
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)
			switch {
			case tag == "script" || tag == "style":
				skip = tag
			case tag == "br":
				b.WriteByte('\n')
			}
		case html.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			if string(name) == "br" {
				b.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)
			if tag == skip {
				skip = ""
				continue
			}
			if _, ok := blockTags[tag]; ok {
				b.WriteByte('\n')
			}
		}
	}
}

// tidyText collapses runs of blank lines, turns non-breaking spaces into
// regular ones, and trims the edges.
func tidyText(text string) string {
	text = strings.ReplaceAll(text, " ", " ")
	text = newlineRuns.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}
