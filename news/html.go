package news

import (
	"strings"

	"golang.org/x/net/html"
)

// stripHTML drops all markup from s, decoding entities, and returns the text
// together with the src of the first <img> tag.
func stripHTML(s string) (text string, imageURL string) {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s), ""
	}

	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	skip := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a truncated fragment, either way we are done
			return strings.TrimSpace(b.String()), imageURL
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			switch string(name) {
			case "script", "style":
				skip++
			case "img":
				if imageURL == "" && hasAttr {
					imageURL = imgSrc(z)
				}
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if (string(name) == "script" || string(name) == "style") && skip > 0 {
				skip--
			}
		}
	}
}

func imgSrc(z *html.Tokenizer) string {
	for {
		key, val, more := z.TagAttr()
		if string(key) == "src" {
			return string(val)
		}
		if !more {
			return ""
		}
	}
}
