package summarizer

import (
	"strings"

	"golang.org/x/net/html"
)

// StripMarkup removes HTML/XML-like tags from s and keeps only the text
// between them. Comments and doctypes are dropped. Character references are
// decoded the way the tokenizer does it, and CR or CRLF line endings
// become LF whether or not s contains markup.
func StripMarkup(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var sb strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a tokenizer error; either way the input is consumed.
			return sb.String()
		case html.TextToken:
			sb.Write(z.Text())
		}
	}
}
