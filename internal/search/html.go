package search

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const snippetMaxLen = 200

// SnippetText flattens a search-result snippet to plain text and truncates it
// to a prompt-friendly length. Snippets occasionally carry HTML fragments.
func SnippetText(fragment string) string {
	text := fragment
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err == nil {
		doc.Find("script,style,nav,footer,iframe").Remove()
		text = doc.Text()
	}

	text = strings.Join(strings.Fields(text), " ")

	runes := []rune(text)
	if len(runes) > snippetMaxLen {
		return string(runes[:snippetMaxLen]) + "..."
	}
	return text
}
