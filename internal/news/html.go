package news

import "github.com/jaytaylor/html2text"

// htmlToText isolates the html2text dependency behind a narrow seam so the
// rest of the package (and its tests) don't need the real HTML parser.
func htmlToText(s string) (string, error) {
	return html2text.FromString(s, html2text.Options{PrettyTables: false})
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
