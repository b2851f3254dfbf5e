package conv

import (
	"strings"

	"github.com/gomarkdown/markdown/html"
	"github.com/inbucket/html2text"
)

// MarkdownToText renders markdown as readable plain text for channels that
// cannot display markup.
func MarkdownToText(md []byte) (string, error) {
	text, err := html2text.FromString(string(renderHTML(md, html.CommonFlags)), html2text.Options{
		OmitLinks:    true,
		PrettyTables: true,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
