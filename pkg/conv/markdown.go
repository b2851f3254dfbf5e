// Package conv renders assistant markdown for the different shells.
package conv

import (
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

var (
	extensions     = parser.CommonExtensions | parser.NoEmptyLineBeforeBlock
	telegramPolicy = bluemonday.NewPolicy()
)

func init() {
	// Allowed tags https://core.telegram.org/bots/api#html-style
	telegramPolicy.AllowElements("b", "strong", "i", "em", "u", "ins", "s", "strike", "del", "code", "pre", "blockquote")
	telegramPolicy.AllowAttrs("href").OnElements("a")
	telegramPolicy.AllowAttrs("class").OnElements("code")
}

// renderHTML uses a fresh parser per call; gomarkdown parsers are single use.
func renderHTML(md []byte, flags html.Flags) []byte {
	p := parser.NewWithExtensions(extensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: flags})
	return markdown.Render(p.Parse(md), renderer)
}

// MarkdownToTelegramHTML keeps only the tags Telegram's HTML parse mode accepts.
func MarkdownToTelegramHTML(md []byte) string {
	unsafeHTML := renderHTML(md, html.CommonFlags|html.HrefTargetBlank)
	return string(telegramPolicy.SanitizeBytes(unsafeHTML))
}
