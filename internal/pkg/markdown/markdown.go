// Package markdown renders the markdown fields of portfolio records
// (project descriptions, the profile summary) to HTML.
package markdown

import (
	"bytes"
	"html/template"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

// Raw HTML in the source is dropped by goldmark's default renderer, so the
// output is safe to embed as template.HTML.
var engine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Typographer,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
		htmlrenderer.WithXHTML(),
	),
)

var (
	imageTagRegex  = regexp.MustCompile(`(?i)<img\s`)
	linkOpenRegex  = regexp.MustCompile(`(?i)<a href="(https?://[^"]*)"`)
	leadingPRegex  = regexp.MustCompile(`(?s)^<p>(.*)</p>\n?$`)
	multiBlockHint = regexp.MustCompile(`(?i)<(p|ul|ol|h[1-6]|pre|blockquote|table)[\s>]`)
)

// Render converts text to HTML. Empty input yields "".
func Render(text string) template.HTML {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	var out bytes.Buffer
	if err := engine.Convert([]byte(text), &out); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(rewrite(out.String()))
}

// RenderInline renders text and strips the wrapping paragraph when the
// result is a single paragraph, for use inside headings and list items.
func RenderInline(text string) template.HTML {
	html := string(Render(text))
	if m := leadingPRegex.FindStringSubmatch(html); m != nil && !multiBlockHint.MatchString(m[1]) {
		return template.HTML(m[1])
	}
	return template.HTML(html)
}

// Excerpt returns the first max runes of the plain text of the markdown,
// with an ellipsis when truncated.
func Excerpt(text string, max int) string {
	plain := stripTags.ReplaceAllString(string(Render(text)), " ")
	plain = strings.Join(strings.Fields(unescape.Replace(plain)), " ")
	runes := []rune(plain)
	if max <= 0 || len(runes) <= max {
		return plain
	}
	return strings.TrimSpace(string(runes[:max])) + "…"
}

var (
	stripTags = regexp.MustCompile(`<[^>]*>`)
	unescape  = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&#39;", "'")
)

func rewrite(html string) string {
	html = imageTagRegex.ReplaceAllString(html, `<img loading="lazy" `)
	html = linkOpenRegex.ReplaceAllString(html, `<a href="$1" target="_blank" rel="noopener noreferrer"`)
	return html
}
