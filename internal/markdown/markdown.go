// Package markdown renders article descriptions to safe HTML and
// derives plain-text excerpts for preview cards.
package markdown

import (
	stdhtml "html"
	"html/template"
	"io"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	md "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

type Options struct {
	// RootURL lets absolute links back to this site collapse to
	// relative paths so navigation stays in-app.
	RootURL string
}

const lastGoodBreakRatio = 0.8

var (
	fencedCodePattern = regexp.MustCompile("(?s)```.*?```")
	imagePattern      = regexp.MustCompile(`!\[.*?\]\(.*?\)`)
	linkPattern       = regexp.MustCompile(`\[(.*?)\]\(.*?\)`)
	emphasisPattern   = regexp.MustCompile(`(\*{1,3}|_{1,2}|~~)(.*?)(\*{1,3}|_{1,2}|~~)`)
	headingPattern    = regexp.MustCompile(`(?m)^#{1,6}\s+(.*?)$`)
	inlineCodePattern = regexp.MustCompile("`(.*?)`")
	blockquotePattern = regexp.MustCompile(`(?m)^\s*>\s*(.*?)$`)
	listMarkerPattern = regexp.MustCompile(`(?m)^\s*(\d+\.|[-*+])\s+`)
	htmlTagPattern    = regexp.MustCompile(`<[^>]*>`)
)

// ToHTML renders a markdown article body. Raw HTML in the source is
// skipped, fenced code blocks are highlighted, and every link opens in
// a new tab unless it points back at this site.
func ToHTML(input string, opts Options) template.HTML {
	if strings.TrimSpace(input) == "" {
		return template.HTML("")
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(input))
	normalizeLinks(doc, opts)

	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags:          mdhtml.CommonFlags | mdhtml.SkipHTML,
		RenderNodeHook: renderNodeHook,
	})

	return template.HTML(md.Render(doc, renderer))
}

// Excerpt reduces a markdown body to plain text and truncates it to
// maxChars, breaking on a word boundary where one is close enough.
func Excerpt(input string, maxChars int) string {
	if maxChars < 1 {
		return ""
	}

	clean := toPlainText(input)
	if clean == "" {
		return ""
	}

	if utf8.RuneCountInString(clean) <= maxChars {
		return clean
	}

	return truncateRunes(clean, maxChars)
}

func toPlainText(markdown string) string {
	text := markdown
	text = fencedCodePattern.ReplaceAllString(text, " ")
	text = imagePattern.ReplaceAllString(text, " ")
	text = linkPattern.ReplaceAllString(text, "$1")
	text = headingPattern.ReplaceAllString(text, "\n$1\n")
	text = emphasisPattern.ReplaceAllString(text, "$2")
	text = inlineCodePattern.ReplaceAllString(text, "$1")
	text = blockquotePattern.ReplaceAllString(text, "$1")
	text = listMarkerPattern.ReplaceAllString(text, "")
	text = htmlTagPattern.ReplaceAllString(text, "")

	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	return strings.Join(strings.Fields(text), " ")
}

func truncateRunes(text string, maxChars int) string {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}

	truncateAt := maxChars
	minBreak := int(float64(maxChars) * lastGoodBreakRatio)
	for idx := maxChars - 1; idx >= minBreak; idx-- {
		if unicode.IsSpace(runes[idx]) {
			truncateAt = idx
			break
		}
	}

	truncated := strings.TrimSpace(string(runes[:truncateAt]))
	if truncated == "" {
		truncated = strings.TrimSpace(string(runes[:maxChars]))
	}

	return truncated + "..."
}

func normalizeLinks(doc ast.Node, opts Options) {
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}

		link, ok := node.(*ast.Link)
		if !ok {
			return ast.GoToNext
		}

		normalizedHref, isCurrentWebsite := normalizeCurrentWebsiteLink(string(link.Destination), opts.RootURL)
		link.Destination = []byte(normalizedHref)
		link.AdditionalAttributes = applyLinkAttributes(link.AdditionalAttributes, isCurrentWebsite)

		return ast.GoToNext
	})
}

func renderNodeHook(writer io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
	if !entering {
		return ast.GoToNext, false
	}

	block, ok := node.(*ast.CodeBlock)
	if !ok {
		return ast.GoToNext, false
	}

	renderCodeBlock(writer, block)
	return ast.SkipChildren, true
}

func renderCodeBlock(writer io.Writer, block *ast.CodeBlock) {
	code := string(block.Literal)
	lexer := pickLexer(codeLanguage(block.Info), code)
	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		renderPlainCodeBlock(writer, code)
		return
	}

	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.Format(writer, styles.Fallback, iterator); err != nil {
		renderPlainCodeBlock(writer, code)
	}
}

func renderPlainCodeBlock(writer io.Writer, code string) {
	_, _ = io.WriteString(writer, `<pre class="chroma"><code>`)
	_, _ = io.WriteString(writer, stdhtml.EscapeString(code))
	_, _ = io.WriteString(writer, `</code></pre>`)
}

func pickLexer(language string, code string) chroma.Lexer {
	if language != "" {
		if lexer := lexers.Get(language); lexer != nil {
			return lexer
		}
	}

	if lexer := lexers.Analyse(code); lexer != nil {
		return lexer
	}

	return lexers.Fallback
}

func codeLanguage(info []byte) string {
	fields := strings.Fields(strings.TrimSpace(string(info)))
	if len(fields) == 0 {
		return ""
	}

	return strings.ToLower(fields[0])
}

func normalizeCurrentWebsiteLink(href string, rootURL string) (string, bool) {
	if rootURL == "" || !strings.HasPrefix(href, rootURL) {
		return href, false
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return href, true
	}

	normalized := parsed.Path
	if normalized == "" {
		normalized = "/"
	}
	if parsed.RawQuery != "" {
		normalized += "?" + parsed.RawQuery
	}
	if parsed.Fragment != "" {
		normalized += "#" + parsed.Fragment
	}

	return normalized, true
}

func applyLinkAttributes(existing []string, isCurrentWebsite bool) []string {
	attrs := make([]string, 0, len(existing)+2)
	for _, attr := range existing {
		normalized := strings.ToLower(strings.TrimSpace(attr))
		if strings.HasPrefix(normalized, "target=") || strings.HasPrefix(normalized, "rel=") {
			continue
		}
		attrs = append(attrs, attr)
	}

	if isCurrentWebsite {
		return attrs
	}

	attrs = append(attrs, `target="_blank"`, `rel="noopener noreferrer"`)
	return attrs
}
