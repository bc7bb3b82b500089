package markdown

import (
	"bytes"
	"html/template"
	"strings"
	"sync"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
)

const (
	chromaLightStyle = "github"
	chromaDarkStyle  = "monokai"
)

var (
	chromaCSSOnce sync.Once
	chromaCSS     template.CSS
)

// ChromaCSS returns the stylesheet for highlighted code blocks, one
// rule set per site theme, built once per process.
func ChromaCSS() template.CSS {
	chromaCSSOnce.Do(func() {
		chromaCSS = template.CSS(buildChromaCSS())
	})

	return chromaCSS
}

func buildChromaCSS() string {
	var out strings.Builder
	out.WriteString(scopeChromaCSS(buildSingleStyleCSS(chromaDarkStyle), `body[data-theme=dark]`))
	out.WriteString(scopeChromaCSS(buildSingleStyleCSS(chromaLightStyle), `body[data-theme=light]`))
	return out.String()
}

func buildSingleStyleCSS(styleName string) string {
	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}

	formatter := chromahtml.New(chromahtml.WithClasses(true))
	var buffer bytes.Buffer
	if err := formatter.WriteCSS(&buffer, style); err != nil {
		return ""
	}

	return buffer.String()
}

// scopeChromaCSS nests every rule under the theme selector. WriteCSS
// emits one class rule per line, the selector starting at the first
// dot.
func scopeChromaCSS(css string, scope string) string {
	var out strings.Builder
	for _, line := range strings.Split(css, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		if dot := strings.Index(line, "."); dot >= 0 {
			out.WriteString(line[:dot])
			out.WriteString(scope)
			out.WriteString(" ")
			out.WriteString(line[dot:])
		} else {
			out.WriteString(line)
		}
		out.WriteString("\n")
	}
	return out.String()
}
