// Package markdown renders CommonMark source to HTML.
package markdown

import (
	"bytes"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting"
	"github.com/yuin/goldmark/renderer/html"
)

// Options tune the renderer. The zero value renders plain CommonMark.
type Options struct {
	// ChromaTheme enables syntax highlighting of fenced code blocks with
	// inline styles when non-empty.
	ChromaTheme       string
	ChromaLineNumbers bool
}

// Renderer converts markdown to HTML. Raw HTML in the source is passed
// through unchanged.
type Renderer struct {
	md goldmark.Markdown
}

// New returns a new Renderer.
func New(opts Options) *Renderer {
	gopts := []goldmark.Option{
		goldmark.WithRendererOptions(html.WithUnsafe()),
	}

	if opts.ChromaTheme != "" {
		gopts = append(gopts, goldmark.WithExtensions(
			highlighting.NewHighlighting(
				highlighting.WithStyle(opts.ChromaTheme),
				highlighting.WithFormatOptions(
					chromahtml.WithLineNumbers(opts.ChromaLineNumbers),
				),
			),
		))
	}

	return &Renderer{md: goldmark.New(gopts...)}
}

// Render returns the HTML for src.
func (r *Renderer) Render(src []byte) ([]byte, error) {
	buf := new(bytes.Buffer)

	err := r.md.Convert(src, buf)
	if err != nil {
		return nil, fmt.Errorf("could not render markdown: %w", err)
	}

	return buf.Bytes(), nil
}
