package markdown

import (
	"bytes"
	"regexp"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	highlighting "github.com/yuin/goldmark-highlighting/v2"

	"devlog/utils"
)

// One source document serves three audiences: the browser (sanitized HTML
// with resolved media), the search index (bare text with searchable link
// parts) and the preview snippet (bare text, structure suppressed). All three
// share a single structural parse; only the per-node emitters differ, so the
// outputs cannot drift apart as the grammar evolves.

var spaceRun = regexp.MustCompile(`\s+`)

// renderAll parses source once and renders the HTML, index-text and
// plain-preview outputs from the shared syntax tree. Any render failure
// aborts all three outputs.
func renderAll(source []byte, res *Resolver) (htmlOut, indexText, plain string, err error) {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
				highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
			),
		),
		goldmark.WithRendererOptions(renderer.WithNodeRenderers(
			util.Prioritized(&mediaHTMLRenderer{resolver: res}, 500),
		)),
	)

	doc := md.Parser().Parse(text.NewReader(source))

	var htmlBuf bytes.Buffer
	if err = md.Renderer().Render(&htmlBuf, source, doc); err != nil {
		return "", "", "", err
	}

	var indexBuf bytes.Buffer
	if err = indexRenderer.Render(&indexBuf, source, doc); err != nil {
		return "", "", "", err
	}

	var plainBuf bytes.Buffer
	if err = plainRenderer.Render(&plainBuf, source, doc); err != nil {
		return "", "", "", err
	}

	htmlOut = utils.SanitizeRich(strings.TrimSpace(htmlBuf.String()))
	indexText = collapse(indexBuf.String())
	plain = collapse(plainBuf.String())
	return htmlOut, indexText, plain, nil
}

func collapse(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// mediaHTMLRenderer overrides image emission of the default HTML renderer:
// the href is checked against the reference resolver, and a resolved video
// reference turns the element into <video controls> instead of <img>.
type mediaHTMLRenderer struct {
	resolver *Resolver
}

func (r *mediaHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindImage, r.renderImage)
}

func (r *mediaHTMLRenderer) renderImage(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.Image)

	dest, video := r.resolver.Resolve(string(n.Destination))

	if video {
		_, _ = w.WriteString(`<video controls="" src="`)
	} else {
		_, _ = w.WriteString(`<img src="`)
	}
	_, _ = w.Write(util.EscapeHTML(util.URLEscape([]byte(dest), true)))
	_, _ = w.WriteString(`" alt="`)
	_, _ = w.Write(util.EscapeHTML(textContent(n, source)))
	_ = w.WriteByte('"')
	if len(n.Title) > 0 {
		_, _ = w.WriteString(` title="`)
		_, _ = w.Write(util.EscapeHTML(n.Title))
		_ = w.WriteByte('"')
	}
	if video {
		_, _ = w.WriteString(`></video>`)
	} else {
		_ = w.WriteByte('>')
	}
	return ast.WalkSkipChildren, nil
}

func textContent(n ast.Node, source []byte) []byte {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := c.(*ast.Text); ok {
				buf.Write(t.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return buf.Bytes()
}

// The two text modes. Plain feeds the preview snippet: blockquotes are
// stripped along with code and raw HTML, links keep only their label. Index
// feeds full-text search: blockquote text survives and links are emitted as
// "{href} {title} {text} " so the href itself is searchable.
var (
	plainRenderer = renderer.NewRenderer(renderer.WithNodeRenderers(
		util.Prioritized(newTextRenderer(textMode{}), 100),
	))
	indexRenderer = renderer.NewRenderer(renderer.WithNodeRenderers(
		util.Prioritized(newTextRenderer(textMode{keepBlockquotes: true, linkRefs: true}), 100),
	))
)

type textMode struct {
	keepBlockquotes bool
	linkRefs        bool
}

// textRenderer emits bare text for a fixed set of node kinds. Emission is a
// per-kind table of closures built from the mode flags rather than a type per
// output mode.
type textRenderer struct {
	funcs map[ast.NodeKind]renderer.NodeRendererFunc
}

func newTextRenderer(mode textMode) *textRenderer {
	walk := func(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
		return ast.WalkContinue, nil
	}
	drop := func(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	}
	block := func(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			_ = w.WriteByte('\n')
		}
		return ast.WalkContinue, nil
	}

	funcs := map[ast.NodeKind]renderer.NodeRendererFunc{
		ast.KindDocument:       walk,
		ast.KindTextBlock:      walk,
		ast.KindList:           walk,
		ast.KindEmphasis:       walk,
		ast.KindCodeSpan:       walk,
		east.KindStrikethrough: walk,

		ast.KindParagraph: block,
		ast.KindHeading:   block,
		ast.KindListItem:  block,

		ast.KindCodeBlock:       drop,
		ast.KindFencedCodeBlock: drop,
		ast.KindHTMLBlock:       drop,
		ast.KindImage:           drop,

		ast.KindThematicBreak: walk,
		east.KindTaskCheckBox: walk,

		east.KindTable:       walk,
		east.KindTableHeader: block,
		east.KindTableRow:    block,

		ast.KindText: func(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
			if !entering {
				return ast.WalkContinue, nil
			}
			t := n.(*ast.Text)
			_, _ = w.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				_ = w.WriteByte('\n')
			}
			return ast.WalkContinue, nil
		},
		ast.KindString: func(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
			if entering {
				_, _ = w.Write(n.(*ast.String).Value)
			}
			return ast.WalkContinue, nil
		},
		ast.KindRawHTML: drop,
		ast.KindAutoLink: func(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
			if entering {
				_, _ = w.Write(n.(*ast.AutoLink).URL(source))
			}
			return ast.WalkContinue, nil
		},
		east.KindTableCell: func(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
			if !entering {
				_ = w.WriteByte(' ')
			}
			return ast.WalkContinue, nil
		},
	}

	if mode.keepBlockquotes {
		funcs[ast.KindBlockquote] = block
	} else {
		funcs[ast.KindBlockquote] = drop
	}

	if mode.linkRefs {
		funcs[ast.KindLink] = func(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
			l := n.(*ast.Link)
			if entering {
				_, _ = w.Write(l.Destination)
				_ = w.WriteByte(' ')
				if len(l.Title) > 0 {
					_, _ = w.Write(l.Title)
					_ = w.WriteByte(' ')
				}
			} else {
				_ = w.WriteByte(' ')
			}
			return ast.WalkContinue, nil
		}
	} else {
		funcs[ast.KindLink] = walk
	}

	return &textRenderer{funcs: funcs}
}

func (r *textRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	for kind, f := range r.funcs {
		reg.Register(kind, f)
	}
}
