package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, source string, res *Resolver) (htmlOut, indexText, plain string) {
	t.Helper()
	if res == nil {
		res = NewResolver(nil, nil)
	}
	htmlOut, indexText, plain, err := renderAll([]byte(source), res)
	require.NoError(t, err)
	return htmlOut, indexText, plain
}

func TestRenderModesKeepDropMatrix(t *testing.T) {
	source := "# Intro\n\n" +
		"> quoted wisdom\n\n" +
		"some *emphasised* body\n\n" +
		"```\nsecret code\n```\n"

	htmlOut, indexText, plain := render(t, source, nil)

	// Plain strips blockquotes and code, keeps heading text bare.
	assert.Equal(t, "Intro some emphasised body", plain)

	// Index keeps blockquote text but still drops code.
	assert.Equal(t, "Intro quoted wisdom some emphasised body", indexText)

	assert.Contains(t, htmlOut, "<h1>Intro</h1>")
	assert.Contains(t, htmlOut, "<blockquote>")
	assert.Contains(t, htmlOut, "<em>emphasised</em>")
}

func TestRenderLinkModes(t *testing.T) {
	source := `see [the docs](https://docs.example/guide "Guide") here`

	_, indexText, plain := render(t, source, nil)

	// Plain keeps only the label.
	assert.Equal(t, "see the docs here", plain)

	// Index makes href and title searchable alongside the label.
	assert.Equal(t, "see https://docs.example/guide Guide the docs here", indexText)
}

func TestRenderImagePlaceholderResolution(t *testing.T) {
	res := NewResolver(map[int]string{2: "https://blobs.example/9/abc.png"}, nil)

	htmlOut, indexText, plain := render(t, "![a chart](foo$2)", res)

	assert.Contains(t, htmlOut, `src="https://blobs.example/9/abc.png"`)
	assert.Contains(t, htmlOut, `alt="a chart"`)

	// Images contribute nothing to the text outputs.
	assert.Empty(t, plain)
	assert.Empty(t, indexText)
}

func TestRenderVideoPlaceholder(t *testing.T) {
	res := NewResolver(nil, map[int]string{0: "https://blobs.example/9/clip.mp4"})

	htmlOut, _, _ := render(t, "![clip](@0)", res)

	assert.Contains(t, htmlOut, "<video")
	assert.Contains(t, htmlOut, `src="https://blobs.example/9/clip.mp4"`)
	assert.NotContains(t, htmlOut, "<img")
}

func TestRenderUnresolvedPlaceholderPassesThrough(t *testing.T) {
	htmlOut, _, _ := render(t, "![gone]($5)", NewResolver(nil, nil))

	assert.Contains(t, htmlOut, `src="$5"`)
}

func TestRenderSanitizesScripts(t *testing.T) {
	htmlOut, indexText, plain := render(t, "hello <script>alert(1)</script> world\n", nil)

	// The tags vanish; their inner text is ordinary text.
	assert.NotContains(t, htmlOut, "<script")
	assert.Equal(t, "hello alert(1) world", plain)
	assert.Equal(t, "hello alert(1) world", indexText)
}

func TestRenderCodeHighlighting(t *testing.T) {
	source := "```go\npackage main\n```\n"

	htmlOut, indexText, plain := render(t, source, nil)

	// Highlighted output carries chroma classes, survives sanitization.
	assert.Contains(t, htmlOut, "class=")

	// Code never leaks into the text outputs.
	assert.Empty(t, plain)
	assert.Empty(t, indexText)
}

func TestCollapse(t *testing.T) {
	assert.Equal(t, "a b c", collapse("  a\n\nb\t c \n"))
	assert.Equal(t, "", collapse(" \n\t "))
}
