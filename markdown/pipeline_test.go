package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devlog/models"
)

func testPost() *models.Post {
	return &models.Post{
		Images: []models.PostImage{
			{Index: 0, URL: "https://bucket.s3.us-east-1.amazonaws.com/7/img0.png"},
			{Index: 2, URL: "https://bucket.s3.us-east-1.amazonaws.com/7/img2.png"},
		},
		Videos: []models.PostVideo{
			{Index: 0, URL: "https://bucket.s3.us-east-1.amazonaws.com/7/vid0.mp4"},
		},
	}
}

func TestGenerateResolvesAttachments(t *testing.T) {
	p := NewPipeline("")

	out, err := p.Generate(testPost(), "![chart](foo$2)\n\n![clip](@0)\n")
	require.NoError(t, err)

	assert.Contains(t, out.HTML, "https://bucket.s3.us-east-1.amazonaws.com/7/img2.png")
	assert.Contains(t, out.HTML, "<video")
	assert.Contains(t, out.HTML, "https://bucket.s3.us-east-1.amazonaws.com/7/vid0.mp4")
}

func TestGenerateRewritesCDNOrigin(t *testing.T) {
	p := NewPipeline("https://cdn.example")

	out, err := p.Generate(testPost(), "![chart]($0)\n")
	require.NoError(t, err)

	assert.Contains(t, out.HTML, `src="https://cdn.example/7/img0.png"`)
	assert.NotContains(t, out.HTML, "amazonaws.com")
}

func TestGeneratePreviewTruncation(t *testing.T) {
	p := NewPipeline("")

	long := strings.Repeat("a", 300)
	out, err := p.Generate(&models.Post{}, long)
	require.NoError(t, err)

	assert.Equal(t, 256, len([]rune(out.Preview)))
	assert.Equal(t, strings.Repeat("a", 256), out.Preview)
}

func TestGeneratePreviewDropsDanglingEntity(t *testing.T) {
	p := NewPipeline("")

	// The 256-rune cut lands inside "&copy;", leaving "...a &copy".
	content := strings.Repeat("a", 250) + " &copy; tail"
	out, err := p.Generate(&models.Post{}, content)
	require.NoError(t, err)

	assert.Equal(t, strings.Repeat("a", 250), out.Preview)
	assert.False(t, strings.HasSuffix(out.Preview, "&copy"))
}

func TestGenerateDeterministic(t *testing.T) {
	p := NewPipeline("https://cdn.example")
	content := "# T\n\nbody with ![i]($0) and [l](https://x.example)\n"

	first, err := p.Generate(testPost(), content)
	require.NoError(t, err)
	second, err := p.Generate(testPost(), content)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerateShortContentKeepsEntity(t *testing.T) {
	p := NewPipeline("")

	out, err := p.Generate(&models.Post{}, "short &copy; text")
	require.NoError(t, err)

	// Under the limit nothing is cut and a terminated entity survives.
	assert.Equal(t, "short &copy; text", out.Preview)
}
