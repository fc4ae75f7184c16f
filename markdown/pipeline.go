package markdown

import (
	"regexp"
	"strings"

	"devlog/models"
)

const previewLimit = 256

// Matches the storage-provider origin of an attachment URL, for CDN rewrite.
var originPattern = regexp.MustCompile(`^https?:(?://)?(?:\w[\w-]+\w|\w{1,2})(?:\.(?:\w[\w-]+\w|\w{1,2}))*/`)

// A preview cut mid-entity must not keep the dangling "&..." fragment.
var brokenEntity = regexp.MustCompile(`\s*&[^\s;]*$`)

// Generated holds the three derived outputs of one content generation call,
// persisted atomically alongside the raw markup.
type Generated struct {
	IndexText string
	Preview   string
	HTML      string
}

// Pipeline turns raw markup into the derived fields of a post. The same
// instance serves interactive content updates and bulk regeneration, so the
// two can never drift.
type Pipeline struct {
	cdnBase string
}

// NewPipeline creates a pipeline. When cdnBase is non-empty, resolved
// attachment URLs are rewritten from the storage-provider origin to the CDN
// origin; the URLs persisted on the attachments stay canonical.
func NewPipeline(cdnBase string) *Pipeline {
	cdnBase = strings.TrimSpace(cdnBase)
	if cdnBase != "" && !strings.HasSuffix(cdnBase, "/") {
		cdnBase += "/"
	}
	return &Pipeline{cdnBase: cdnBase}
}

// Generate renders content in all three modes against the post's current
// attachment set. No partial result is ever returned: a render failure drops
// all three outputs.
func (p *Pipeline) Generate(post *models.Post, content string) (Generated, error) {
	images := make(map[int]string, len(post.Images))
	for _, img := range post.Images {
		images[img.Index] = p.rewriteOrigin(img.URL)
	}
	videos := make(map[int]string, len(post.Videos))
	for _, vid := range post.Videos {
		videos[vid.Index] = p.rewriteOrigin(vid.URL)
	}

	htmlOut, indexText, plain, err := renderAll([]byte(content), NewResolver(images, videos))
	if err != nil {
		return Generated{}, err
	}

	return Generated{
		IndexText: indexText,
		Preview:   truncatePreview(plain),
		HTML:      htmlOut,
	}, nil
}

func (p *Pipeline) rewriteOrigin(url string) string {
	if p.cdnBase == "" {
		return url
	}
	loc := originPattern.FindStringIndex(url)
	if loc == nil {
		return url
	}
	return p.cdnBase + url[loc[1]:]
}

func truncatePreview(plain string) string {
	runes := []rune(plain)
	if len(runes) > previewLimit {
		plain = string(runes[:previewLimit])
	}
	return brokenEntity.ReplaceAllString(plain, "")
}
