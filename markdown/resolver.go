package markdown

import (
	"regexp"
	"strconv"
)

// Placeholder references embedded in image hrefs: a trailing "$N" points at
// image attachment N, "@N" at video attachment N. N is the upload-order index
// assigned when the attachment was created.
var refPattern = regexp.MustCompile(`[$@](\d+)$`)

// Resolver maps placeholder references to attachment URLs. The maps are built
// once per content-generation call from the post's persisted attachments.
type Resolver struct {
	images map[int]string
	videos map[int]string
}

// NewResolver creates a resolver over the given index-to-URL maps.
func NewResolver(images, videos map[int]string) *Resolver {
	return &Resolver{images: images, videos: videos}
}

// Resolve returns the concrete URL for href and whether it names a video
// attachment. An href without a placeholder, or one whose index is not in the
// map (deleted attachment, out of range), is returned unchanged: a broken
// reference stays visibly broken instead of failing the whole render.
func (r *Resolver) Resolve(href string) (string, bool) {
	m := refPattern.FindStringSubmatch(href)
	if m == nil {
		return href, false
	}

	index, err := strconv.Atoi(m[1])
	if err != nil {
		return href, false
	}

	if m[0][0] == '$' {
		if url, ok := r.images[index]; ok {
			return url, false
		}
		return href, false
	}

	if url, ok := r.videos[index]; ok {
		return url, true
	}
	return href, false
}
