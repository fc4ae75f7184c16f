package utils

import "github.com/microcosm-cc/bluemonday"

var richSanitizer = newRichPolicy()

// newRichPolicy extends the UGC policy with what rendered posts legitimately
// produce: video elements for attachment playback and class attributes for
// syntax highlighting spans.
func newRichPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("video")
	p.AllowAttrs("controls", "src").OnElements("video")
	p.AllowAttrs("class").OnElements("span", "pre", "code", "div")
	return p
}

// SanitizeRich cleans rendered post HTML to prevent XSS attacks while keeping
// media and highlighting markup.
func SanitizeRich(input string) string {
	return richSanitizer.Sanitize(input)
}
