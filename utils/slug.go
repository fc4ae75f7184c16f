package utils

import "regexp"

// SlugRegex accepts lowercase alphanumerics and hyphens, at least five
// characters, with no hyphen at either end.
var SlugRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{3,}[a-z0-9]$`)

// ValidSlug reports whether s is a well formed post slug.
func ValidSlug(s string) bool {
	return SlugRegex.MatchString(s)
}
