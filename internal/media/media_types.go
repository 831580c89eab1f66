package media

import (
	"net/url"
	"path"
	"strings"
)

type Type int

const (
	TypePage Type = iota
	TypeImage
)

func (t Type) String() string {
	if t == TypeImage {
		return "image"
	}
	return "page"
}

// TypeConfig lists how a URL is recognised as a given type.
type TypeConfig struct {
	Extensions  []string `toml:"extensions"`
	URLPatterns []string `toml:"url_patterns"`
}

// DetectType reports whether rawURL points at an image. Anything else is
// treated as a web page.
func (r *Registry) DetectType(rawURL string) Type {
	lower := strings.ToLower(rawURL)

	p := lower
	if u, err := url.Parse(lower); err == nil {
		p = u.Path
	}
	if ext := strings.TrimPrefix(path.Ext(p), "."); ext != "" && contains(r.image.Extensions, ext) {
		return TypeImage
	}

	for _, pattern := range r.image.URLPatterns {
		if strings.Contains(lower, pattern) {
			return TypeImage
		}
	}
	return TypePage
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
