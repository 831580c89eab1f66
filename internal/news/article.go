package news

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// Article is one news item as returned by a news source. Optional fields are
// empty when the source did not supply them.
type Article struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ImageURL    string     `json:"image_url"`
	URL         string     `json:"url"`
	Source      string     `json:"source"`
	Author      string     `json:"author"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// ID is a stable identifier derived from the article URL, falling back to
// the title for items without a link.
func (a Article) ID() string {
	key := a.URL
	if key == "" {
		key = "title:" + a.Title
	}
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}

// Published returns the publish time, or the zero time when absent.
func (a Article) Published() time.Time {
	if a.PublishedAt == nil {
		return time.Time{}
	}
	return *a.PublishedAt
}
