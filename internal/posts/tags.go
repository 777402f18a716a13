package posts

import (
	"strings"

	"github.com/vaughan-dsouza/storygram/internal/models"
)

// SplitTags turns a raw comma-separated tag string into a normalized list:
// split on commas, whitespace trimmed, empty entries dropped. Order is
// preserved and duplicates are kept. The result is never nil, and the
// function is idempotent over its own output joined back with commas.
func SplitTags(raw string) models.Tags {
	tags := models.Tags{}
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
