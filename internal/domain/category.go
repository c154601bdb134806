package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

type Category struct {
	ID          uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"size:255;not null;uniqueIndex"`
	Slug        string    `json:"slug" gorm:"size:255;not null;uniqueIndex"`
	Description *string   `json:"description" gorm:"type:text"`
	Image       []byte    `json:"image" gorm:"type:longblob"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// CategoryChanges carries a partial category update. Nil fields are left
// untouched, and Image is only written when non-empty.
type CategoryChanges struct {
	Name        *string
	Slug        *string
	Description *string
	Image       []byte
}

func (c CategoryChanges) Empty() bool {
	return c.Name == nil && c.Slug == nil && c.Description == nil && len(c.Image) == 0
}

var (
	slugPattern    = regexp.MustCompile(`^[a-z0-9-]+$`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
	nonSlugCharRun = regexp.MustCompile(`[^a-z0-9-]`)
)

// Slugify lowercases name, turns whitespace runs into hyphens and strips every
// character outside [a-z0-9-]. Names that strip down to nothing (for example
// non-Latin scripts) are transliterated instead.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = nonSlugCharRun.ReplaceAllString(s, "")
	if strings.Trim(s, "-") == "" {
		return slug.Make(name)
	}
	return s
}

func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}
