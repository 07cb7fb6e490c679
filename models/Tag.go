package models

import (
	"html"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Tag struct {
	ID   uint   `gorm:"primary_key;autoIncrement" json:"id"`
	Name string `gorm:"size:100;not null;uniqueIndex" json:"name"`
}

// NormalizeTagName lowercases and escapes a raw tag name. Empty results are
// dropped by callers.
func NormalizeTagName(name string) string {
	return html.EscapeString(strings.ToLower(strings.TrimSpace(name)))
}

// FindOrCreateTags resolves a list of raw names to persisted tags, creating
// the missing ones. Duplicates in the input collapse to one tag; input order
// of first appearance is preserved.
func FindOrCreateTags(db *gorm.DB, names []string) ([]Tag, error) {
	seen := make(map[string]bool)
	tags := make([]Tag, 0, len(names))
	for _, raw := range names {
		name := NormalizeTagName(raw)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		tag := Tag{Name: name}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&tag).Error; err != nil {
			return nil, err
		}
		// OnConflict leaves ID zero when the tag already existed.
		if tag.ID == 0 {
			if err := db.Where("name = ?", name).Take(&tag).Error; err != nil {
				return nil, err
			}
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// ListTagNames returns every tag name, alphabetical and de-duplicated by the
// unique index.
func ListTagNames(db *gorm.DB) ([]string, error) {
	var names []string
	err := db.Model(&Tag{}).Order("name asc").Pluck("name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}
