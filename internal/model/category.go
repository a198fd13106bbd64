package model

import (
	"fmt"
	"time"
)

// CategoryOther is the id of the built-in fallback category. Activities the
// model cannot place land here.
const CategoryOther = "other"

// Category represents a user-defined activity bucket.
type Category struct {
	Key       string    `json:"key"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	Icon      string    `json:"icon,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SetKey sets the database key for this category.
func (c *Category) SetKey(key string) {
	c.Key = key
}

// GetKey returns the database key for this category.
func (c *Category) GetKey() string {
	return c.Key
}

// GenerateCategoryKey generates a database key for a category.
func GenerateCategoryKey(id string) string {
	return fmt.Sprintf("%s:%s", PrefixCategory, id)
}

// NewCategory creates a new category.
func NewCategory(id, name, color, icon string) *Category {
	now := time.Now()
	return &Category{
		Key:       GenerateCategoryKey(id),
		ID:        id,
		Name:      name,
		Color:     color,
		Icon:      icon,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DefaultCategories returns the category set seeded on first run.
func DefaultCategories() []*Category {
	return []*Category{
		NewCategory("work", "Work", "#4F8EF7", "💼"),
		NewCategory("personal", "Personal", "#34C759", "🏠"),
		NewCategory("health", "Health", "#FF6B6B", "🏃"),
		NewCategory("learning", "Learning", "#AF52DE", "📚"),
		NewCategory(CategoryOther, "Other", "#8E8E93", "📝"),
	}
}
