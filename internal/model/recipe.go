package model

import (
	"strings"
	"time"
)

// DefaultCategory is used when a recipe has no category.
const DefaultCategory = "Other"

// Recipe is a published recipe, visible to everyone.
type Recipe struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Title        string    `json:"title" gorm:"size:255;not null"`
	Description  string    `json:"description" gorm:"type:text"`
	Ingredients  string    `json:"ingredients" gorm:"type:text"`
	Instructions string    `json:"instructions" gorm:"type:text"`
	ImageURL     *string   `json:"imageUrl" gorm:"type:text"`
	Category     string    `json:"category" gorm:"size:191;not null;default:'Other';index"`
	CreatedAt    time.Time `json:"createdAt" gorm:"index"`
}

// Steps splits the instruction block into trimmed, non-blank lines.
func (r *Recipe) Steps() []string {
	return SplitLines(r.Instructions)
}

// IngredientList splits the ingredient block into trimmed, non-blank lines.
func (r *Recipe) IngredientList() []string {
	return SplitLines(r.Ingredients)
}

// SplitLines splits a newline-delimited block, trims every line and drops blank ones.
func SplitLines(block string) []string {
	lines := strings.Split(strings.ReplaceAll(block, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
