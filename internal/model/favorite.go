package model

import "time"

// Favorite marks a recipe as favored by a user. At most one row exists per pair.
type Favorite struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"userId" gorm:"not null;uniqueIndex:idx_favorite_user_recipe"`
	RecipeID  uint      `json:"recipeId" gorm:"not null;uniqueIndex:idx_favorite_user_recipe;index"`
	CreatedAt time.Time `json:"createdAt"`

	Recipe Recipe `json:"recipe" gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}
