package repository

import (
	"context"

	"gorm.io/gorm"

	"rezeptapp/internal/model"
)

// FavoriteRepository defines favorite persistence operations.
type FavoriteRepository interface {
	Find(ctx context.Context, userID, recipeID uint) (*model.Favorite, error)
	// Create inserts a favorite. A duplicate pair fails with gorm.ErrDuplicatedKey.
	Create(ctx context.Context, favorite *model.Favorite) error
	Delete(ctx context.Context, userID, recipeID uint) error
	// ListByUser returns the user's favorites with their recipes, newest first.
	ListByUser(ctx context.Context, userID uint) ([]model.Favorite, error)
	// FavoriteRecipeIDs returns which of recipeIDs the user has favorited.
	FavoriteRecipeIDs(ctx context.Context, userID uint, recipeIDs []uint) ([]uint, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository creates a new favorite repository.
func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Find(ctx context.Context, userID, recipeID uint) (*model.Favorite, error) {
	var favorite model.Favorite
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		First(&favorite).Error; err != nil {
		return nil, err
	}
	return &favorite, nil
}

func (r *favoriteRepository) Create(ctx context.Context, favorite *model.Favorite) error {
	return r.db.WithContext(ctx).Omit("Recipe").Create(favorite).Error
}

func (r *favoriteRepository) Delete(ctx context.Context, userID, recipeID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&model.Favorite{}).Error
}

func (r *favoriteRepository) ListByUser(ctx context.Context, userID uint) ([]model.Favorite, error) {
	var favorites []model.Favorite
	if err := r.db.WithContext(ctx).
		Preload("Recipe").
		Where("user_id = ?", userID).
		Order("created_at desc").Order("id desc").
		Find(&favorites).Error; err != nil {
		return nil, err
	}
	return favorites, nil
}

func (r *favoriteRepository) FavoriteRecipeIDs(ctx context.Context, userID uint, recipeIDs []uint) ([]uint, error) {
	if len(recipeIDs) == 0 {
		return []uint{}, nil
	}
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&model.Favorite{}).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
