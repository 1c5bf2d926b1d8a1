package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"rezeptapp/internal/model"
)

// likeEscaper makes user input match literally inside a LIKE pattern with ESCAPE '!'.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// RecipeFilter narrows a recipe listing. Zero values disable a filter.
type RecipeFilter struct {
	// Query is a case-insensitive substring over title, description and ingredients.
	Query string
	// Category is an exact category match. "All" disables the filter.
	Category string
}

// RecipeRepository defines published recipe persistence operations.
type RecipeRepository interface {
	Create(ctx context.Context, recipe *model.Recipe) error
	Update(ctx context.Context, recipe *model.Recipe) error
	FindByID(ctx context.Context, id uint) (*model.Recipe, error)
	List(ctx context.Context, filter RecipeFilter) ([]model.Recipe, error)
	// Delete removes the recipe and every favorite pointing at it.
	Delete(ctx context.Context, id uint) error
}

type recipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a new recipe repository.
func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

// Create creates a new recipe.
func (r *recipeRepository) Create(ctx context.Context, recipe *model.Recipe) error {
	return r.db.WithContext(ctx).Create(recipe).Error
}

// Update overwrites the editable fields of an existing recipe.
func (r *recipeRepository) Update(ctx context.Context, recipe *model.Recipe) error {
	return r.db.WithContext(ctx).Model(&model.Recipe{ID: recipe.ID}).
		Select("title", "description", "ingredients", "instructions", "image_url", "category").
		Updates(recipe).Error
}

// FindByID finds a recipe by ID.
func (r *recipeRepository) FindByID(ctx context.Context, id uint) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := r.db.WithContext(ctx).First(&recipe, id).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

// List returns recipes matching filter, newest first.
func (r *recipeRepository) List(ctx context.Context, filter RecipeFilter) ([]model.Recipe, error) {
	q := r.db.WithContext(ctx).Model(&model.Recipe{})

	if term := strings.TrimSpace(filter.Query); term != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
		q = q.Where("LOWER(title) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!' OR LOWER(ingredients) LIKE ? ESCAPE '!'",
			like, like, like)
	}
	if category := strings.TrimSpace(filter.Category); category != "" && category != "All" {
		q = q.Where("category = ?", category)
	}

	var recipes []model.Recipe
	if err := q.Order("created_at desc").Order("id desc").Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// Delete removes a recipe and its favorites.
func (r *recipeRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&model.Favorite{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Recipe{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
