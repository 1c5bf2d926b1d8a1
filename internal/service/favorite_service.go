package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "rezeptapp/internal/errors"
	"rezeptapp/internal/model"
	"rezeptapp/internal/repository"
)

// FavoriteObserver receives toggle outcomes.
type FavoriteObserver interface {
	ObserveFavoriteToggle(isFavorite bool)
}

// FavoriteService manages per-user favorites.
type FavoriteService interface {
	// Toggle inserts the favorite if absent and removes it if present.
	Toggle(ctx context.Context, userID, recipeID uint) (bool, error)
	// List returns the user's favorite recipes.
	List(ctx context.Context, userID uint) ([]model.Recipe, error)
	// Check returns the subset of recipeIDs the user has favorited.
	Check(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error)
}

type favoriteService struct {
	favorites repository.FavoriteRepository
	recipes   repository.RecipeRepository
	observer  FavoriteObserver
}

// NewFavoriteService creates a new favorite service.
func NewFavoriteService(favorites repository.FavoriteRepository, recipes repository.RecipeRepository, observer FavoriteObserver) FavoriteService {
	return &favoriteService{favorites: favorites, recipes: recipes, observer: observer}
}

func (s *favoriteService) Toggle(ctx context.Context, userID, recipeID uint) (bool, error) {
	existing, err := s.favorites.Find(ctx, userID, recipeID)
	switch {
	case err == nil && existing != nil:
		if err := s.favorites.Delete(ctx, userID, recipeID); err != nil {
			return false, fmt.Errorf("remove favorite: %w", err)
		}
		s.observe(false)
		return false, nil
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return false, fmt.Errorf("find favorite: %w", err)
	}

	if _, err := s.recipes.FindByID(ctx, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, apperrors.ErrRecipeNotFound
		}
		return false, fmt.Errorf("find recipe: %w", err)
	}

	if err := s.favorites.Create(ctx, &model.Favorite{UserID: userID, RecipeID: recipeID}); err != nil {
		// A concurrent toggle inserted the pair first.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			s.observe(true)
			return true, nil
		}
		return false, fmt.Errorf("add favorite: %w", err)
	}
	s.observe(true)
	return true, nil
}

func (s *favoriteService) List(ctx context.Context, userID uint) ([]model.Recipe, error) {
	favorites, err := s.favorites.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	recipes := make([]model.Recipe, 0, len(favorites))
	for _, fav := range favorites {
		recipes = append(recipes, fav.Recipe)
	}
	return recipes, nil
}

func (s *favoriteService) Check(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	result := map[uint]bool{}
	if len(recipeIDs) == 0 {
		return result, nil
	}
	ids, err := s.favorites.FavoriteRecipeIDs(ctx, userID, recipeIDs)
	if err != nil {
		return nil, fmt.Errorf("check favorites: %w", err)
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

func (s *favoriteService) observe(isFavorite bool) {
	if s.observer != nil {
		s.observer.ObserveFavoriteToggle(isFavorite)
	}
}
