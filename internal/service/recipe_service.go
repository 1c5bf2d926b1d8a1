package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	apperrors "rezeptapp/internal/errors"
	"rezeptapp/internal/model"
	"rezeptapp/internal/repository"
)

// RecipeInput carries the editable fields of a recipe.
type RecipeInput struct {
	Title        string
	Description  string
	Ingredients  string
	Instructions string
	ImageURL     *string
	Category     string
}

// CookingSteps is a recipe split into display lines.
type CookingSteps struct {
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
}

// RecipeService manages the published catalog.
type RecipeService interface {
	List(ctx context.Context, filter repository.RecipeFilter) ([]model.Recipe, error)
	Get(ctx context.Context, id uint) (*model.Recipe, error)
	Create(ctx context.Context, in RecipeInput) (*model.Recipe, error)
	Update(ctx context.Context, id uint, in RecipeInput) (*model.Recipe, error)
	Delete(ctx context.Context, id uint) error
	Steps(ctx context.Context, id uint) (*CookingSteps, error)
}

type recipeService struct {
	repo repository.RecipeRepository
}

// NewRecipeService creates a new recipe service.
func NewRecipeService(repo repository.RecipeRepository) RecipeService {
	return &recipeService{repo: repo}
}

func (s *recipeService) List(ctx context.Context, filter repository.RecipeFilter) ([]model.Recipe, error) {
	recipes, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}

func (s *recipeService) Get(ctx context.Context, id uint) (*model.Recipe, error) {
	recipe, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecipeNotFound
		}
		return nil, fmt.Errorf("find recipe: %w", err)
	}
	return recipe, nil
}

func (s *recipeService) Create(ctx context.Context, in RecipeInput) (*model.Recipe, error) {
	recipe, err := buildRecipe(in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, recipe); err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}
	return recipe, nil
}

func (s *recipeService) Update(ctx context.Context, id uint, in RecipeInput) (*model.Recipe, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	recipe, err := buildRecipe(in)
	if err != nil {
		return nil, err
	}
	recipe.ID = id
	if err := s.repo.Update(ctx, recipe); err != nil {
		return nil, fmt.Errorf("update recipe: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *recipeService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrRecipeNotFound
		}
		return fmt.Errorf("delete recipe: %w", err)
	}
	return nil
}

func (s *recipeService) Steps(ctx context.Context, id uint) (*CookingSteps, error) {
	recipe, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CookingSteps{
		Ingredients: recipe.IngredientList(),
		Steps:       recipe.Steps(),
	}, nil
}

func buildRecipe(in RecipeInput) (*model.Recipe, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperrors.Validation("title is required")
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = model.DefaultCategory
	}
	var image *string
	if in.ImageURL != nil && strings.TrimSpace(*in.ImageURL) != "" {
		trimmed := strings.TrimSpace(*in.ImageURL)
		image = &trimmed
	}
	return &model.Recipe{
		Title:        title,
		Description:  in.Description,
		Ingredients:  in.Ingredients,
		Instructions: in.Instructions,
		ImageURL:     image,
		Category:     category,
	}, nil
}
