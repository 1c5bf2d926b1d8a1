package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rezeptapp/internal/model"
)

// PendingRecipeRepository defines moderation queue persistence operations.
type PendingRecipeRepository interface {
	Create(ctx context.Context, pending *model.PendingRecipe) error
	// FindByIDForUpdate locks the row for the rest of the transaction where the dialect supports it.
	FindByIDForUpdate(ctx context.Context, id uint) (*model.PendingRecipe, error)
	// ListByStatus returns entries in the given status, newest first.
	ListByStatus(ctx context.Context, status model.PendingStatus) ([]model.PendingRecipe, error)
	CountByStatus(ctx context.Context, status model.PendingStatus) (int64, error)
	// UpdateStatusIfPending moves a PENDING entry to status. It reports false
	// when the entry was no longer PENDING.
	UpdateStatusIfPending(ctx context.Context, id uint, status model.PendingStatus) (bool, error)
	// WithTransaction runs fn with repositories bound to one transaction.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, pending PendingRecipeRepository, recipes RecipeRepository) error) error
}

type pendingRecipeRepository struct {
	db *gorm.DB
}

// NewPendingRecipeRepository creates a new moderation queue repository.
func NewPendingRecipeRepository(db *gorm.DB) PendingRecipeRepository {
	return &pendingRecipeRepository{db: db}
}

func (r *pendingRecipeRepository) Create(ctx context.Context, pending *model.PendingRecipe) error {
	return r.db.WithContext(ctx).Create(pending).Error
}

func (r *pendingRecipeRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.PendingRecipe, error) {
	q := r.db.WithContext(ctx)
	if q.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var pending model.PendingRecipe
	if err := q.First(&pending, id).Error; err != nil {
		return nil, err
	}
	return &pending, nil
}

func (r *pendingRecipeRepository) ListByStatus(ctx context.Context, status model.PendingStatus) ([]model.PendingRecipe, error) {
	var entries []model.PendingRecipe
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at desc").Order("id desc").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *pendingRecipeRepository) CountByStatus(ctx context.Context, status model.PendingStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.PendingRecipe{}).
		Where("status = ?", status).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *pendingRecipeRepository) UpdateStatusIfPending(ctx context.Context, id uint, status model.PendingStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.PendingRecipe{}).
		Where("id = ? AND status = ?", id, model.PendingStatusPending).
		Update("status", status)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// WithTransaction executes a function within a database transaction.
func (r *pendingRecipeRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, pending PendingRecipeRepository, recipes RecipeRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &pendingRecipeRepository{db: tx}, &recipeRepository{db: tx})
	})
}
