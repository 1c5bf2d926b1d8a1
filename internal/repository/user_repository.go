package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rezeptapp/internal/model"
)

// UserRepository defines persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	// RegistrationCount returns how many users were ever registered.
	RegistrationCount(ctx context.Context) (int64, error)
	// NextRegistrationNumber claims the next 1-based registration ordinal.
	// Call it inside WithTransaction so a failed registration releases it.
	NextRegistrationNumber(ctx context.Context) (int64, error)
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	// FindByUsernameOrEmail returns the first user matching either field.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdateRole(ctx context.Context, id uint, role model.Role) error
	UpdateProfileImage(ctx context.Context, id uint, url string) error
	UpdatePassword(ctx context.Context, id uint, hash string) error
	// Delete removes the user together with their favorites.
	Delete(ctx context.Context, id uint) error
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo UserRepository) error) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var registrationsKey = clause.Eq{Column: clause.Column{Name: "key"}, Value: model.SettingKeyRegistrations}

// RegistrationCount falls back to the current user count for databases that
// predate the counter row.
func (r *userRepository) RegistrationCount(ctx context.Context) (int64, error) {
	var setting model.Setting
	err := r.db.WithContext(ctx).Where(registrationsKey).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.count(ctx)
	}
	if err != nil {
		return 0, err
	}
	return parseCounter(setting.Value)
}

func (r *userRepository) NextRegistrationNumber(ctx context.Context) (int64, error) {
	db := r.db.WithContext(ctx)

	seed, err := r.count(ctx)
	if err != nil {
		return 0, err
	}
	// Concurrent first registrations race on the unique key; the loser keeps
	// the winner's row.
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Setting{Key: model.SettingKeyRegistrations, Value: strconv.FormatInt(seed, 10)}).Error; err != nil {
		return 0, err
	}

	q := db
	if q.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var setting model.Setting
	if err := q.Where(registrationsKey).First(&setting).Error; err != nil {
		return 0, err
	}
	n, err := parseCounter(setting.Value)
	if err != nil {
		return 0, err
	}
	n++
	if err := db.Model(&model.Setting{}).Where("id = ?", setting.ID).
		Update("value", strconv.FormatInt(n, 10)).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func parseCounter(v string) (int64, error) {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt %s setting %q: %w", model.SettingKeyRegistrations, v, err)
	}
	return n, nil
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", username, email).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Order("id asc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) UpdateRole(ctx context.Context, id uint, role model.Role) error {
	return r.updateColumn(ctx, id, "role", role)
}

func (r *userRepository) UpdateProfileImage(ctx context.Context, id uint, url string) error {
	return r.updateColumn(ctx, id, "profile_image_url", url)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return r.updateColumn(ctx, id, "password", hash)
}

func (r *userRepository) updateColumn(ctx context.Context, id uint, column string, value interface{}) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update(column, value).Error
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&model.Favorite{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// WithTransaction executes a function within a database transaction.
func (r *userRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo UserRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &userRepository{db: tx})
	})
}
