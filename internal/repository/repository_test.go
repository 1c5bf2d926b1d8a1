package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"rezeptapp/internal/model"
	"rezeptapp/internal/testutil"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{TranslateError: true, Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return gdb, mock
}

func TestCategoryRepository_DuplicateNameIsTranslated(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewCategoryRepository(gdb)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `categories`")).
		WithArgs("Soup").
		WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry 'Soup' for key 'idx_categories_name'"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &model.Category{Name: "Soup"})

	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_DeleteMissing(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewCategoryRepository(gdb)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `categories`")).
		WithArgs(42).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), 42)

	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecipeRepository_ListFilters(t *testing.T) {
	gdb := testutil.NewDB(t)
	repo := NewRecipeRepository(gdb)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	seed := []model.Recipe{
		{Title: "Tomato Soup", Ingredients: "Tomatoes\nSalt", Category: "Soup", CreatedAt: base},
		{Title: "Pancakes", Description: "Fluffy breakfast", Ingredients: "Flour\nMilk", Category: "Breakfast", CreatedAt: base.Add(time.Hour)},
		{Title: "Minestrone", Ingredients: "Beans\ntomatoes", Category: "Soup", CreatedAt: base.Add(2 * time.Hour)},
	}
	for i := range seed {
		require.NoError(t, repo.Create(ctx, &seed[i]))
	}

	all, err := repo.List(ctx, RecipeFilter{Category: "All"})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Minestrone", all[0].Title)

	tomato, err := repo.List(ctx, RecipeFilter{Query: "TOMATO"})
	require.NoError(t, err)
	assert.Len(t, tomato, 2)

	breakfast, err := repo.List(ctx, RecipeFilter{Query: "fluffy", Category: "Breakfast"})
	require.NoError(t, err)
	require.Len(t, breakfast, 1)
	assert.Equal(t, "Pancakes", breakfast[0].Title)

	none, err := repo.List(ctx, RecipeFilter{Query: "tomato", Category: "Breakfast"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRecipeRepository_ListQueryMatchesWildcardsLiterally(t *testing.T) {
	gdb := testutil.NewDB(t)
	repo := NewRecipeRepository(gdb)
	ctx := context.Background()

	for _, title := range []string{"100% Rye Bread", "Rye Bread", "Pasta_Salad", "Pasta Salad", "Wow! Cake"} {
		require.NoError(t, repo.Create(ctx, &model.Recipe{Title: title, Category: model.DefaultCategory}))
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"%", []string{"100% Rye Bread"}},
		{"_", []string{"Pasta_Salad"}},
		{"a_s", []string{"Pasta_Salad"}},
		{"!", []string{"Wow! Cake"}},
		{"rye", []string{"100% Rye Bread", "Rye Bread"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			recipes, err := repo.List(ctx, RecipeFilter{Query: tt.query})
			require.NoError(t, err)
			var titles []string
			for _, r := range recipes {
				titles = append(titles, r.Title)
			}
			assert.ElementsMatch(t, tt.want, titles)
		})
	}
}

func TestRecipeRepository_DeleteRemovesFavorites(t *testing.T) {
	gdb := testutil.NewDB(t)
	recipes := NewRecipeRepository(gdb)
	favorites := NewFavoriteRepository(gdb)
	ctx := context.Background()

	recipe := &model.Recipe{Title: "Soup", Category: model.DefaultCategory}
	require.NoError(t, recipes.Create(ctx, recipe))
	require.NoError(t, favorites.Create(ctx, &model.Favorite{UserID: 1, RecipeID: recipe.ID}))

	require.NoError(t, recipes.Delete(ctx, recipe.ID))

	_, err := favorites.Find(ctx, 1, recipe.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, recipes.Delete(ctx, recipe.ID), gorm.ErrRecordNotFound)
}

func TestFavoriteRepository_UniquePair(t *testing.T) {
	gdb := testutil.NewDB(t)
	recipes := NewRecipeRepository(gdb)
	favorites := NewFavoriteRepository(gdb)
	ctx := context.Background()

	r1 := &model.Recipe{Title: "A", Category: model.DefaultCategory}
	r2 := &model.Recipe{Title: "B", Category: model.DefaultCategory}
	require.NoError(t, recipes.Create(ctx, r1))
	require.NoError(t, recipes.Create(ctx, r2))

	require.NoError(t, favorites.Create(ctx, &model.Favorite{UserID: 7, RecipeID: r1.ID}))
	err := favorites.Create(ctx, &model.Favorite{UserID: 7, RecipeID: r1.ID})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	ids, err := favorites.FavoriteRecipeIDs(ctx, 7, []uint{r1.ID, r2.ID, 999})
	require.NoError(t, err)
	assert.Equal(t, []uint{r1.ID}, ids)

	list, err := favorites.ListByUser(ctx, 7)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "A", list[0].Recipe.Title)
}

func TestPendingRecipeRepository_ConditionalStatusUpdate(t *testing.T) {
	gdb := testutil.NewDB(t)
	repo := NewPendingRecipeRepository(gdb)
	ctx := context.Background()

	entry := &model.PendingRecipe{Title: "Soup", Country: "Italy", UserID: 1, Status: model.PendingStatusPending}
	require.NoError(t, repo.Create(ctx, entry))

	ok, err := repo.UpdateStatusIfPending(ctx, entry.ID, model.PendingStatusApproved)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.UpdateStatusIfPending(ctx, entry.ID, model.PendingStatusRejected)
	require.NoError(t, err)
	assert.False(t, ok)

	var stored model.PendingRecipe
	require.NoError(t, gdb.First(&stored, entry.ID).Error)
	assert.Equal(t, model.PendingStatusApproved, stored.Status)

	count, err := repo.CountByStatus(ctx, model.PendingStatusPending)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSettingRepository_Upsert(t *testing.T) {
	gdb := testutil.NewDB(t)
	repo := NewSettingRepository(gdb)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, model.SettingKeyOpenAIAPIKey, "sk-one"))
	require.NoError(t, repo.Upsert(ctx, model.SettingKeyOpenAIAPIKey, "sk-two"))

	setting, err := repo.Get(ctx, model.SettingKeyOpenAIAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "sk-two", setting.Value)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUserRepository_DeleteRemovesFavorites(t *testing.T) {
	gdb := testutil.NewDB(t)
	users := NewUserRepository(gdb)
	recipes := NewRecipeRepository(gdb)
	favorites := NewFavoriteRepository(gdb)
	ctx := context.Background()

	user := &model.User{Username: "anna", Email: "anna@example.com", PasswordHash: "x", Role: model.RoleUser}
	require.NoError(t, users.Create(ctx, user))
	recipe := &model.Recipe{Title: "Soup", Category: model.DefaultCategory}
	require.NoError(t, recipes.Create(ctx, recipe))
	require.NoError(t, favorites.Create(ctx, &model.Favorite{UserID: user.ID, RecipeID: recipe.ID}))

	require.NoError(t, users.Delete(ctx, user.ID))

	list, err := favorites.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.ErrorIs(t, users.Delete(ctx, user.ID), gorm.ErrRecordNotFound)

	found, err := users.FindByUsernameOrEmail(ctx, "nobody", "anna@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Nil(t, found)
}

func TestUserRepository_RegistrationCounterIsMonotonic(t *testing.T) {
	gdb := testutil.NewDB(t)
	users := NewUserRepository(gdb)
	ctx := context.Background()

	// Users created before the counter existed count as registered.
	legacy := &model.User{Username: "legacy", Email: "legacy@example.com", PasswordHash: "x", Role: model.RoleAdmin}
	require.NoError(t, users.Create(ctx, legacy))

	n, err := users.RegistrationCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = users.NextRegistrationNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, users.Delete(ctx, legacy.ID))

	n, err = users.RegistrationCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = users.NextRegistrationNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestUserRepository_RegistrationNumberRolledBack(t *testing.T) {
	gdb := testutil.NewDB(t)
	users := NewUserRepository(gdb)
	ctx := context.Background()

	errAbort := errors.New("abort")
	err := users.WithTransaction(ctx, func(ctx context.Context, repo UserRepository) error {
		n, err := repo.NextRegistrationNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		return errAbort
	})
	assert.ErrorIs(t, err, errAbort)

	n, err := users.NextRegistrationNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
