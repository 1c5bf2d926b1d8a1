package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rezeptapp/internal/ai"
	"rezeptapp/internal/auth"
	"rezeptapp/internal/config"
	apperrors "rezeptapp/internal/errors"
	"rezeptapp/internal/model"
	"rezeptapp/internal/repository"
	"rezeptapp/internal/testutil"
)

type aiFixture struct {
	svc      AIService
	provider *fakeProvider
	settings SettingsService
	users    repository.UserRepository
}

func newAIFixture(t *testing.T, withKey bool) *aiFixture {
	t.Helper()
	gdb := testutil.NewDB(t)
	settings := NewSettingsService(repository.NewSettingRepository(gdb), auth.NewGuard(true), testLogger())
	if withKey {
		key := "sk-test-key-123"
		_, err := settings.Update(context.Background(), adminSession(1), SettingsUpdate{OpenAIAPIKey: &key})
		require.NoError(t, err)
	}
	users := repository.NewUserRepository(gdb)
	provider := &fakeProvider{}
	cfg := config.AIConfig{
		ChatModel:     "gpt-4o-mini",
		VisionModel:   "gpt-4o",
		OptimizeModel: "gpt-4o",
		ImageModel:    "dall-e-3",
		Language:      "German",
	}
	return &aiFixture{
		svc:      NewAIService(provider, settings, users, cfg, testLogger()),
		provider: provider,
		settings: settings,
		users:    users,
	}
}

func TestAIService_MissingKey(t *testing.T) {
	f := newAIFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.GenerateRecipe(ctx, "Italy", nil)
	assert.ErrorIs(t, err, apperrors.ErrAIKeyMissing)
	_, err = f.svc.OptimizeRecipe(ctx, "Soup", "Water", "Boil")
	assert.ErrorIs(t, err, apperrors.ErrAIKeyMissing)
	_, err = f.svc.AnalyzeImage(ctx, ai.ImageInput{MIMEType: "image/png", Data: []byte{1}})
	assert.ErrorIs(t, err, apperrors.ErrAIKeyMissing)
	_, err = f.svc.GenerateProfileImage(ctx, 1)
	assert.ErrorIs(t, err, apperrors.ErrAIKeyMissing)

	url, err := f.svc.StepIllustration(ctx, "Chop onions", "Soup")
	require.NoError(t, err)
	assert.Empty(t, url)
	assert.Empty(t, f.provider.keys)
}

func TestAIService_GenerateRecipe(t *testing.T) {
	f := newAIFixture(t, true)
	f.provider.content = "```json\n" + `{"title":"Risotto","description":"Creamy","ingredients":["Rice","Broth"],"instructions":["Toast rice","Add broth"]}` + "\n```"

	dish := " Main "
	got, err := f.svc.GenerateRecipe(context.Background(), "Italy", &dish)
	require.NoError(t, err)

	assert.Equal(t, "Risotto", got.Title)
	assert.Equal(t, "Rice\nBroth", got.Ingredients)
	assert.Equal(t, "Toast rice\nAdd broth", got.Instructions)
	assert.Equal(t, model.DefaultCategory, got.Category)
	assert.Equal(t, "", got.ImageURL)
	assert.Equal(t, "Italy", got.Country)
	require.NotNil(t, got.DishType)
	assert.Equal(t, "Main", *got.DishType)

	require.Len(t, f.provider.completes, 1)
	req := f.provider.completes[0]
	assert.True(t, req.JSONMode)
	assert.Equal(t, "gpt-4o-mini", req.Model)
	assert.Equal(t, 0.8, req.Temperature)
	assert.Contains(t, req.Prompt, "Italy")
	assert.Contains(t, req.Prompt, "German")
	assert.Equal(t, []string{"sk-test-key-123"}, f.provider.keys)

	_, err = f.svc.GenerateRecipe(context.Background(), " ", nil)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestAIService_OptimizeRecipe(t *testing.T) {
	f := newAIFixture(t, true)
	f.provider.content = `{"optimizedInstructions":["Heat pan","Fry 3 minutes"],"tips":["Use butter"]}`

	got, err := f.svc.OptimizeRecipe(context.Background(), "Eggs", "Eggs", "Fry")
	require.NoError(t, err)
	assert.Equal(t, "Heat pan\nFry 3 minutes", got.OptimizedInstructions)
	assert.Equal(t, []string{"Use butter"}, got.Tips)
	assert.Equal(t, defaultEstimatedTime, got.EstimatedTime)
	assert.Equal(t, "gpt-4o", f.provider.completes[0].Model)
}

func TestAIService_AnalyzeImage(t *testing.T) {
	f := newAIFixture(t, true)
	f.provider.content = `{"title":"Cake","description":"Sweet","ingredients":"Flour\nSugar","instructions":["Mix","Bake"]}`

	got, err := f.svc.AnalyzeImage(context.Background(), ai.ImageInput{MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8}})
	require.NoError(t, err)
	assert.Equal(t, "Cake", got.Title)
	assert.Equal(t, "Flour\nSugar", got.Ingredients)
	assert.Equal(t, "Mix\nBake", got.Instructions)

	req := f.provider.completes[0]
	require.NotNil(t, req.Image)
	assert.Equal(t, 2000, req.MaxTokens)
	assert.Equal(t, "gpt-4o", req.Model)

	f.provider.content = "I cannot read this picture."
	_, err = f.svc.AnalyzeImage(context.Background(), ai.ImageInput{Data: []byte{1}})
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.KindUpstreamFailure, appErr.Kind)
	assert.Equal(t, "I cannot read this picture.", appErr.Details)

	_, err = f.svc.AnalyzeImage(context.Background(), ai.ImageInput{})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestAIService_StepIllustration(t *testing.T) {
	f := newAIFixture(t, true)
	ctx := context.Background()

	_, err := f.svc.StepIllustration(ctx, " ", "Soup")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	f.provider.imageURL = "https://img.example/step.png"
	url, err := f.svc.StepIllustration(ctx, "Chop onions", "Soup")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/step.png", url)

	f.provider.err = apperrors.Upstream("AI provider error (500): boom", "", nil)
	url, err = f.svc.StepIllustration(ctx, "Chop onions", "Soup")
	require.NoError(t, err)
	assert.Empty(t, url)
}

func TestAIService_GenerateProfileImage(t *testing.T) {
	f := newAIFixture(t, true)
	ctx := context.Background()
	user := &model.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x", Role: model.RoleUser}
	require.NoError(t, f.users.Create(ctx, user))

	f.provider.imageURL = "https://img.example/avatar.png"
	updated, err := f.svc.GenerateProfileImage(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.ProfileImageURL)
	assert.Equal(t, "https://img.example/avatar.png", *updated.ProfileImageURL)

	stored, err := f.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ProfileImageURL)
	assert.Equal(t, "https://img.example/avatar.png", *stored.ProfileImageURL)
	assert.Contains(t, f.provider.images[0].Prompt, "alice")

	_, err = f.svc.GenerateProfileImage(ctx, 999)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}
