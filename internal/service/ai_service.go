package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"rezeptapp/internal/ai"
	"rezeptapp/internal/config"
	apperrors "rezeptapp/internal/errors"
	"rezeptapp/internal/model"
	"rezeptapp/internal/repository"
)

const defaultEstimatedTime = "not specified"

// GeneratedRecipe is a draft produced from a country and dish type. It can be
// submitted to the moderation queue unchanged.
type GeneratedRecipe struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Ingredients  string  `json:"ingredients"`
	Instructions string  `json:"instructions"`
	Category     string  `json:"category"`
	ImageURL     string  `json:"imageUrl"`
	Country      string  `json:"country"`
	DishType     *string `json:"dishType"`
}

// OptimizedRecipe is a rewritten, more detailed set of instructions.
type OptimizedRecipe struct {
	OptimizedInstructions string   `json:"optimizedInstructions"`
	Tips                  []string `json:"tips"`
	EstimatedTime         string   `json:"estimatedTime"`
}

// AnalyzedRecipe holds fields read from a photographed recipe.
type AnalyzedRecipe struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Ingredients  string `json:"ingredients"`
	Instructions string `json:"instructions"`
}

// AIService wraps the external generation service.
type AIService interface {
	GenerateRecipe(ctx context.Context, country string, dishType *string) (*GeneratedRecipe, error)
	OptimizeRecipe(ctx context.Context, title, ingredients, instructions string) (*OptimizedRecipe, error)
	AnalyzeImage(ctx context.Context, image ai.ImageInput) (*AnalyzedRecipe, error)
	// StepIllustration returns an image URL, or "" when no key is configured or the provider fails.
	StepIllustration(ctx context.Context, step, recipeName string) (string, error)
	// GenerateProfileImage renders and stores a new avatar and returns the updated user.
	GenerateProfileImage(ctx context.Context, userID uint) (*model.User, error)
}

type aiService struct {
	provider ai.Provider
	settings SettingsService
	users    repository.UserRepository
	cfg      config.AIConfig
	log      logrus.FieldLogger
}

// NewAIService creates an AI service.
func NewAIService(provider ai.Provider, settings SettingsService, users repository.UserRepository, cfg config.AIConfig, log logrus.FieldLogger) AIService {
	return &aiService{
		provider: provider,
		settings: settings,
		users:    users,
		cfg:      cfg,
		log:      log.WithField("service", "ai"),
	}
}

func (s *aiService) apiKey(ctx context.Context) (string, error) {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return "", err
	}
	if settings.OpenAIAPIKey == "" {
		return "", apperrors.ErrAIKeyMissing
	}
	return settings.OpenAIAPIKey, nil
}

func (s *aiService) GenerateRecipe(ctx context.Context, country string, dishType *string) (*GeneratedRecipe, error) {
	country = strings.TrimSpace(country)
	if country == "" {
		return nil, apperrors.Validation("country is required")
	}
	dishType = nonEmpty(dishType)

	key, err := s.apiKey(ctx)
	if err != nil {
		return nil, err
	}

	subject := "a traditional dish"
	if dishType != nil {
		subject = *dishType
	}
	prompt := fmt.Sprintf(
		"Create a detailed recipe for %s from %s. Include a creative title, a short description, "+
			"the ingredients with quantities (one per entry) and step-by-step instructions (one step per entry). "+
			"Respond as a JSON object with the keys title, description, ingredients (array), instructions (array), category. "+
			"Write everything in %s.",
		subject, country, s.cfg.Language)

	content, err := s.provider.Complete(ctx, key, ai.CompletionRequest{
		Operation:   "generate_recipe",
		Model:       s.cfg.ChatModel,
		System:      fmt.Sprintf("You are a professional chef and recipe author. Answer only with valid JSON, written in %s.", s.cfg.Language),
		Prompt:      prompt,
		Temperature: 0.8,
		JSONMode:    true,
	})
	if err != nil {
		return nil, err
	}

	res, err := ai.ParseObject(content)
	if err != nil {
		return nil, err
	}
	category := strings.TrimSpace(res.Get("category").String())
	if category == "" {
		category = model.DefaultCategory
	}
	return &GeneratedRecipe{
		Title:        res.Get("title").String(),
		Description:  res.Get("description").String(),
		Ingredients:  ai.TextBlock(res.Get("ingredients")),
		Instructions: ai.TextBlock(res.Get("instructions")),
		Category:     category,
		ImageURL:     "",
		Country:      country,
		DishType:     dishType,
	}, nil
}

func (s *aiService) OptimizeRecipe(ctx context.Context, title, ingredients, instructions string) (*OptimizedRecipe, error) {
	if strings.TrimSpace(instructions) == "" {
		return nil, apperrors.Validation("instructions are required")
	}
	key, err := s.apiKey(ctx)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(
		"Rewrite the cooking instructions of this recipe so that someone cooking right now can follow them easily.\n\n"+
			"RECIPE: %s\n\nINGREDIENTS:\n%s\n\nORIGINAL INSTRUCTIONS:\n%s\n\n"+
			"Add concrete times and heat levels, briefly explain techniques, give 3 to 5 practical tips and estimate the total time. "+
			"Respond as a JSON object: {\"optimizedInstructions\": [\"step\", ...], \"tips\": [\"tip\", ...], \"estimatedTime\": \"...\"}. "+
			"Write everything in %s.",
		title, ingredients, instructions, s.cfg.Language)

	content, err := s.provider.Complete(ctx, key, ai.CompletionRequest{
		Operation:   "optimize_recipe",
		Model:       s.cfg.OptimizeModel,
		System:      fmt.Sprintf("You are a professional chef and cooking instructor. Answer only with valid JSON, written in %s.", s.cfg.Language),
		Prompt:      prompt,
		Temperature: 0.7,
		JSONMode:    true,
	})
	if err != nil {
		return nil, err
	}

	res, err := ai.ParseObject(content)
	if err != nil {
		return nil, err
	}
	estimated := strings.TrimSpace(res.Get("estimatedTime").String())
	if estimated == "" {
		estimated = defaultEstimatedTime
	}
	return &OptimizedRecipe{
		OptimizedInstructions: ai.TextBlock(res.Get("optimizedInstructions")),
		Tips:                  ai.StringList(res.Get("tips")),
		EstimatedTime:         estimated,
	}, nil
}

func (s *aiService) AnalyzeImage(ctx context.Context, image ai.ImageInput) (*AnalyzedRecipe, error) {
	if len(image.Data) == 0 {
		return nil, apperrors.Validation("no file uploaded")
	}
	key, err := s.apiKey(ctx)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(
		"Read this picture of a recipe very carefully and extract everything visible. "+
			"Keep exact quantities, list every ingredient on its own line in the given order, "+
			"and write each instruction step on its own line including times and temperatures. "+
			"Do not add anything that is not in the picture. "+
			"Respond only with a JSON object with the keys title, description (max 150 characters), ingredients, instructions. "+
			"Write everything in %s.", s.cfg.Language)

	content, err := s.provider.Complete(ctx, key, ai.CompletionRequest{
		Operation: "analyze_image",
		Model:     s.cfg.VisionModel,
		Prompt:    prompt,
		Image:     &image,
		MaxTokens: 2000,
	})
	if err != nil {
		return nil, err
	}

	res, err := ai.ParseObject(content)
	if err != nil {
		return nil, err
	}
	return &AnalyzedRecipe{
		Title:        res.Get("title").String(),
		Description:  res.Get("description").String(),
		Ingredients:  ai.TextBlock(res.Get("ingredients")),
		Instructions: ai.TextBlock(res.Get("instructions")),
	}, nil
}

func (s *aiService) StepIllustration(ctx context.Context, step, recipeName string) (string, error) {
	if strings.TrimSpace(step) == "" {
		return "", apperrors.Validation("step description is required")
	}
	key, err := s.apiKey(ctx)
	if errors.Is(err, apperrors.ErrAIKeyMissing) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	url, err := s.provider.GenerateImage(ctx, key, ai.ImageRequest{
		Operation: "step_illustration",
		Model:     s.cfg.ImageModel,
		Prompt: fmt.Sprintf(
			"A simple hand-drawn cookbook illustration of this cooking step: %q. "+
				"Minimalist line drawing with few colors, focused on the main action or ingredient. Recipe: %s.",
			step, recipeName),
	})
	if err != nil {
		s.log.WithError(err).Warn("step illustration failed")
		return "", nil
	}
	return url, nil
}

func (s *aiService) GenerateProfileImage(ctx context.Context, userID uint) (*model.User, error) {
	key, err := s.apiKey(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	url, err := s.provider.GenerateImage(ctx, key, ai.ImageRequest{
		Operation: "profile_image",
		Model:     s.cfg.ImageModel,
		Prompt: fmt.Sprintf(
			"A friendly avatar for a user named %s. Modern, colorful, abstract geometric style with warm colors. "+
				"Simple and clean, suitable for a profile picture.", user.Username),
	})
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdateProfileImage(ctx, userID, url); err != nil {
		return nil, fmt.Errorf("save profile image: %w", err)
	}
	user.ProfileImageURL = &url
	s.log.WithField("user_id", userID).Info("profile image generated")
	return user, nil
}
