package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"rezeptapp/internal/ai"
	"rezeptapp/internal/auth"
	"rezeptapp/internal/service"
)

// AIHandler proxies generation requests to the AI provider.
type AIHandler struct {
	ai          service.AIService
	sessions    *auth.SessionManager
	revocations auth.RevocationStore
	log         logrus.FieldLogger
}

// NewAIHandler creates an AI handler.
func NewAIHandler(aiService service.AIService, sessions *auth.SessionManager, revocations auth.RevocationStore, log logrus.FieldLogger) *AIHandler {
	return &AIHandler{ai: aiService, sessions: sessions, revocations: revocations, log: log}
}

// GenerateRecipeRequest asks for a recipe draft.
type GenerateRecipeRequest struct {
	Country  string  `json:"country" validate:"required,max=100"`
	DishType *string `json:"dishType"`
}

// OptimizeRecipeRequest asks for more detailed instructions.
type OptimizeRecipeRequest struct {
	Title        string    `json:"title"`
	Ingredients  TextBlock `json:"ingredients"`
	Instructions TextBlock `json:"instructions" validate:"required"`
}

// StepIllustrationRequest asks for one step illustration.
type StepIllustrationRequest struct {
	StepDescription string `json:"stepDescription" validate:"required"`
	RecipeName      string `json:"recipeName"`
}

// ImageURLResponse carries a generated image URL, empty when unavailable.
type ImageURLResponse struct {
	ImageURL string `json:"imageUrl"`
}

// ProfileImageResponse is returned after a new avatar was stored.
type ProfileImageResponse struct {
	Success  bool   `json:"success"`
	ImageURL string `json:"imageUrl"`
	Message  string `json:"message"`
}

// Analyze godoc
// @Summary Read a recipe from a photo
// @Tags ai
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Recipe photo"
// @Success 200 {object} service.AnalyzedRecipe
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /ai-analyze [post]
func (h *AIHandler) Analyze(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest("no file uploaded")
	}
	f, err := fh.Open()
	if err != nil {
		return badRequest("unreadable upload")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return badRequest("unreadable upload")
	}
	mime := fh.Header.Get(echo.HeaderContentType)
	if mime == "" || mime == echo.MIMEOctetStream {
		mime = http.DetectContentType(data)
	}

	result, err := h.ai.AnalyzeImage(c.Request().Context(), ai.ImageInput{MIMEType: mime, Data: data})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// GenerateRecipe godoc
// @Summary Generate a recipe draft
// @Tags ai
// @Accept json
// @Produce json
// @Param request body GenerateRecipeRequest true "Country and dish type"
// @Success 200 {object} service.GeneratedRecipe
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /generate-recipe [post]
func (h *AIHandler) GenerateRecipe(c echo.Context) error {
	var req GenerateRecipeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	recipe, err := h.ai.GenerateRecipe(c.Request().Context(), req.Country, req.DishType)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, recipe)
}

// OptimizeRecipe godoc
// @Summary Optimize recipe instructions
// @Tags ai
// @Accept json
// @Produce json
// @Param request body OptimizeRecipeRequest true "Recipe"
// @Success 200 {object} service.OptimizedRecipe
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /optimize-recipe [post]
func (h *AIHandler) OptimizeRecipe(c echo.Context) error {
	var req OptimizeRecipeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	result, err := h.ai.OptimizeRecipe(c.Request().Context(), req.Title, string(req.Ingredients), string(req.Instructions))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// StepIllustration godoc
// @Summary Illustrate a cooking step
// @Description Returns an empty imageUrl when no AI key is configured or generation fails.
// @Tags ai
// @Accept json
// @Produce json
// @Param request body StepIllustrationRequest true "Step"
// @Success 200 {object} ImageURLResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /generate-step-illustration [post]
func (h *AIHandler) StepIllustration(c echo.Context) error {
	var req StepIllustrationRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	url, err := h.ai.StepIllustration(c.Request().Context(), req.StepDescription, req.RecipeName)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, ImageURLResponse{ImageURL: url})
}

// ProfileImage godoc
// @Summary Generate a profile image
// @Description Stores the avatar on the user and re-issues the session cookie.
// @Tags ai
// @Produce json
// @Success 200 {object} ProfileImageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /generate-profile-image [post]
func (h *AIHandler) ProfileImage(c echo.Context) error {
	ctx := c.Request().Context()
	old := auth.SessionFromContext(c)

	user, err := h.ai.GenerateProfileImage(ctx, old.UserID)
	if err != nil {
		return httpError(err)
	}

	if err := h.sessions.Issue(c, auth.NewSession(user)); err != nil {
		return httpError(err)
	}
	if old.TokenID != "" {
		if err := h.revocations.RevokeToken(ctx, old.TokenID, auth.SessionTTL); err != nil {
			h.log.WithError(err).WithField("user_id", user.ID).Warn("revoke replaced session")
		}
	}

	return c.JSON(http.StatusOK, ProfileImageResponse{
		Success:  true,
		ImageURL: *user.ProfileImageURL,
		Message:  "profile image generated",
	})
}
