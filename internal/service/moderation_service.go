package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"rezeptapp/internal/auth"
	apperrors "rezeptapp/internal/errors"
	"rezeptapp/internal/model"
	"rezeptapp/internal/repository"
)

// Moderation actions.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// Submission is a recipe draft sent to the moderation queue.
type Submission struct {
	Title        string
	Description  string
	Ingredients  string
	Instructions string
	ImageURL     *string
	Category     string
	Country      string
	DishType     *string
}

// Decision is the outcome of an admin decision.
type Decision struct {
	Entry *model.PendingRecipe `json:"entry"`
	// Recipe is the published recipe created by an approval.
	Recipe  *model.Recipe `json:"recipe,omitempty"`
	Message string        `json:"message"`
}

// ModerationObserver receives decision outcomes.
type ModerationObserver interface {
	ObserveModeration(action, outcome string)
}

// ModerationService runs the PENDING -> APPROVED | REJECTED lifecycle.
type ModerationService interface {
	Submit(ctx context.Context, actor *auth.Session, in Submission) (*model.PendingRecipe, error)
	// ListPending returns PENDING entries, newest first. Admin only.
	ListPending(ctx context.Context, actor *auth.Session) ([]model.PendingRecipe, error)
	// Decide approves or rejects a PENDING entry. Admin only.
	Decide(ctx context.Context, actor *auth.Session, id uint, action string) (*Decision, error)
	CountPending(ctx context.Context) (int64, error)
}

type moderationService struct {
	repo     repository.PendingRecipeRepository
	guard    *auth.Guard
	observer ModerationObserver
	tracer   trace.Tracer
	log      logrus.FieldLogger
}

// NewModerationService creates a moderation service.
func NewModerationService(repo repository.PendingRecipeRepository, guard *auth.Guard, observer ModerationObserver, log logrus.FieldLogger) ModerationService {
	return &moderationService{
		repo:     repo,
		guard:    guard,
		observer: observer,
		tracer:   otel.Tracer("rezeptapp/internal/service"),
		log:      log.WithField("service", "moderation"),
	}
}

func (s *moderationService) Submit(ctx context.Context, actor *auth.Session, in Submission) (*model.PendingRecipe, error) {
	if err := s.guard.Authorize(actor, auth.Request{Capability: auth.CapAuthenticated}); err != nil {
		return nil, err
	}

	entry := &model.PendingRecipe{
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		Ingredients:  in.Ingredients,
		Instructions: in.Instructions,
		ImageURL:     nonEmpty(in.ImageURL),
		Category:     strings.TrimSpace(in.Category),
		Country:      strings.TrimSpace(in.Country),
		DishType:     nonEmpty(in.DishType),
		UserID:       actor.UserID,
		Status:       model.PendingStatusPending,
	}
	switch {
	case entry.Title == "":
		return nil, apperrors.Validation("title is required")
	case entry.Country == "":
		return nil, apperrors.Validation("country is required")
	case strings.TrimSpace(entry.Ingredients) == "":
		return nil, apperrors.Validation("ingredients are required")
	case strings.TrimSpace(entry.Instructions) == "":
		return nil, apperrors.Validation("instructions are required")
	}
	if entry.Category == "" {
		entry.Category = model.DefaultCategory
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("create pending recipe: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"pending_id": entry.ID,
		"user_id":    actor.UserID,
		"country":    entry.Country,
	}).Info("recipe submitted for moderation")
	return entry, nil
}

func (s *moderationService) ListPending(ctx context.Context, actor *auth.Session) ([]model.PendingRecipe, error) {
	if err := s.guard.Authorize(actor, auth.Request{Capability: auth.CapAdminOnly}); err != nil {
		return nil, err
	}
	entries, err := s.repo.ListByStatus(ctx, model.PendingStatusPending)
	if err != nil {
		return nil, fmt.Errorf("list pending recipes: %w", err)
	}
	return entries, nil
}

func (s *moderationService) CountPending(ctx context.Context) (int64, error) {
	return s.repo.CountByStatus(ctx, model.PendingStatusPending)
}

func (s *moderationService) Decide(ctx context.Context, actor *auth.Session, id uint, action string) (decision *Decision, err error) {
	ctx, span := s.tracer.Start(ctx, "moderation.decide", trace.WithAttributes(
		attribute.Int64("pending.id", int64(id)),
		attribute.String("moderation.action", action),
	))
	defer func() {
		s.record(action, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if err := s.guard.Authorize(actor, auth.Request{Capability: auth.CapAdminOnly}); err != nil {
		return nil, err
	}

	var target model.PendingStatus
	switch action {
	case ActionApprove:
		target = model.PendingStatusApproved
	case ActionReject:
		target = model.PendingStatusRejected
	default:
		return nil, apperrors.ErrInvalidAction
	}

	decision = &Decision{}
	err = s.repo.WithTransaction(ctx, func(ctx context.Context, pending repository.PendingRecipeRepository, recipes repository.RecipeRepository) error {
		entry, err := pending.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrPendingRecipeNotFound
			}
			return fmt.Errorf("load pending recipe: %w", err)
		}
		if entry.Status.Terminal() {
			return apperrors.ErrAlreadyDecided
		}

		if target == model.PendingStatusApproved {
			recipe := entry.ToRecipe()
			if err := recipes.Create(ctx, recipe); err != nil {
				return fmt.Errorf("publish recipe: %w", err)
			}
			decision.Recipe = recipe
		}

		updated, err := pending.UpdateStatusIfPending(ctx, id, target)
		if err != nil {
			return fmt.Errorf("update pending status: %w", err)
		}
		if !updated {
			return apperrors.ErrAlreadyDecided
		}
		entry.Status = target
		decision.Entry = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	if target == model.PendingStatusApproved {
		decision.Message = "recipe approved and added to collection"
	} else {
		decision.Message = "recipe rejected"
	}
	fields := logrus.Fields{
		"pending_id": id,
		"actor_id":   actor.UserID,
		"status":     target,
	}
	if decision.Recipe != nil {
		fields["recipe_id"] = decision.Recipe.ID
	}
	s.log.WithFields(fields).Info("moderation decision")
	return decision, nil
}

func (s *moderationService) record(action string, err error) {
	if s.observer == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = string(apperrors.KindOf(err))
	}
	if action != ActionApprove && action != ActionReject {
		action = "invalid"
	}
	s.observer.ObserveModeration(action, outcome)
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
