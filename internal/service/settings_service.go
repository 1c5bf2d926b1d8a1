package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"rezeptapp/internal/auth"
	"rezeptapp/internal/model"
	"rezeptapp/internal/repository"
)

// SettingsView is the admin-facing representation of AppSettings. The
// credential itself is never returned.
type SettingsView struct {
	OpenAIAPIKeyConfigured bool   `json:"openaiApiKeyConfigured"`
	OpenAIAPIKeyHint       string `json:"openaiApiKeyHint,omitempty"`
}

// SettingsUpdate changes AppSettings. Nil fields are left untouched.
type SettingsUpdate struct {
	OpenAIAPIKey *string
}

// SettingsService exposes the typed application settings.
type SettingsService interface {
	// Load reads AppSettings for server-side use.
	Load(ctx context.Context) (*model.AppSettings, error)
	View(ctx context.Context, actor *auth.Session) (*SettingsView, error)
	Update(ctx context.Context, actor *auth.Session, in SettingsUpdate) (*SettingsView, error)
}

type settingsService struct {
	repo  repository.SettingRepository
	guard *auth.Guard
	log   logrus.FieldLogger
}

// NewSettingsService creates a settings service.
func NewSettingsService(repo repository.SettingRepository, guard *auth.Guard, log logrus.FieldLogger) SettingsService {
	return &settingsService{repo: repo, guard: guard, log: log.WithField("service", "settings")}
}

func (s *settingsService) Load(ctx context.Context) (*model.AppSettings, error) {
	rows, err := s.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	settings := &model.AppSettings{}
	for _, row := range rows {
		switch row.Key {
		case model.SettingKeyOpenAIAPIKey:
			settings.OpenAIAPIKey = strings.TrimSpace(row.Value)
		}
	}
	return settings, nil
}

func (s *settingsService) View(ctx context.Context, actor *auth.Session) (*SettingsView, error) {
	if err := s.guard.Authorize(actor, auth.Request{Capability: auth.CapAdminOnly}); err != nil {
		return nil, err
	}
	settings, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return viewOf(settings), nil
}

func (s *settingsService) Update(ctx context.Context, actor *auth.Session, in SettingsUpdate) (*SettingsView, error) {
	if err := s.guard.Authorize(actor, auth.Request{Capability: auth.CapAdminOnly}); err != nil {
		return nil, err
	}
	if in.OpenAIAPIKey != nil {
		if err := s.repo.Upsert(ctx, model.SettingKeyOpenAIAPIKey, strings.TrimSpace(*in.OpenAIAPIKey)); err != nil {
			return nil, fmt.Errorf("save setting: %w", err)
		}
		s.log.WithFields(logrus.Fields{
			"actor_id": actor.UserID,
			"key":      model.SettingKeyOpenAIAPIKey,
		}).Info("setting updated")
	}
	return s.View(ctx, actor)
}

func viewOf(settings *model.AppSettings) *SettingsView {
	view := &SettingsView{OpenAIAPIKeyConfigured: settings.OpenAIAPIKey != ""}
	if key := settings.OpenAIAPIKey; len(key) > 8 {
		view.OpenAIAPIKeyHint = key[:3] + "…" + key[len(key)-4:]
	}
	return view
}
