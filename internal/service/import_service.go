package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	apperrors "rezeptapp/internal/errors"
	"rezeptapp/internal/scraper"
)

// ImportService imports recipes from an external recipe site.
type ImportService interface {
	Import(ctx context.Context, url string) (*scraper.ImportedRecipe, error)
}

type importService struct {
	importer scraper.Importer
	log      logrus.FieldLogger
}

// NewImportService creates an import service.
func NewImportService(importer scraper.Importer, log logrus.FieldLogger) ImportService {
	return &importService{importer: importer, log: log.WithField("service", "import")}
}

func (s *importService) Import(ctx context.Context, url string) (*scraper.ImportedRecipe, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, apperrors.Validation("url is required")
	}
	recipe, err := s.importer.Import(ctx, url)
	if err != nil {
		s.log.WithError(err).WithField("url", url).Warn("recipe import failed")
		return nil, err
	}
	return recipe, nil
}
