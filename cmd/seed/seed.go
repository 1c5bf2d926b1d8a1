package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"rezeptapp/internal/ai"
	"rezeptapp/internal/service"
)

const maxSeedBody = 16 << 20

// seedCategories creates every name, treating duplicates as already seeded.
func seedCategories(ctx context.Context, svc service.CategoryService, names []string) (created, skipped int, err error) {
	for _, name := range names {
		if _, err := svc.Create(ctx, name); err != nil {
			if isConflict(err) {
				skipped++
				continue
			}
			return created, skipped, fmt.Errorf("create category %q: %w", name, err)
		}
		created++
	}
	return created, skipped, nil
}

// fetchRecipes downloads a JSON array of recipe objects.
func fetchRecipes(ctx context.Context, client *http.Client, url string) ([]service.RecipeInput, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch recipes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recipe source returned status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSeedBody))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return parseRecipes(body)
}

func parseRecipes(body []byte) ([]service.RecipeInput, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("recipe source returned invalid JSON")
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsArray() {
		return nil, fmt.Errorf("recipe source must return a JSON array")
	}

	items := doc.Array()
	out := make([]service.RecipeInput, 0, len(items))
	for _, item := range items {
		in := service.RecipeInput{
			Title:        item.Get("title").String(),
			Description:  item.Get("description").String(),
			Ingredients:  ai.TextBlock(item.Get("ingredients")),
			Instructions: ai.TextBlock(item.Get("instructions")),
			Category:     item.Get("category").String(),
		}
		if img := item.Get("imageUrl"); img.Exists() && img.String() != "" {
			s := img.String()
			in.ImageURL = &s
		}
		out = append(out, in)
	}
	return out, nil
}

// seedRecipes creates each recipe. Invalid entries are logged and skipped.
func seedRecipes(ctx context.Context, svc service.RecipeService, inputs []service.RecipeInput, log logrus.FieldLogger) (created, skipped int) {
	for i, in := range inputs {
		if _, err := svc.Create(ctx, in); err != nil {
			log.WithError(err).WithField("index", i).Warn("skipping recipe")
			skipped++
			continue
		}
		created++
	}
	return created, skipped
}
