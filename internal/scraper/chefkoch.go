// Package scraper imports recipes from a supported recipe website.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	apperrors "rezeptapp/internal/errors"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

var whitespace = regexp.MustCompile(`\s+`)

// ImportedRecipe holds the structured fields scraped from a recipe page.
type ImportedRecipe struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Ingredients  string `json:"ingredients"`
	Instructions string `json:"instructions"`
	ImageURL     string `json:"imageUrl"`
}

// Importer scrapes recipe pages.
type Importer interface {
	Import(ctx context.Context, rawURL string) (*ImportedRecipe, error)
}

// Chefkoch scrapes pages of a single allowed host.
type Chefkoch struct {
	allowedHost string
	http        *http.Client
}

// NewChefkoch creates an importer accepting URLs on allowedHost or its subdomains.
func NewChefkoch(allowedHost string, client *http.Client) *Chefkoch {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Chefkoch{allowedHost: strings.ToLower(allowedHost), http: client}
}

// Ensure Chefkoch implements Importer
var _ Importer = (*Chefkoch)(nil)

// Allowed reports whether rawURL points at the allowed host over http(s).
func (s *Chefkoch) Allowed(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == s.allowedHost || strings.HasSuffix(host, "."+s.allowedHost)
}

// Import fetches and parses rawURL.
func (s *Chefkoch) Import(ctx context.Context, rawURL string) (*ImportedRecipe, error) {
	if !s.Allowed(rawURL) {
		return nil, apperrors.Validation(fmt.Sprintf("please provide a valid %s URL", s.allowedHost))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSpace(rawURL), nil)
	if err != nil {
		return nil, apperrors.Validation("invalid URL")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, apperrors.Upstream("recipe page unreachable", "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Upstream(fmt.Sprintf("recipe page returned status %d", resp.StatusCode), "", nil)
	}
	return Parse(resp.Body)
}

// Parse extracts a recipe from page HTML.
func Parse(r io.Reader) (*ImportedRecipe, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, apperrors.Upstream("recipe page could not be parsed", "", err)
	}

	recipe := &ImportedRecipe{
		Title:       strings.TrimSpace(doc.Find("h1").First().Text()),
		Description: strings.TrimSpace(doc.Find("p.recipe-text").Text()),
	}
	recipe.ImageURL, _ = doc.Find(`meta[property="og:image"]`).Attr("content")

	var ingredients []string
	doc.Find(".ingredients tr").Each(func(_ int, row *goquery.Selection) {
		amount := collapse(row.Find("td.td-left span").Text())
		name := collapse(row.Find("td.td-right span").Text())
		if name == "" {
			return
		}
		if amount != "" {
			ingredients = append(ingredients, amount+" "+name)
			return
		}
		ingredients = append(ingredients, name)
	})
	recipe.Ingredients = strings.Join(ingredients, "\n")

	if steps := doc.Find(".ds-recipe-steps").First(); steps.Length() > 0 {
		recipe.Instructions = collapse(steps.Text())
	} else {
		doc.Find("h2").Each(func(_ int, h *goquery.Selection) {
			if strings.Contains(strings.TrimSpace(h.Text()), "Zubereitung") {
				recipe.Instructions = collapse(h.Next().Text())
			}
		})
	}

	if recipe.Title == "" {
		return nil, apperrors.Upstream("recipe could not be loaded", "", nil)
	}
	return recipe, nil
}

func collapse(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
