package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	DefaultNewsLimit = 13
	maxNewsLimit     = 100
	defaultNewsQuery = `tecnologia OR "inteligência artificial" OR software`
	gnewsBaseURL     = "https://gnews.io/api/v4/search"
)

type Article struct {
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Image    string `json:"image"`
	URL      string `json:"url"`
	Source   string `json:"source"`
	Date     string `json:"date"`
	Author   string `json:"author"`
	ReadTime string `json:"readTime"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Categories is the fixed set offered to clients.
var Categories = []Category{
	{ID: "all", Name: "Todas"},
	{ID: "tech", Name: "Tecnologia"},
	{ID: "ai", Name: "I.A."},
	{ID: "space", Name: "Espaço"},
}

// ArticleSource returns up to limit articles matching query.
type ArticleSource interface {
	Search(ctx context.Context, query string, limit int) ([]Article, error)
}

type NewsService struct {
	source ArticleSource // nil when no news provider is configured
}

func NewNewsService(source ArticleSource) *NewsService {
	return &NewsService{source: source}
}

func (s *NewsService) Configured() bool { return s.source != nil }

// Latest returns distinct-by-title articles, at most limit of them.
func (s *NewsService) Latest(ctx context.Context, search string, limit int) ([]Article, error) {
	if s.source == nil {
		return nil, fmt.Errorf("news: %w", ErrProviderNotConfigured)
	}

	limit = ClampNewsLimit(limit)
	query := search
	if query == "" {
		query = defaultNewsQuery
	}

	articles, err := s.source.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(articles))
	result := make([]Article, 0, len(articles))
	for _, a := range articles {
		if seen[a.Title] {
			continue
		}
		seen[a.Title] = true
		result = append(result, a)
		if len(result) == limit {
			break
		}
	}

	return result, nil
}

func ClampNewsLimit(limit int) int {
	if limit <= 0 {
		return DefaultNewsLimit
	}
	if limit > maxNewsLimit {
		return maxNewsLimit
	}
	return limit
}

type gnewsSource struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewGNewsSource queries the GNews search API for Portuguese-language Brazilian news.
func NewGNewsSource(apiKey string) ArticleSource {
	return &gnewsSource{
		apiKey:  apiKey,
		baseURL: gnewsBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type gnewsResponse struct {
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		Image       string `json:"image"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

func (g *gnewsSource) Search(ctx context.Context, query string, limit int) ([]Article, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("lang", "pt")
	params.Set("country", "br")
	params.Set("max", strconv.Itoa(limit))
	params.Set("apikey", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: gnews request: %v", ErrProviderUnavailable, err)
	}
	defer func() {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			slog.Error("failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: gnews returned status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	var body gnewsResponse
	err = json.NewDecoder(resp.Body).Decode(&body)
	if err != nil {
		return nil, fmt.Errorf("decode gnews response: %w", err)
	}

	articles := make([]Article, 0, len(body.Articles))
	for _, a := range body.Articles {
		// Cards need both an image and a summary
		if a.Image == "" || a.Description == "" {
			continue
		}
		source := a.Source.Name
		if source == "" {
			source = "GNews"
		}
		articles = append(articles, Article{
			Title:    a.Title,
			Summary:  a.Description,
			Image:    a.Image,
			URL:      a.URL,
			Source:   source,
			Date:     a.PublishedAt,
			Author:   source,
			ReadTime: readTime(a.Description),
		})
	}

	return articles, nil
}

// readTime estimates minutes at 250 characters per minute, at least one.
func readTime(text string) string {
	minutes := int(math.Ceil(float64(len([]rune(text))) / 250))
	if minutes < 1 {
		minutes = 1
	}
	return strconv.Itoa(minutes) + " min"
}
