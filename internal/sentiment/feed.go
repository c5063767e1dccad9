package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"CoinPilot/internal/ratelimit"
)

// maxArticles bounds how many of the most recent articles feed one score.
const maxArticles = 10

// Feed supplies a normalized per-asset sentiment score for the current cycle.
// A score of 0 means no data; feed failures are reported as 0, not errors.
type Feed interface {
	GetSentiment(ctx context.Context, asset string) float64
}

// GNewsFeed scores recent news from the GNews search API.
type GNewsFeed struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
	Scorer  Scorer
	Limiter *ratelimit.Bucket
}

type gnewsResponse struct {
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"articles"`
	Errors []string `json:"errors"`
}

// NewGNewsFeed creates a feed using the given scorer, metered by the
// sentiment-class rate bucket.
func NewGNewsFeed(apiKey string, scorer Scorer, limiter *ratelimit.Bucket) *GNewsFeed {
	return &GNewsFeed{
		APIKey:  apiKey,
		BaseURL: "https://gnews.io/api/v4",
		Client:  &http.Client{Timeout: 15 * time.Second},
		Scorer:  scorer,
		Limiter: limiter,
	}
}

// GetSentiment fetches up to the 10 most recent articles mentioning the asset
// and averages their scores. Any failure yields 0.
func (f *GNewsFeed) GetSentiment(ctx context.Context, asset string) float64 {
	if err := f.Limiter.Wait(ctx); err != nil {
		log.Printf("[WARN] sentiment rate wait aborted for %s: %v", asset, err)
		return 0
	}

	u := fmt.Sprintf("%s/search?q=%s&token=%s&lang=en", f.BaseURL, url.QueryEscape(asset), url.QueryEscape(f.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		log.Printf("[ERROR] build news request for %s: %v", asset, err)
		return 0
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		log.Printf("[ERROR] fetch news for %s: %v", asset, err)
		return 0
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("[ERROR] read news body for %s: %v", asset, err)
		return 0
	}

	var news gnewsResponse
	if err := json.Unmarshal(body, &news); err != nil {
		log.Printf("[ERROR] decode news for %s: %v", asset, err)
		return 0
	}
	if len(news.Articles) == 0 {
		if len(news.Errors) > 0 {
			log.Printf("[ERROR] news feed error for %s: %v", asset, news.Errors)
		}
		return 0
	}

	articles := news.Articles
	if len(articles) > maxArticles {
		articles = articles[:maxArticles]
	}
	var sum float64
	for _, a := range articles {
		sum += f.Scorer.Score(a.Title + " " + a.Description)
	}
	avg := sum / float64(len(articles))
	log.Printf("[INFO] sentiment for %s: %.4f (%d articles, %s scorer)", asset, avg, len(articles), f.Scorer.Name())
	return avg
}

// StaticFeed returns fixed scores, for tests and dry runs.
type StaticFeed struct {
	Scores map[string]float64
}

func (s *StaticFeed) GetSentiment(_ context.Context, asset string) float64 {
	return s.Scores[asset]
}
