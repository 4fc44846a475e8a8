package ai

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/lhjing/workdash/internal/core/config"
	"github.com/lhjing/workdash/internal/core/logging"
)

const (
	serpAPIEndpoint = "https://serpapi.com/search"

	// maxImageResults caps how many URLs a dish detail carries.
	maxImageResults = 3
)

// ImageSearcher finds dish photos via SerpAPI. A missing API key makes
// every search a silent no-op: images are decoration, never a hard
// requirement.
type ImageSearcher struct {
	cfg      config.ImageSearchConfig
	endpoint string
	http     *http.Client
	log      zerolog.Logger
}

// NewImageSearcher creates an ImageSearcher from configuration.
func NewImageSearcher(cfg config.ImageSearchConfig) *ImageSearcher {
	return &ImageSearcher{
		cfg:      cfg,
		endpoint: serpAPIEndpoint,
		http:     &http.Client{Timeout: 15 * time.Second},
		log:      logging.Component("imagesearch"),
	}
}

// Search returns up to three image URLs for a dish. Unconfigured or failed
// searches return no URLs and no error.
func (s *ImageSearcher) Search(ctx context.Context, dishName string) []string {
	if s.cfg.APIKey == "" {
		s.log.Warn().Msg("image search not configured, skipping")
		return nil
	}

	engine := "bing_images"
	if s.cfg.Engine == "google" {
		engine = "google_images"
	}

	params := url.Values{}
	params.Set("engine", engine)
	params.Set("q", dishName+" 菜肴 美食")
	params.Set("api_key", s.cfg.APIKey)

	urls, err := s.search(ctx, s.endpoint+"?"+params.Encode())
	if err != nil {
		s.log.Warn().Err(err).Str("dish", dishName).Msg("image search failed")
		return nil
	}
	return urls
}

func (s *ImageSearcher) search(ctx context.Context, searchURL string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serpapi status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var urls []string
	for _, result := range gjson.GetBytes(body, "images_results").Array() {
		link := result.Get("original").String()
		if link == "" {
			link = result.Get("thumbnail").String()
		}
		if link == "" {
			continue
		}
		urls = append(urls, link)
		if len(urls) == maxImageResults {
			break
		}
	}
	return urls, nil
}
