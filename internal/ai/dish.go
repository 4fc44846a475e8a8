package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lhjing/workdash/internal/core/kv"
	"github.com/lhjing/workdash/internal/core/logging"
	"github.com/lhjing/workdash/internal/core/model"
	"github.com/lhjing/workdash/internal/core/timerange"
	"github.com/lhjing/workdash/internal/data/stores"
)

// dishCacheNamespace scopes cached dish details. The cache key includes the
// ISO year-week, so entries go stale with the menu they describe; the TTL
// lets the store sweep them out once the week is well past.
const (
	dishCacheNamespace = "dishDetailsCache"
	dishCacheTTL       = 14 * 24 * time.Hour
)

// DishDetail is the generated description of one canteen dish.
type DishDetail struct {
	DishName       string   `json:"dishName"`
	Intro          string   `json:"intro"`
	Ingredients    []string `json:"ingredients"`
	CookingMethods []string `json:"cookingMethods"`
	CookingSteps   []string `json:"cookingSteps"`
	ImageURLs      []string `json:"imageUrls"`
	Timestamp      int64    `json:"timestamp"`
	// Degraded marks a placeholder produced after a generation failure,
	// so the UI can offer a retry instead of caching garbage forever.
	Degraded bool   `json:"degraded,omitempty"`
	Error    string `json:"error,omitempty"`
}

// valid checks the completion honored the strict-JSON contract.
func (d *DishDetail) valid() bool {
	return d.DishName != "" && d.Intro != "" &&
		len(d.Ingredients) > 0 && len(d.CookingMethods) > 0 && len(d.CookingSteps) > 0
}

// DishService generates and caches dish details.
type DishService struct {
	client Completer
	images *ImageSearcher
	cache  *kv.TypedKV[DishDetail]
	now    func() time.Time
	log    zerolog.Logger
}

// NewDishService wires the completion client, the image searcher, and the
// week-scoped cache. The clock is injectable for tests.
func NewDishService(client Completer, images *ImageSearcher, store kv.KV, now func() time.Time) *DishService {
	if now == nil {
		now = time.Now
	}
	return &DishService{
		client: client,
		images: images,
		cache:  kv.Scoped[DishDetail](store, dishCacheNamespace),
		now:    now,
		log:    logging.Component("dish"),
	}
}

func (s *DishService) cacheKey(dishName string) string {
	return timerange.WeekKey(s.now()) + ":" + dishName
}

// Detail returns the cached-or-generated detail for a dish. Degraded cache
// entries are regenerated rather than served.
func (s *DishService) Detail(ctx context.Context, dishName string, meal model.MealPeriod) (*DishDetail, error) {
	key := s.cacheKey(dishName)

	cached, err := s.cache.Get(ctx, key)
	if err == nil && !cached.Degraded {
		s.log.Debug().Str("dish", dishName).Msg("dish detail cache hit")
		return &cached, nil
	}
	if err != nil && !stores.IsNotFoundError(err) {
		return nil, err
	}

	detail := s.generate(ctx, dishName, meal)

	if err := s.cache.SetTTL(ctx, key, *detail, dishCacheTTL); err != nil {
		return nil, fmt.Errorf("cache dish detail: %w", err)
	}
	return detail, nil
}

// generate runs the completion and image search. Any failure yields a
// degraded placeholder instead of an error: the dish card renders either
// way.
func (s *DishService) generate(ctx context.Context, dishName string, meal model.MealPeriod) *DishDetail {
	detail, err := s.analyze(ctx, dishName, meal)
	if err != nil {
		s.log.Warn().Err(err).Str("dish", dishName).Msg("dish analysis failed, returning degraded record")
		return &DishDetail{
			DishName:       dishName,
			Intro:          "暂无介绍",
			Ingredients:    []string{},
			CookingMethods: []string{},
			CookingSteps:   []string{},
			Timestamp:      s.now().UnixMilli(),
			Degraded:       true,
			Error:          err.Error(),
		}
	}

	detail.ImageURLs = s.images.Search(ctx, dishName)
	detail.Timestamp = s.now().UnixMilli()
	return detail
}

func (s *DishService) analyze(ctx context.Context, dishName string, meal model.MealPeriod) (*DishDetail, error) {
	text, err := s.client.Complete(ctx, dishSystemPrompt, buildDishPrompt(dishName, meal))
	if err != nil {
		return nil, err
	}

	raw := ExtractJSON(text)
	if raw == "" {
		return nil, fmt.Errorf("completion text contains no JSON")
	}

	var detail DishDetail
	if err := json.Unmarshal([]byte(raw), &detail); err != nil {
		return nil, fmt.Errorf("decode dish detail: %w", err)
	}
	if !detail.valid() {
		return nil, fmt.Errorf("dish detail incomplete")
	}

	return &detail, nil
}
