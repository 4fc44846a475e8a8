package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhjing/workdash/internal/core/config"
	"github.com/lhjing/workdash/internal/core/model"
	"github.com/lhjing/workdash/internal/data/db"
	"github.com/lhjing/workdash/internal/data/stores"
)

var dishTestNow = time.Date(2026, 8, 31, 12, 0, 0, 0, time.Local)

const validDishReply = "```json\n" + `{
  "dishName": "地瓜粥",
  "intro": "口感清淡软糯，富含膳食纤维，适合早餐暖胃。",
  "ingredients": ["地瓜", "大米", "水"],
  "cookingMethods": ["熬煮"],
  "cookingSteps": ["地瓜去皮切块", "与大米同煮", "小火熬至软糯"]
}` + "\n```"

func newDishService(t *testing.T, completer Completer) *DishService {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	store := stores.NewKVStore(database)
	images := NewImageSearcher(config.ImageSearchConfig{}) // unconfigured: no URLs
	return NewDishService(completer, images, store, func() time.Time { return dishTestNow })
}

func TestDishDetail_GenerateAndCache(t *testing.T) {
	stub := &stubCompleter{reply: validDishReply}
	svc := newDishService(t, stub)

	detail, err := svc.Detail(context.Background(), "地瓜粥", model.Breakfast)
	require.NoError(t, err)
	assert.Equal(t, "地瓜粥", detail.DishName)
	assert.False(t, detail.Degraded)
	assert.Equal(t, []string{"地瓜", "大米", "水"}, detail.Ingredients)
	assert.Empty(t, detail.ImageURLs, "unconfigured image search is a soft skip")

	// second call must come from the cache, not the completer
	stub.reply = ""
	stub.err = errors.New("completer must not be called again")

	cached, err := svc.Detail(context.Background(), "地瓜粥", model.Breakfast)
	require.NoError(t, err)
	assert.Equal(t, detail.DishName, cached.DishName)
	assert.Equal(t, detail.Intro, cached.Intro)
}

func TestDishDetail_DegradedOnFailure(t *testing.T) {
	stub := &stubCompleter{err: errors.New("upstream down")}
	svc := newDishService(t, stub)

	detail, err := svc.Detail(context.Background(), "宫保鸡丁", model.Lunch)
	require.NoError(t, err, "generation failure degrades, it does not error")
	assert.True(t, detail.Degraded)
	assert.Equal(t, "宫保鸡丁", detail.DishName)
	assert.Equal(t, "暂无介绍", detail.Intro)
	assert.NotEmpty(t, detail.Error)
}

func TestDishDetail_DegradedCacheEntryRegenerated(t *testing.T) {
	stub := &stubCompleter{err: errors.New("upstream down")}
	svc := newDishService(t, stub)

	first, err := svc.Detail(context.Background(), "炒面", model.Dinner)
	require.NoError(t, err)
	require.True(t, first.Degraded)

	// provider recovers; the degraded entry must not shadow a real one
	stub.err = nil
	stub.reply = "```json\n" + `{
  "dishName": "炒面",
  "intro": "镬气十足的家常主食，碳水与蛋白质均衡。",
  "ingredients": ["面条", "鸡蛋", "青菜"],
  "cookingMethods": ["爆炒"],
  "cookingSteps": ["面条煮至八分熟", "热油炒蛋", "下面条大火翻炒"]
}` + "\n```"

	second, err := svc.Detail(context.Background(), "炒面", model.Dinner)
	require.NoError(t, err)
	assert.False(t, second.Degraded)
	assert.Equal(t, "炒面", second.DishName)
}

func TestDishDetail_IncompletePayloadDegrades(t *testing.T) {
	stub := &stubCompleter{reply: `{"dishName":"汤","intro":"好喝"}`}
	svc := newDishService(t, stub)

	detail, err := svc.Detail(context.Background(), "汤", model.Dinner)
	require.NoError(t, err)
	assert.True(t, detail.Degraded, "missing array fields fail validation")
}
