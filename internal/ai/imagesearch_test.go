package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lhjing/workdash/internal/core/config"
)

func TestImageSearch_Unconfigured(t *testing.T) {
	s := NewImageSearcher(config.ImageSearchConfig{})
	assert.Nil(t, s.Search(context.Background(), "地瓜粥"))
}

func TestImageSearch_CapsAtThreeResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "bing_images", r.URL.Query().Get("engine"))
		assert.Contains(t, r.URL.Query().Get("q"), "地瓜粥")
		_, _ = w.Write([]byte(`{"images_results":[
			{"original":"https://img.example.com/1.jpg"},
			{"thumbnail":"https://img.example.com/2-thumb.jpg"},
			{"original":"https://img.example.com/3.jpg"},
			{"original":"https://img.example.com/4.jpg"}
		]}`))
	}))
	t.Cleanup(srv.Close)

	s := NewImageSearcher(config.ImageSearchConfig{APIKey: "k", Engine: "bing"})
	s.endpoint = srv.URL

	urls := s.Search(context.Background(), "地瓜粥")
	assert.Equal(t, []string{
		"https://img.example.com/1.jpg",
		"https://img.example.com/2-thumb.jpg",
		"https://img.example.com/3.jpg",
	}, urls)
}

func TestImageSearch_FailureIsSoft(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	s := NewImageSearcher(config.ImageSearchConfig{APIKey: "k"})
	s.endpoint = srv.URL

	assert.Nil(t, s.Search(context.Background(), "地瓜粥"))
}

func TestImageSearch_GoogleEngineParam(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "google_images", r.URL.Query().Get("engine"))
		_, _ = w.Write([]byte(`{"images_results":[]}`))
	}))
	t.Cleanup(srv.Close)

	s := NewImageSearcher(config.ImageSearchConfig{APIKey: "k", Engine: "google"})
	s.endpoint = srv.URL

	assert.Empty(t, s.Search(context.Background(), "炒面"))
}
