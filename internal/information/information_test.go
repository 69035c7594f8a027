package information

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeatherCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Moscow", r.URL.Query().Get("q"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "ru", r.URL.Query().Get("lang"))
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		w.Write([]byte(`{
			"weather": [{"description": "пасмурно"}],
			"main": {"temp": 7.4, "feels_like": 4.8, "humidity": 82},
			"name": "Москва"
		}`))
	}))
	defer srv.Close()

	c := NewWeatherClient("test-key", "Moscow").WithBaseURL(srv.URL)
	got, err := c.Current(context.Background())
	require.NoError(t, err)
	assert.Contains(t, got, "Москва")
	assert.Contains(t, got, "пасмурно")
	assert.Contains(t, got, "7 градусов")
}

func TestWeatherServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewWeatherClient("bad-key", "Moscow").WithBaseURL(srv.URL)
	_, err := c.Current(context.Background())
	assert.Error(t, err)
}

func TestNewsHeadlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ru", r.URL.Query().Get("country"))
		w.Write([]byte(`{
			"status": "ok",
			"articles": [
				{"title": "Первая новость"},
				{"title": "Вторая новость"},
				{"title": "Третья новость"},
				{"title": "Четвёртая новость"}
			]
		}`))
	}))
	defer srv.Close()

	c := NewNewsClient("test-key", "ru", 3).WithBaseURL(srv.URL)
	got, err := c.Headlines(context.Background())
	require.NoError(t, err)
	assert.Contains(t, got, "Первая новость")
	assert.Contains(t, got, "Третья новость")
	assert.NotContains(t, got, "Четвёртая новость")
}

func TestNewsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ok", "articles": []}`))
	}))
	defer srv.Close()

	c := NewNewsClient("test-key", "ru", 3).WithBaseURL(srv.URL)
	got, err := c.Headlines(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Свежих новостей нет", got)
}
