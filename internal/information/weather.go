package information

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultWeatherURL = "https://api.openweathermap.org/data/2.5/weather"

// WeatherClient reads current conditions from OpenWeatherMap.
type WeatherClient struct {
	apiKey  string
	city    string
	baseURL string
	http    *http.Client
}

func NewWeatherClient(apiKey, city string) *WeatherClient {
	return &WeatherClient{
		apiKey:  apiKey,
		city:    city,
		baseURL: defaultWeatherURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// WithBaseURL points the client at a different endpoint. Used in tests.
func (c *WeatherClient) WithBaseURL(u string) *WeatherClient {
	c.baseURL = u
	return c
}

type weatherResponse struct {
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Name string `json:"name"`
}

// Current returns a spoken-friendly summary of the configured city's weather.
func (c *WeatherClient) Current(ctx context.Context) (string, error) {
	q := url.Values{}
	q.Set("q", c.city)
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")
	q.Set("lang", "ru")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("weather request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("weather request: status %d", resp.StatusCode)
	}

	var body weatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("weather response: %w", err)
	}

	description := "без осадков"
	if len(body.Weather) > 0 {
		description = body.Weather[0].Description
	}
	return fmt.Sprintf("В городе %s сейчас %s, температура %.0f градусов, ощущается как %.0f",
		body.Name, description, body.Main.Temp, body.Main.FeelsLike), nil
}
