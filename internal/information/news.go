package information

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultNewsURL = "https://newsapi.org/v2/top-headlines"

// NewsClient reads top headlines from NewsAPI.
type NewsClient struct {
	apiKey      string
	country     string
	maxArticles int
	baseURL     string
	http        *http.Client
}

func NewNewsClient(apiKey, country string, maxArticles int) *NewsClient {
	if maxArticles <= 0 {
		maxArticles = 3
	}
	return &NewsClient{
		apiKey:      apiKey,
		country:     country,
		maxArticles: maxArticles,
		baseURL:     defaultNewsURL,
		http:        &http.Client{Timeout: 10 * time.Second},
	}
}

// WithBaseURL points the client at a different endpoint. Used in tests.
func (c *NewsClient) WithBaseURL(u string) *NewsClient {
	c.baseURL = u
	return c
}

type newsResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Title string `json:"title"`
	} `json:"articles"`
}

// Headlines returns up to maxArticles top headlines joined for speech.
func (c *NewsClient) Headlines(ctx context.Context) (string, error) {
	q := url.Values{}
	q.Set("country", c.country)
	q.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("news request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("news request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("news request: status %d", resp.StatusCode)
	}

	var body newsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("news response: %w", err)
	}
	if body.Status != "ok" {
		return "", fmt.Errorf("news response: status %q", body.Status)
	}
	if len(body.Articles) == 0 {
		return "Свежих новостей нет", nil
	}

	titles := make([]string, 0, c.maxArticles)
	for i, a := range body.Articles {
		if i >= c.maxArticles {
			break
		}
		titles = append(titles, a.Title)
	}
	return "Главные новости: " + strings.Join(titles, ". "), nil
}
