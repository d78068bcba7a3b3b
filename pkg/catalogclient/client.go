// Package catalogclient реализует Go-клиент сервиса каталога: запросы
// страниц выдачи, работу с сохранёнными выборками фильтров и пейджер
// поверх курсорной пагинации.
package catalogclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// Endpoint — адрес одной из разновидностей списка каталога.
type Endpoint string

const (
	// EndpointModels — общий список: модели вместе с приложениями.
	EndpointModels Endpoint = "/api/v1/catalog/models"
	// EndpointApps — только приложения.
	EndpointApps Endpoint = "/api/v1/catalog/apps"
	// EndpointModelsOnly — только модели, без приложений.
	EndpointModelsOnly Endpoint = "/api/v1/catalog/models-only"
)

// Item представляет карточку каталога в ответе сервера.
type Item struct {
	ID             int       `json:"id"`
	Name           string    `json:"name"`
	ItemType       string    `json:"itemType"`
	Username       string    `json:"username"`
	UserID         int       `json:"userId"`
	Rating         float64   `json:"rating"`
	DownloadCount  int       `json:"downloadCount"`
	LikeCount      int       `json:"likeCount"`
	CommentCount   int       `json:"commentCount"`
	UsedCount      int       `json:"usedCount"`
	Tags           []string  `json:"tags,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	LastActivityAt time.Time `json:"lastActivityAt"`
}

// Page представляет одну страницу выдачи. NextCursor отсутствует на
// последней странице, PrevCursor — на первой.
type Page struct {
	Items      []Item `json:"items"`
	NextCursor *int   `json:"nextCursor,omitempty"`
	PrevCursor *int   `json:"prevCursor,omitempty"`
}

// envelope — стандартный конверт ответа сервера.
type envelope struct {
	Status string          `json:"status"`
	Error  string          `json:"error,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Client — HTTP-клиент сервиса каталога.
//
// Одинаковые конкурентные GET-запросы склеиваются в один (singleflight);
// запросы пейджера обходят склейку, чтобы каждая загрузка страницы
// уходила на сервер независимо.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	token      string
	group      singleflight.Group
}

// Option настраивает Client при создании.
type Option func(*Client)

// WithHTTPClient задаёт собственный http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout задаёт таймаут HTTP-запросов.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if c.httpClient == nil {
			c.httpClient = &http.Client{}
		}
		c.httpClient.Timeout = timeout
	}
}

// WithToken задаёт bearer-токен для персональных фильтров
// и операций с выборками.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// New создаёт клиент сервиса каталога.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Scheme == "" {
		parsed.Scheme = "http"
	}
	client := &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// ListPage загружает одну страницу выдачи endpoint с фильтром filter.
// Отрицательный limit означает размер страницы по умолчанию на сервере.
// Запрос не участвует в склейке одинаковых GET.
func (c *Client) ListPage(ctx context.Context, endpoint Endpoint, filter url.Values, cursor, limit int) (*Page, error) {
	query := url.Values{}
	for key, vals := range filter {
		for _, v := range vals {
			query.Add(key, v)
		}
	}
	if cursor > 0 {
		query.Set("cursor", fmt.Sprintf("%d", cursor))
	}
	if limit > 0 {
		query.Set("limit", fmt.Sprintf("%d", limit))
	}

	rawURL := c.resolve(string(endpoint), query)
	data, err := c.get(ctx, rawURL, false)
	if err != nil {
		return nil, err
	}
	var page Page
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}
	return &page, nil
}

// FilterSelection возвращает сохранённую выборку фильтров раздела section.
// Одинаковые конкурентные чтения склеиваются в один запрос.
func (c *Client) FilterSelection(ctx context.Context, section string) (map[string]string, error) {
	rawURL := c.resolve("/api/v1/catalog/filters/"+url.PathEscape(section), nil)
	data, err := c.get(ctx, rawURL, true)
	if err != nil {
		return nil, err
	}
	var out struct {
		Selection map[string]string `json:"selection"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode selection: %w", err)
	}
	return out.Selection, nil
}

// SaveFilterSelection сохраняет выборку фильтров раздела section.
func (c *Client) SaveFilterSelection(ctx context.Context, section string, selection map[string]string) error {
	rawURL := c.resolve("/api/v1/catalog/filters/"+url.PathEscape(section), nil)
	raw, err := json.Marshal(selection)
	if err != nil {
		return fmt.Errorf("marshal selection: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, rawURL, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	_, err = c.do(req)
	return err
}

// resolve строит абсолютный URL запроса относительно базового.
func (c *Client) resolve(endpoint string, query url.Values) string {
	resolved := *c.baseURL
	basePath := strings.TrimSuffix(c.baseURL.Path, "/")
	resolved.Path = path.Clean(basePath + endpoint)
	if len(query) > 0 {
		resolved.RawQuery = query.Encode()
	}
	return resolved.String()
}

// get выполняет GET и возвращает поле data конверта ответа.
// При coalesce одинаковые конкурентные URL уходят одним запросом.
func (c *Client) get(ctx context.Context, rawURL string, coalesce bool) ([]byte, error) {
	fetch := func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		return c.do(req)
	}
	if !coalesce {
		return fetch()
	}
	data, err, _ := c.group.Do(rawURL, func() (any, error) {
		return fetch()
	})
	if err != nil {
		return nil, err
	}
	return data.([]byte), nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog api request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if len(body) > 0 {
		_ = json.Unmarshal(body, &env)
	}
	if resp.StatusCode >= 300 || env.Status == "Error" {
		msg := env.Error
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		return nil, fmt.Errorf("catalog api error: status=%d message=%s", resp.StatusCode, msg)
	}
	return env.Data, nil
}
