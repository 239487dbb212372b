package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// CookieName — имя сессионной cookie сервера.
const CookieName = "auth_token"

// ErrUnauthorized — сервер не принял сессию или учётные данные.
var ErrUnauthorized = errors.New("unauthorized")

// StatusError — ответ сервера с неожиданным кодом.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Body)
}

// CSRFHeader — заголовок с CSRF-токеном для изменяющих запросов.
const CSRFHeader = "X-CSRF-Token"

// Client — HTTP-клиент API MyPass. Token передаётся как auth cookie.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client

	// CSRF-токен и cookie запрашиваются один раз перед первым изменяющим запросом.
	csrfFetched bool
	csrfToken   string
	csrfCookies []*http.Cookie
}

func New(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

type Field struct {
	Key        string `json:"key"`
	Value      string `json:"value"`
	Unreadable bool   `json:"unreadable,omitempty"`
}

type Item struct {
	ID        int64   `json:"id"`
	Type      string  `json:"type"`
	TypeTitle string  `json:"type_title"`
	Name      string  `json:"name"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
	Fields    []Field `json:"fields"`
}

type NewItem struct {
	Type   string  `json:"type"`
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

type RecoverResult struct {
	Outcome   string `json:"outcome"`
	Token     string `json:"reset_token,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

// do отправляет JSON-запрос и декодирует ответ в out (если out != nil).
func (c *Client) do(ctx context.Context, method, path string, payload, out any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.AddCookie(&http.Cookie{Name: CookieName, Value: c.Token})
	}
	if !isSafeMethod(method) {
		if err := c.ensureCSRF(ctx); err != nil {
			return nil, err
		}
		if c.csrfToken != "" {
			req.Header.Set(CSRFHeader, c.csrfToken)
			req.Header.Set("Origin", c.origin())
			for _, ck := range c.csrfCookies {
				req.AddCookie(ck)
			}
		}
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return resp, ErrUnauthorized
	case resp.StatusCode >= 300:
		return resp, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp, nil
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

// origin — схема и хост BaseURL; сервер сверяет Origin со своим адресом.
func (c *Client) origin() string {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return c.BaseURL
	}
	return u.Scheme + "://" + u.Host
}

// ensureCSRF получает токен через GET /api/csrf. Пустой токен или ответ не 2xx
// означают, что защита на сервере выключена.
func (c *Client) ensureCSRF(ctx context.Context) error {
	if c.csrfFetched {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/csrf", nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("csrf token: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	c.csrfFetched = true
	if resp.StatusCode >= 300 {
		return nil
	}
	c.csrfToken = resp.Header.Get(CSRFHeader)
	for _, ck := range resp.Cookies() {
		if ck.Name != CookieName && ck.Value != "" {
			c.csrfCookies = append(c.csrfCookies, &http.Cookie{Name: ck.Name, Value: ck.Value})
		}
	}
	return nil
}

func sessionCookie(resp *http.Response) (string, error) {
	for _, ck := range resp.Cookies() {
		if ck.Name == CookieName && ck.Value != "" {
			return ck.Value, nil
		}
	}
	return "", errors.New("no auth cookie in response")
}

// Login возвращает сессионный токен и запоминает его в клиенте.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/user/login", map[string]string{"email": email, "password": password}, nil)
	if err != nil {
		return "", err
	}
	tok, err := sessionCookie(resp)
	if err != nil {
		return "", err
	}
	c.Token = tok
	return tok, nil
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/api/user/logout", nil, nil)
	return err
}

// Status — строка статуса сессии ("anonymous" или "User ID = N").
func (c *Client) Status(ctx context.Context) (string, error) {
	var out struct {
		Result string `json:"result"`
	}
	_, err := c.do(ctx, http.MethodPost, "/api/user/test", nil, &out)
	return out.Result, err
}

func revealQuery(reveal bool) string {
	if reveal {
		return "?reveal=true"
	}
	return ""
}

func (c *Client) ListItems(ctx context.Context, reveal bool) ([]Item, error) {
	var out []Item
	_, err := c.do(ctx, http.MethodGet, "/api/items"+revealQuery(reveal), nil, &out)
	return out, err
}

func (c *Client) GetItem(ctx context.Context, id int64, reveal bool) (*Item, error) {
	var out Item
	if _, err := c.do(ctx, http.MethodGet, "/api/items/"+strconv.FormatInt(id, 10)+revealQuery(reveal), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddItem(ctx context.Context, it NewItem) (*Item, error) {
	var out Item
	if _, err := c.do(ctx, http.MethodPost, "/api/items", it, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteItem(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/items/"+strconv.FormatInt(id, 10), nil, nil)
	return err
}

func (c *Client) SecurityQuestions(ctx context.Context, email string) ([]string, error) {
	var out struct {
		Questions []string `json:"questions"`
	}
	_, err := c.do(ctx, http.MethodGet, "/api/recovery/questions?email="+url.QueryEscape(email), nil, &out)
	return out.Questions, err
}

func (c *Client) Recover(ctx context.Context, email string, answers []string) (*RecoverResult, error) {
	var out RecoverResult
	if _, err := c.do(ctx, http.MethodPost, "/api/recovery", map[string]any{"email": email, "answers": answers}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ResetPassword(ctx context.Context, resetToken, newPassword, confirm string) error {
	_, err := c.do(ctx, http.MethodPost, "/api/recovery/reset", map[string]string{
		"reset_token":      resetToken,
		"new_password":     newPassword,
		"confirm_password": confirm,
	}, nil)
	return err
}

type Question struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Register создаёт аккаунт; сервер сразу выставляет сессию.
func (c *Client) Register(ctx context.Context, email, password string, questions []Question) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/user/register", map[string]any{
		"email":              email,
		"password":           password,
		"confirm_password":   password,
		"security_questions": questions,
	}, nil)
	if err != nil {
		return "", err
	}
	tok, err := sessionCookie(resp)
	if err != nil {
		return "", err
	}
	c.Token = tok
	return tok, nil
}
