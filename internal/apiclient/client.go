// Package apiclient is a typed Go client for the labelops HTTP API. It is
// used by out-of-process tooling (imports, cron jobs, smoke tests) and
// mirrors the wire shapes the server emits.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dnbdoctor/labelops/internal/domain"
	"github.com/dnbdoctor/labelops/internal/pkg/httpretry"
)

// Client talks to a labelops server. All methods are safe for concurrent
// use.
type Client struct {
	baseURL string
	http    httpretry.HTTPDoer
}

// New creates a client for the given base URL. doer may be nil, in which
// case a retrying client with defaults is used.
func New(baseURL string, doer httpretry.HTTPDoer) *Client {
	if doer == nil {
		doer = httpretry.New(nil, 0)
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: doer}
}

// Pagination describes one page of a list response.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
	TotalCount int `json:"totalCount"`
}

// SubscriberList is the subscriber list response envelope.
type SubscriberList struct {
	Success     bool                   `json:"success"`
	Subscribers []domain.Subscriber    `json:"subscribers"`
	Pagination  Pagination             `json:"pagination"`
	Stats       domain.SubscriberStats `json:"stats"`
}

// ListParams filter the subscriber list.
type ListParams struct {
	Search          string
	Status          string
	CategoryID      string
	ShowSoftDeleted bool
	Page            int
	PageSize        int
}

// ConflictError is returned when a create collides with an existing
// subscriber email.
type ConflictError struct {
	ExistingEmail string `json:"existingEmail"`
	Status        string `json:"status"`
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("subscriber already exists: %s (%s)", e.ExistingEmail, e.Status)
}

// APIError is any non-2xx response that is not a subscriber conflict.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// ListSubscribers fetches one page of subscribers.
func (c *Client) ListSubscribers(ctx context.Context, p ListParams) (*SubscriberList, error) {
	q := url.Values{}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Status != "" {
		q.Set("status", p.Status)
	}
	if p.CategoryID != "" {
		q.Set("category", p.CategoryID)
	}
	if p.ShowSoftDeleted {
		q.Set("showDeleted", "true")
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(p.PageSize))
	}

	var out SubscriberList
	if err := c.do(ctx, http.MethodGet, "/api/subscribers?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateSubscriberInput mirrors the create request body.
type CreateSubscriberInput struct {
	Email          string   `json:"email"`
	Name           string   `json:"name,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	CategoryID     string   `json:"category,omitempty"`
	Notes          string   `json:"notes,omitempty"`
	Status         string   `json:"status,omitempty"`
	UpdateExisting bool     `json:"updateExisting,omitempty"`
}

// CreateSubscriber adds a subscriber. A duplicate email yields a
// *ConflictError carrying the existing record's email and status.
func (c *Client) CreateSubscriber(ctx context.Context, in CreateSubscriberInput) (*domain.Subscriber, error) {
	var out struct {
		Subscriber domain.Subscriber `json:"subscriber"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/subscribers", in, &out); err != nil {
		return nil, err
	}
	return &out.Subscriber, nil
}

// UpdateSubscriberInput carries the mutable fields; nil means leave as-is.
type UpdateSubscriberInput struct {
	Name       *string   `json:"name,omitempty"`
	Tags       *[]string `json:"tags,omitempty"`
	CategoryID *string   `json:"category,omitempty"`
	Notes      *string   `json:"notes,omitempty"`
	Status     *string   `json:"status,omitempty"`
}

// UpdateSubscriber modifies an existing subscriber.
func (c *Client) UpdateSubscriber(ctx context.Context, id string, in UpdateSubscriberInput) error {
	return c.do(ctx, http.MethodPut, "/api/subscribers/"+url.PathEscape(id), in, nil)
}

// DeleteSubscriber removes a subscriber. soft keeps the row with a deletion
// flag so it can be restored.
func (c *Client) DeleteSubscriber(ctx context.Context, id string, soft bool) error {
	path := "/api/subscribers/" + url.PathEscape(id)
	if soft {
		path += "?soft=true"
	}
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// ListCategories fetches all categories with subscriber counts.
func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var out struct {
		Categories []domain.Category `json:"categories"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/categories", nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

// CreateCategory adds a category.
func (c *Client) CreateCategory(ctx context.Context, name, description, color string) (*domain.Category, error) {
	body := map[string]string{"name": name, "description": description, "color": color}
	var out struct {
		Category domain.Category `json:"category"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/categories", body, &out); err != nil {
		return nil, err
	}
	return &out.Category, nil
}

// DeleteCategory removes a category; its subscribers are detached, not
// deleted.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/categories/"+url.PathEscape(id), nil, nil)
}

// SendNewsletterRequest mirrors the newsletter send request body.
type SendNewsletterRequest struct {
	Subscribers []domain.Subscriber `json:"subscribers,omitempty"`
	CategoryIDs []string            `json:"categoryIds,omitempty"`
	ManualText  string              `json:"manualText,omitempty"`
	Subject     string              `json:"subject"`
	Message     string              `json:"message"`
	Template    string              `json:"template"`
	Vars        map[string]string   `json:"vars,omitempty"`
}

// SendNewsletter dispatches a bulk send and returns the server's summary
// message, e.g. "Newsletter sent to 42 recipients".
func (c *Client) SendNewsletter(ctx context.Context, req SendNewsletterRequest) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/newsletter/send", req, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	var getBody func() (io.ReadCloser, error)
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader, getBody = httpretry.ReplayableBody(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.GetBody = getBody
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	return c.decodeError(resp)
}

func (c *Client) decodeError(resp *http.Response) error {
	var envelope struct {
		Error   string          `json:"error"`
		Details json.RawMessage `json:"details"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}

	if resp.StatusCode == http.StatusConflict && len(envelope.Details) > 0 {
		var conflict ConflictError
		if err := json.Unmarshal(envelope.Details, &conflict); err == nil && conflict.ExistingEmail != "" {
			return &conflict
		}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: envelope.Error}
}
