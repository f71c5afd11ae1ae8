package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"daztao-be/internal/auth"
	"daztao-be/internal/logger"
	"daztao-be/internal/order"
	"daztao-be/internal/product"

	"go.uber.org/zap"
)

var ErrUTRTooShort = errors.New("Please enter a valid 12-digit UTR number")

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client talks to the storefront API. The zero value is not usable; use New.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sets the admin session token sent as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "client"),
		zap.String("method", method),
		zap.String("path", path),
	)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("request failed", zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var envelope struct {
			Error  string            `json:"error"`
			Fields map[string]string `json:"fields"`
		}
		if json.Unmarshal(data, &envelope) == nil && envelope.Error != "" {
			apiErr.Message = envelope.Error
			apiErr.Fields = envelope.Fields
		}
		log.Warn("api returned error", zap.Int("status", resp.StatusCode), zap.String("error", apiErr.Message))
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) ListProducts(ctx context.Context, includeHidden bool) ([]product.Product, error) {
	path := "/products"
	if includeHidden {
		path += "?all=true"
	}

	var products []product.Product
	if err := c.do(ctx, http.MethodGet, path, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, slug string) (*product.Product, error) {
	var p product.Product
	if err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(slug), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) CreateOrder(ctx context.Context, req order.CreateRequest) (*order.CreateResponse, error) {
	var res order.CreateResponse
	if err := c.do(ctx, http.MethodPost, "/orders", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) GetOrder(ctx context.Context, ref string) (*order.Order, error) {
	var o order.Order
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(ref), nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) ListOrders(ctx context.Context) ([]order.Order, error) {
	var orders []order.Order
	if err := c.do(ctx, http.MethodGet, "/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) UpdateOrder(ctx context.Context, ref string, patch order.Patch) (*order.Order, error) {
	var o order.Order
	if err := c.do(ctx, http.MethodPut, "/orders/"+url.PathEscape(ref), patch, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) DeleteOrder(ctx context.Context, ref string) error {
	return c.do(ctx, http.MethodDelete, "/orders/"+url.PathEscape(ref), nil, nil)
}

// SubmitUTR sends the bank reference for a UPI order. References shorter than
// order.MinUTRLength are refused before any request is made.
func (c *Client) SubmitUTR(ctx context.Context, ref, utr string) (*order.Order, error) {
	utr = strings.TrimSpace(utr)
	if len(utr) < order.MinUTRLength {
		return nil, ErrUTRTooShort
	}

	marker := string(order.VerificationPending)
	return c.UpdateOrder(ctx, ref, order.Patch{UTR: &utr, Verification: &marker})
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Login exchanges the admin password for a session token and keeps it for
// subsequent calls.
func (c *Client) Login(ctx context.Context, password string) (string, error) {
	var res loginResponse
	err := c.do(ctx, http.MethodPost, "/admin/login", map[string]string{"password": password}, &res)
	if err != nil {
		return "", err
	}
	if res.Token == "" {
		return "", auth.ErrInvalidToken
	}

	c.token = res.Token
	return res.Token, nil
}
