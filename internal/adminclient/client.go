package adminclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/akormin/logoorder/internal/attach"
)

var (
	ErrNotFound     = errors.New("order not found")
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrServerError  = errors.New("server error")
)

// Order is the wire shape of one order as the server reports it.
type Order struct {
	ID            string   `json:"id"`
	UniqueID      string   `json:"unique_id,omitempty"`
	Name          string   `json:"name"`
	Facebook      string   `json:"facebook,omitempty"`
	Email         string   `json:"email"`
	OrderType     string   `json:"order_type"`
	Details       string   `json:"details"`
	Filenames     []string `json:"filenames"`
	Status        string   `json:"status"`
	PaypalOrderID string   `json:"paypal_order_id,omitempty"`
	Verified      bool     `json:"verified"`
}

// Client talks to the order service REST API on behalf of the operator.
type Client struct {
	client  *http.Client
	baseURL string
	token   string
}

// NewClient creates new Client instance
func NewClient(baseURL string) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		baseURL: baseURL,
	}
}

func statusErr(code int) error {
	switch code {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	default:
		return fmt.Errorf("%w: status %d", ErrServerError, code)
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	u, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return err
	}

	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return statusErr(resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login authenticates the operator and keeps the session token for
// subsequent calls.
func (c *Client) Login(ctx context.Context, login, password string) error {
	resp := loginResponse{}
	if err := c.do(ctx, http.MethodPost, "/api/login", loginRequest{Login: login, Password: password}, &resp); err != nil {
		return err
	}
	c.token = resp.Token
	return nil
}

// ListOrders fetches all orders keyed by identifier.
// GET /orders
func (c *Client) ListOrders(ctx context.Context) (map[string]Order, error) {
	orders := map[string]Order{}
	if err := c.do(ctx, http.MethodGet, "/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder fetches one order with full detail.
// GET /orders/{id}
func (c *Client) GetOrder(ctx context.Context, id string) (*Order, error) {
	order := Order{}
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus pushes a status change to the server.
// POST /orders/{id}/status
func (c *Client) UpdateStatus(ctx context.Context, id, status string) error {
	return c.do(ctx, http.MethodPost, "/orders/"+url.PathEscape(id)+"/status", updateStatusRequest{Status: status}, nil)
}

type verifyResponse struct {
	Verified bool `json:"verified"`
}

// VerifyOrder asks the server to recompute the verified bit.
// POST /orders/{id}/verify
func (c *Client) VerifyOrder(ctx context.Context, id string) (bool, error) {
	resp := verifyResponse{}
	if err := c.do(ctx, http.MethodPost, "/orders/"+url.PathEscape(id)+"/verify", nil, &resp); err != nil {
		return false, err
	}
	return resp.Verified, nil
}

// FetchAttachment downloads one attachment through the static path
// convention: {base}/static/uploads/{namespace}/{filename}, where the
// namespace carries the sanitized order type exactly as the server stores it.
func (c *Client) FetchAttachment(ctx context.Context, order *Order, filename string) ([]byte, error) {
	u, err := url.JoinPath(c.baseURL, "static", "uploads",
		url.PathEscape(attach.Namespace(order.ID, order.OrderType)),
		url.PathEscape(filename))
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, statusErr(resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
