package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/novathreads/storefront-backend/internal/auth"
	"github.com/novathreads/storefront-backend/internal/catalog"
	"github.com/novathreads/storefront-backend/internal/newsletter"
	"github.com/novathreads/storefront-backend/internal/users"
)

// ProductQuery mirrors the query string of GET /products. Zero values are
// omitted so the server applies its defaults.
type ProductQuery struct {
	Category string
	Featured *bool
	Search   string
	Sort     string
	Order    string
	Page     int
	Limit    int
}

func (q ProductQuery) values() url.Values {
	v := url.Values{}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Featured != nil {
		v.Set("featured", strconv.FormatBool(*q.Featured))
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set("search", s)
	}
	if q.Sort != "" {
		v.Set("sortBy", q.Sort)
	}
	if q.Order != "" {
		v.Set("order", q.Order)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

type productEnvelope struct {
	Product catalog.ProductDTO `json:"product"`
}

type productsEnvelope struct {
	Products []catalog.ProductDTO `json:"products"`
}

func (c *Client) ListProducts(ctx context.Context, q ProductQuery) (*catalog.ProductListResult, error) {
	var out catalog.ProductListResult
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "products", query: q.values()}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) FeaturedProducts(ctx context.Context, limit int) ([]catalog.ProductDTO, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out productsEnvelope
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "products/featured", query: q}, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*catalog.ProductDTO, error) {
	var out productEnvelope
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "products/" + url.PathEscape(id)}, &out); err != nil {
		return nil, err
	}
	return &out.Product, nil
}

// CreateProduct requires an admin token.
func (c *Client) CreateProduct(ctx context.Context, input catalog.CreateProductInput) (*catalog.ProductDTO, error) {
	var out productEnvelope
	if _, err := c.do(ctx, request{method: http.MethodPost, path: "products", body: input, auth: true}, &out); err != nil {
		return nil, err
	}
	return &out.Product, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id string, input catalog.UpdateProductInput) (*catalog.ProductDTO, error) {
	var out productEnvelope
	req := request{method: http.MethodPut, path: "products/" + url.PathEscape(id), body: input, auth: true}
	if _, err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out.Product, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	_, err := c.do(ctx, request{method: http.MethodDelete, path: "products/" + url.PathEscape(id), auth: true}, nil)
	return err
}

func (c *Client) Register(ctx context.Context, req auth.RegisterRequest) (*auth.AuthResponse, error) {
	var out auth.AuthResponse
	if _, err := c.do(ctx, request{method: http.MethodPost, path: "auth/register", body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, req auth.LoginRequest) (*auth.AuthResponse, error) {
	var out auth.AuthResponse
	if _, err := c.do(ctx, request{method: http.MethodPost, path: "auth/login", body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Profile fetches the identity behind the client's token source.
func (c *Client) Profile(ctx context.Context) (*users.UserDTO, error) {
	return c.profile(ctx, "")
}

// ProfileWithToken fetches the identity behind token, bypassing the token
// source.
func (c *Client) ProfileWithToken(ctx context.Context, token string) (*users.UserDTO, error) {
	if token == "" {
		return nil, ErrNoCredentials
	}
	return c.profile(ctx, token)
}

func (c *Client) profile(ctx context.Context, token string) (*users.UserDTO, error) {
	var out auth.ProfileResponse
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "auth/profile", token: token, auth: true}, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// Subscribe returns the server's confirmation message.
func (c *Client) Subscribe(ctx context.Context, email string) (string, error) {
	body := newsletter.EmailRequest{Email: email}
	return c.do(ctx, request{method: http.MethodPost, path: "newsletter/subscribe", body: body}, nil)
}

func (c *Client) Unsubscribe(ctx context.Context, email string) (string, error) {
	body := newsletter.EmailRequest{Email: email}
	return c.do(ctx, request{method: http.MethodPost, path: "newsletter/unsubscribe", body: body}, nil)
}

// SubscriberQuery mirrors the query string of GET /newsletter/subscribers.
type SubscriberQuery struct {
	Active *bool
	Page   int
	Limit  int
}

// Subscribers requires an admin token.
func (c *Client) Subscribers(ctx context.Context, q SubscriberQuery) (*newsletter.SubscriberListResult, error) {
	v := url.Values{}
	if q.Active != nil {
		v.Set("active", strconv.FormatBool(*q.Active))
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	var out newsletter.SubscriberListResult
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "newsletter/subscribers", query: v, auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
