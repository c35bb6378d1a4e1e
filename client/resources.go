package client

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/tgmarket/miniapp-client/credential"
)

// Product is a storefront catalog entry.
type Product struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency,omitempty"`
	Photo       string  `json:"photo,omitempty"`
	Available   bool    `json:"available"`
}

// Promo is a promotional campaign entry.
type Promo struct {
	ID       int64  `json:"id"`
	Code     string `json:"code"`
	Title    string `json:"title,omitempty"`
	Discount int    `json:"discount,omitempty"`
	Active   bool   `json:"active"`
}

// Assistant is a manager dashboard assistant account.
type Assistant struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username,omitempty"`
	Active   bool   `json:"active"`
}

// Products lists the catalog. The backend has returned this as a bare
// array and as a wrapped object at different times; both shapes land
// here as the same slice.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	return list[Product](c, ctx, "/api/products")
}

// Promos lists promotional campaigns.
func (c *Client) Promos(ctx context.Context) ([]Promo, error) {
	return list[Promo](c, ctx, "/api/promos")
}

// Assistants lists the manager dashboard assistants.
func (c *Client) Assistants(ctx context.Context) ([]Assistant, error) {
	return list[Assistant](c, ctx, "/api/manager/assistants")
}

// Settings returns the admin settings endpoint's scalar values. The
// endpoint serves a flat key/value map; normalization keeps the string
// values in the map's own key order.
func (c *Client) Settings(ctx context.Context) ([]string, error) {
	return list[string](c, ctx, "/api/admin/settings")
}

func list[T any](c *Client, ctx context.Context, path string) ([]T, error) {
	resp, err := c.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	var out []T
	if err := UnmarshalList(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", path, err)
	}
	return out, nil
}

// Login exchanges the captured host context for a standard bearer token
// and stores it under the canonical credential key. The init data
// travels in the context header the transport attaches.
func (c *Client) Login(ctx context.Context) error {
	return c.login(ctx, "/api/login", nil, credential.AudienceStandard)
}

// AdminLogin obtains a privileged token.
func (c *Client) AdminLogin(ctx context.Context, password string) error {
	body := map[string]string{"password": password}
	return c.login(ctx, "/api/admin/login", body, credential.AudiencePrivileged)
}

func (c *Client) login(ctx context.Context, path string, body interface{}, audience credential.Audience) error {
	if c.credentials == nil {
		return fmt.Errorf("no credential store configured")
	}

	resp, err := c.Post(ctx, path, body)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}

	token := tokenFromBody(resp.Body)
	if token == "" {
		return fmt.Errorf("login response from %s carried no token", path)
	}
	if err := c.credentials.Set(ctx, audience, token); err != nil {
		return fmt.Errorf("store %s credential: %w", audience, err)
	}
	return nil
}

// tokenFromBody tolerates the field-name drift of the login endpoint.
func tokenFromBody(body []byte) string {
	for _, field := range []string{"access_token", "token", "jwt"} {
		if v := gjson.GetBytes(body, field); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}
