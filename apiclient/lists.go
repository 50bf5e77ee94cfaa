package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

const (
	animalsEndpoint      = "/animals/"
	herdsEndpoint        = "/herds/"
	vaccinationsEndpoint = "/vaccinations/"
)

// List fetches a paginated collection from endpoint. Params are flattened
// into query string values; rows come back raw so table controllers can
// decode into their own row types.
func (c *Client) List(ctx context.Context, endpoint string, params map[string]any) ([]json.RawMessage, error) {
	query := encodeParams(params)
	target := endpoint
	if query != "" {
		target += "?" + query
	}

	var rows []json.RawMessage
	if err := c.Request(ctx, http.MethodGet, target, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListAnimals fetches a page of animal records.
func (c *Client) ListAnimals(ctx context.Context, params map[string]any) ([]json.RawMessage, error) {
	return c.List(ctx, animalsEndpoint, params)
}

// ListHerds fetches a page of herd records.
func (c *Client) ListHerds(ctx context.Context, params map[string]any) ([]json.RawMessage, error) {
	return c.List(ctx, herdsEndpoint, params)
}

// ListVaccinations fetches a page of vaccination records.
func (c *Client) ListVaccinations(ctx context.Context, params map[string]any) ([]json.RawMessage, error) {
	return c.List(ctx, vaccinationsEndpoint, params)
}

// Loader adapts a list endpoint to the table controller's loader signature.
// The backend does not report a total count, so the page length stands in
// for it; callers page forward until a short page comes back.
func (c *Client) Loader(endpoint string) func(ctx context.Context, params map[string]any) ([]json.RawMessage, int, error) {
	return func(ctx context.Context, params map[string]any) ([]json.RawMessage, int, error) {
		rows, err := c.List(ctx, endpoint, params)
		if err != nil {
			return nil, 0, err
		}
		return rows, len(rows), nil
	}
}

func encodeParams(params map[string]any) string {
	if len(params) == 0 {
		return ""
	}

	values := url.Values{}
	for key, val := range params {
		switch v := val.(type) {
		case nil:
			continue
		case string:
			if v == "" {
				continue
			}
			values.Set(key, v)
		case bool:
			values.Set(key, fmt.Sprintf("%t", v))
		default:
			values.Set(key, fmt.Sprint(v))
		}
	}
	return values.Encode()
}
