package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client reads a catalog from the catalog HTTP service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption is a functional option for configuring the client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the request timeout of the default HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient creates a catalog service client.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListParams narrows a product listing on the server side.
type ListParams struct {
	Category string
	Search   string
	Sort     SortKey
}

// Products fetches products, optionally filtered and sorted by the service.
func (c *Client) Products(ctx context.Context, params ListParams) ([]Product, error) {
	query := url.Values{}
	if params.Category != "" && params.Category != AllCategories {
		query.Set("category", params.Category)
	}
	if params.Search != "" {
		query.Set("search", params.Search)
	}
	if params.Sort != "" && params.Sort != SortDefault {
		query.Set("sort", string(params.Sort))
	}

	var products []Product
	if err := c.get(ctx, "/api/v1/products", query, &products); err != nil {
		return nil, err
	}
	for i := range products {
		products[i].Description = PlainText(products[i].Description)
	}
	return products, nil
}

// Product fetches a single product. Unknown ids yield ErrProductNotFound.
func (c *Client) Product(ctx context.Context, id int) (Product, error) {
	var p Product
	if err := c.get(ctx, fmt.Sprintf("/api/v1/products/%d", id), nil, &p); err != nil {
		return Product{}, err
	}
	p.Description = PlainText(p.Description)
	return p, nil
}

// Categories fetches the category labels.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := c.get(ctx, "/api/v1/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// Load implements Provider by fetching the full catalog.
func (c *Client) Load(ctx context.Context) (*Catalog, error) {
	products, err := c.Products(ctx, ListParams{})
	if err != nil {
		return nil, fmt.Errorf("loading products: %w", err)
	}
	categories, err := c.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading categories: %w", err)
	}
	return &Catalog{Products: products, Categories: categories}, nil
}

// get performs a GET request against the catalog service.
func (c *Client) get(ctx context.Context, endpoint string, query url.Values, result any) error {
	reqURL := c.baseURL + endpoint
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrProductNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("catalog API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
