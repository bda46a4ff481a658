package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/catalogkeeper/internal/client/models"
	"github.com/dmitrijs2005/catalogkeeper/internal/logging"
	"github.com/dmitrijs2005/catalogkeeper/internal/netx"
)

const (
	productsPath    = "/products"
	loginPath       = "/auth/login"
	currentUserPath = "/auth/me"
)

type HTTPClient struct {
	transport  *netx.Client
	log        logging.Logger
	createPath string
}

var _ Client = (*HTTPClient)(nil)

type Option func(*HTTPClient)

// WithCreatePath overrides the route used by CreateProduct (default /products).
func WithCreatePath(path string) Option {
	return func(c *HTTPClient) {
		if path != "" {
			c.createPath = path
		}
	}
}

func NewHTTPClient(transport *netx.Client, log logging.Logger, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		transport:  transport,
		log:        logging.OrNop(log).With("component", "gateway"),
		createPath: productsPath,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func productPath(id int) string {
	return productsPath + "/" + strconv.Itoa(id)
}

func (c *HTTPClient) ListProducts(ctx context.Context) (*models.ProductList, error) {
	var out models.ProductList
	if err := c.call(ctx, "list products", http.MethodGet, productsPath, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	var out models.Product
	if err := c.call(ctx, "get product", http.MethodGet, productPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CreateProduct(ctx context.Context, p models.ProductPayload) (*models.Product, error) {
	var out models.Product
	if err := c.call(ctx, "create product", http.MethodPost, c.createPath, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdateProduct(ctx context.Context, id int, p models.ProductPayload) (*models.Product, error) {
	var out models.Product
	if err := c.call(ctx, "update product", http.MethodPatch, productPath(id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProduct returns the deleted product when the API echoes it back; an
// empty body yields a product carrying only the id.
func (c *HTTPClient) DeleteProduct(ctx context.Context, id int) (*models.Product, error) {
	out := models.Product{ID: id}
	if err := c.call(ctx, "delete product", http.MethodDelete, productPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for tokens. Every 4xx is reported as
// ErrUnauthorized: the API does not distinguish bad input from bad credentials.
func (c *HTTPClient) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	var out models.LoginResponse
	err := c.call(ctx, "login", http.MethodPost, loginPath, req, &out)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Status >= 400 && se.Status < 500 {
			se.Kind = ErrUnauthorized
		}
		return nil, err
	}
	return &out, nil
}

// CurrentUser never fails. Without a credential it reports unauthenticated
// without touching the network; any failure is logged and normalized the
// same way.
func (c *HTTPClient) CurrentUser(ctx context.Context) models.CurrentUser {
	if !c.transport.HasCredential() {
		return models.Unauthenticated()
	}

	var u models.User
	if err := c.call(ctx, "current user", http.MethodGet, currentUserPath, nil, &u); err != nil {
		c.log.Warn(ctx, "auth check failed", "error", err)
		return models.Unauthenticated()
	}
	return models.Authenticated(u)
}

func (c *HTTPClient) call(ctx context.Context, op, method, path string, body, out any) error {
	resp, err := c.transport.Do(ctx, method, path, body)
	if err != nil {
		return &StatusError{Op: op, Kind: ErrNetwork, Err: err}
	}

	if kind := classify(resp.StatusCode); kind != nil {
		return &StatusError{Op: op, Status: resp.StatusCode, Kind: kind, Message: apiMessage(resp.Body)}
	}

	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return &StatusError{Op: op, Status: resp.StatusCode, Kind: ErrServerError, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// apiMessage extracts {"message": "..."} from an error body, if present.
func apiMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}
