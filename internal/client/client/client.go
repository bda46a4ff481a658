package client

import (
	"context"

	"github.com/dmitrijs2005/catalogkeeper/internal/client/models"
)

type Client interface {
	ListProducts(ctx context.Context) (*models.ProductList, error)
	GetProduct(ctx context.Context, id int) (*models.Product, error)
	CreateProduct(ctx context.Context, p models.ProductPayload) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int, p models.ProductPayload) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int) (*models.Product, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	CurrentUser(ctx context.Context) models.CurrentUser
}
