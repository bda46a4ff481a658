package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/catalogkeeper/internal/client/client"
	"github.com/dmitrijs2005/catalogkeeper/internal/client/models"
	"github.com/dmitrijs2005/catalogkeeper/internal/client/mutation"
	"github.com/dmitrijs2005/catalogkeeper/internal/client/notify"
	"github.com/dmitrijs2005/catalogkeeper/internal/client/query"
	"github.com/dmitrijs2005/catalogkeeper/internal/client/validation"
	"github.com/dmitrijs2005/catalogkeeper/internal/logging"
)

const (
	CreateProductNotificationID = "create-product-toast"
	UpdateProductNotificationID = "update-product-toast"
	DeleteProductNotificationID = "delete-product-toast"
)

func ProductListKey() query.Key { return query.NewKey("product-list") }

func ProductDetailKey(id int) query.Key { return query.NewKey("product-detail", id) }

// ProductUpdate is the input of an edit: the product id and its new form.
type ProductUpdate struct {
	ID    int
	Input validation.ProductInput
}

type (
	CreateProductMutation = mutation.Mutation[validation.ProductInput, *models.Product]
	UpdateProductMutation = mutation.Mutation[ProductUpdate, *models.Product]
	DeleteProductMutation = mutation.Mutation[int, *models.Product]
)

type ProductService struct {
	gw    client.Client
	cache *query.Cache
	log   logging.Logger

	create *CreateProductMutation
	update *UpdateProductMutation
	del    *DeleteProductMutation
}

func NewProductService(gw client.Client, cache *query.Cache, n notify.Notifier, log logging.Logger) *ProductService {
	s := &ProductService{gw: gw, cache: cache, log: logging.OrNop(log)}

	s.create = mutation.New(mutation.Config[validation.ProductInput, *models.Product]{
		Name:           "create product",
		NotificationID: CreateProductNotificationID,
		Pending:        notify.Message{Title: "Creating product..."},
		Success:        notify.Message{Title: "Product created successfully!"},
		ClassifyError:  productErrorMessage("Failed to create product."),
		Validate:       func(in validation.ProductInput) error { return in.Validate() },
		Run: func(ctx context.Context, in validation.ProductInput) (*models.Product, error) {
			p, err := in.Payload()
			if err != nil {
				return nil, err
			}
			return s.gw.CreateProduct(ctx, p)
		},
		OnSuccess: func(context.Context, validation.ProductInput, *models.Product) error {
			s.cache.Invalidate(ProductListKey())
			return nil
		},
		Notifier: n,
		Logger:   s.log,
	})

	s.update = mutation.New(mutation.Config[ProductUpdate, *models.Product]{
		Name:           "update product",
		NotificationID: UpdateProductNotificationID,
		Pending:        notify.Message{Title: "Saving product..."},
		Success:        notify.Message{Title: "Product updated successfully!"},
		ClassifyError:  productErrorMessage("Failed to update product."),
		Validate: func(in ProductUpdate) error {
			if err := validID(in.ID); err != nil {
				return err
			}
			return in.Input.Validate()
		},
		Run: func(ctx context.Context, in ProductUpdate) (*models.Product, error) {
			p, err := in.Input.Payload()
			if err != nil {
				return nil, err
			}
			return s.gw.UpdateProduct(ctx, in.ID, p)
		},
		OnSuccess: func(_ context.Context, in ProductUpdate, _ *models.Product) error {
			s.cache.Invalidate(ProductListKey(), ProductDetailKey(in.ID))
			return nil
		},
		Notifier: n,
		Logger:   s.log,
	})

	s.del = mutation.New(mutation.Config[int, *models.Product]{
		Name:           "delete product",
		NotificationID: DeleteProductNotificationID,
		Pending:        notify.Message{Title: "Deleting..."},
		Success:        notify.Message{Title: "Product deleted successfully!"},
		ClassifyError:  productErrorMessage("Failed to delete product."),
		Validate:       validID,
		Run: func(ctx context.Context, id int) (*models.Product, error) {
			return s.gw.DeleteProduct(ctx, id)
		},
		OnSuccess: func(_ context.Context, id int, _ *models.Product) error {
			s.cache.Invalidate(ProductListKey(), ProductDetailKey(id))
			return nil
		},
		Notifier: n,
		Logger:   s.log,
	})
	return s
}

func validID(id int) error {
	if id <= 0 {
		return &validation.Errors{Fields: []validation.FieldError{{Field: "id", Message: "Product id must be a positive number"}}}
	}
	return nil
}

func productErrorMessage(title string) func(error) notify.Message {
	return func(err error) notify.Message {
		switch {
		case errors.Is(err, client.ErrUnauthorized):
			return notify.Message{Title: title, Description: "Your session has expired. Please log in again."}
		case errors.Is(err, client.ErrNotFound):
			return notify.Message{Title: title, Description: "The product no longer exists."}
		case errors.Is(err, client.ErrNetwork):
			return notify.Message{Title: title, Description: "Check your connection and try again."}
		default:
			return notify.Message{Title: title, Description: "Please try again."}
		}
	}
}

// List is the cached product collection.
func (s *ProductService) List() *query.Query[*models.ProductList] {
	return query.NewQuery(s.cache, ProductListKey(), s.gw.ListProducts)
}

// Detail is the cached product with the given id.
func (s *ProductService) Detail(id int) *query.Query[*models.Product] {
	return query.NewQuery(s.cache, ProductDetailKey(id), func(ctx context.Context) (*models.Product, error) {
		return s.gw.GetProduct(ctx, id)
	})
}

func (s *ProductService) CreateMutation() *CreateProductMutation { return s.create }
func (s *ProductService) UpdateMutation() *UpdateProductMutation { return s.update }
func (s *ProductService) DeleteMutation() *DeleteProductMutation { return s.del }
