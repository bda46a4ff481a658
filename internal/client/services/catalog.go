package services

import (
	"github.com/dmitrijs2005/catalogkeeper/internal/client/client"
	"github.com/dmitrijs2005/catalogkeeper/internal/client/notify"
	"github.com/dmitrijs2005/catalogkeeper/internal/client/query"
	"github.com/dmitrijs2005/catalogkeeper/internal/client/tokens"
	"github.com/dmitrijs2005/catalogkeeper/internal/logging"
)

// Catalog is everything a UI needs, sharing one cache and one notifier.
type Catalog struct {
	Auth     *AuthService
	Products *ProductService
	Cache    *query.Cache
}

func NewCatalog(gw client.Client, store *tokens.Store, n notify.Notifier, log logging.Logger) *Catalog {
	cache := query.NewCache(log)
	return &Catalog{
		Auth:     NewAuthService(gw, store, cache, n, log),
		Products: NewProductService(gw, cache, n, log),
		Cache:    cache,
	}
}
