package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/catalogkeeper/internal/client/client"
	"github.com/dmitrijs2005/catalogkeeper/internal/client/models"
	"github.com/dmitrijs2005/catalogkeeper/internal/client/notify"
	"github.com/dmitrijs2005/catalogkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/catalogkeeper/internal/client/storage"
	"github.com/dmitrijs2005/catalogkeeper/internal/client/tokens"
	"github.com/dmitrijs2005/catalogkeeper/internal/netx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// catalogAPI is an in-memory product API with one user.
type catalogAPI struct {
	mu          sync.Mutex
	products    map[int]models.Product
	nextID      int
	hits        map[string]int
	accessToken string
	loginStatus int
}

func newCatalogAPI(t *testing.T, products ...models.Product) *catalogAPI {
	api := &catalogAPI{
		products:    map[int]models.Product{},
		hits:        map[string]int{},
		nextID:      100,
		accessToken: signToken(t, time.Now().Add(time.Hour)),
	}
	for _, p := range products {
		api.products[p.ID] = p
	}
	return api
}

func signToken(t *testing.T, exp time.Time) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      "1",
		"username": "emilys",
		"exp":      exp.Unix(),
	}).SignedString([]byte("server-secret"))
	require.NoError(t, err)
	return s
}

func (a *catalogAPI) hit(name string) {
	a.mu.Lock()
	a.hits[name]++
	a.mu.Unlock()
}

func (a *catalogAPI) count(name string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hits[name]
}

func (a *catalogAPI) total() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, v := range a.hits {
		n += v
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *catalogAPI) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		a.hit("list")
		a.mu.Lock()
		list := models.ProductList{}
		for _, p := range a.products {
			list.Products = append(list.Products, p)
		}
		a.mu.Unlock()
		sort.Slice(list.Products, func(i, j int) bool { return list.Products[i].ID < list.Products[j].ID })
		list.Total, list.Limit = len(list.Products), 30
		writeJSON(w, http.StatusOK, list)
	})

	mux.HandleFunc("GET /products/{id}", func(w http.ResponseWriter, r *http.Request) {
		a.hit("get")
		id, _ := strconv.Atoi(r.PathValue("id"))
		a.mu.Lock()
		p, ok := a.products[id]
		a.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": fmt.Sprintf("Product with id '%d' not found", id)})
			return
		}
		writeJSON(w, http.StatusOK, p)
	})

	mux.HandleFunc("POST /products", func(w http.ResponseWriter, r *http.Request) {
		a.hit("create")
		var in models.ProductPayload
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}
		a.mu.Lock()
		a.nextID++
		p := models.Product{ID: a.nextID}
		apply(&p, in)
		a.products[p.ID] = p
		a.mu.Unlock()
		writeJSON(w, http.StatusCreated, p)
	})

	mux.HandleFunc("PATCH /products/{id}", func(w http.ResponseWriter, r *http.Request) {
		a.hit("update")
		id, _ := strconv.Atoi(r.PathValue("id"))
		var in models.ProductPayload
		_ = json.NewDecoder(r.Body).Decode(&in)
		a.mu.Lock()
		p, ok := a.products[id]
		if ok {
			apply(&p, in)
			a.products[id] = p
		}
		a.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
			return
		}
		writeJSON(w, http.StatusOK, p)
	})

	mux.HandleFunc("DELETE /products/{id}", func(w http.ResponseWriter, r *http.Request) {
		a.hit("delete")
		id, _ := strconv.Atoi(r.PathValue("id"))
		a.mu.Lock()
		p, ok := a.products[id]
		delete(a.products, id)
		a.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
			return
		}
		writeJSON(w, http.StatusOK, p)
	})

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		a.hit("login")
		var req models.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		a.mu.Lock()
		status, token := a.loginStatus, a.accessToken
		a.mu.Unlock()
		if status != 0 {
			writeJSON(w, status, map[string]string{"message": "boom"})
			return
		}
		if req.Username != "emilys" || req.Password != "emilyspass" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, models.LoginResponse{
			ID: 1, Username: "emilys", AccessToken: token, RefreshToken: "refresh-1",
		})
	})

	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		a.hit("me")
		a.mu.Lock()
		token := a.accessToken
		a.mu.Unlock()
		if r.Header.Get("Authorization") != "Bearer "+token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid/Expired Token!"})
			return
		}
		writeJSON(w, http.StatusOK, models.User{ID: 1, Username: "emilys", Email: "emily@example.com"})
	})

	return mux
}

func apply(p *models.Product, in models.ProductPayload) {
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
}

type env struct {
	api      *catalogAPI
	store    *tokens.Store
	notifier *notify.Recorder
	catalog  *Catalog
}

func newEnv(t *testing.T, api *catalogAPI) *env {
	t.Helper()
	ctx := context.Background()

	ts := httptest.NewServer(api.handler())
	t.Cleanup(ts.Close)

	db, err := storage.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := tokens.Open(ctx, metadata.NewSQLiteRepository(db), nil)
	require.NoError(t, err)

	transport, err := netx.NewClient(ts.URL, store)
	require.NoError(t, err)

	rec := &notify.Recorder{}
	return &env{
		api:      api,
		store:    store,
		notifier: rec,
		catalog:  NewCatalog(client.NewHTTPClient(transport, nil), store, rec, nil),
	}
}

func ids(list *models.ProductList) []int {
	out := make([]int, 0, len(list.Products))
	for _, p := range list.Products {
		out = append(out, p.ID)
	}
	return out
}
