package httphandler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/niksmo/storefront/internal/core/cart"
	"github.com/niksmo/storefront/internal/core/catalog"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/service"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// GET v1/products?q=&category=&min_price=&max_price=&min_rating=&in_stock=&sort= (200 OK, 400 Bad request)
// GET v1/products/{id} (200 OK, 400 Bad request, 404 Not found)
// GET v1/home (200 OK)
// GET v1/filters (200 OK)

type CatalogService interface {
	ListProducts(context.Context, service.ListingQuery) service.ProductListing
	Home(context.Context) service.HomeView
	NewFilterConfig(context.Context) domain.FilterConfig
	Product(ctx context.Context, id int) (domain.Product, bool)
}

type CatalogHandler struct {
	svc CatalogService
}

func RegisterCatalog(mux *http.ServeMux, svc CatalogService) {
	h := CatalogHandler{svc}
	mux.HandleFunc("GET /v1/products", h.GetProducts)
	mux.HandleFunc("GET /v1/products/{id}", h.GetProduct)
	mux.HandleFunc("GET /v1/home", h.GetHome)
	mux.HandleFunc("GET /v1/filters", h.GetFilters)
}

func (h CatalogHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetProducts"
	log := slog.With("op", op)

	q, err := parseListingQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		log.Debug("invalid listing query", "err", err)
		return
	}

	listing := h.svc.ListProducts(r.Context(), q)
	writeJSON(w, http.StatusOK, toListing(listing))
}

func (h CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	p, ok := h.svc.Product(r.Context(), id)
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	writeJSON(w, http.StatusOK, toProduct(p))
}

func (h CatalogHandler) GetHome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toHome(h.svc.Home(r.Context())))
}

func (h CatalogHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toFilter(h.svc.NewFilterConfig(r.Context())))
}

func parseListingQuery(r *http.Request) (service.ListingQuery, error) {
	values := r.URL.Query()
	q := service.ListingQuery{
		SearchText: values.Get("q"),
		Categories: values["category"],
	}

	var err error
	if q.MinPrice, err = parseOptFloat(values.Get("min_price")); err != nil {
		return q, fmt.Errorf("min_price: %w", err)
	}
	if q.MaxPrice, err = parseOptFloat(values.Get("max_price")); err != nil {
		return q, fmt.Errorf("max_price: %w", err)
	}

	if s := values.Get("min_rating"); s != "" {
		if q.MinRating, err = parseFloat(s); err != nil {
			return q, fmt.Errorf("min_rating: %w", err)
		}
	}

	if s := values.Get("in_stock"); s != "" {
		if q.InStockOnly, err = strconv.ParseBool(s); err != nil {
			return q, fmt.Errorf("in_stock: %w", err)
		}
	}

	if q.Sort, err = catalog.ParseSortKey(values.Get("sort")); err != nil {
		return q, fmt.Errorf("sort: %w", err)
	}
	return q, nil
}

var errNotFinite = errors.New("must be a finite number")

func parseOptFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := parseFloat(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// parseFloat rejects NaN and infinities, they cannot be encoded back as JSON.
func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return v, nil
}

// GET v1/cart (200 OK)
// POST v1/cart/items JSON {"product_id","quantity","size","color"} (200 OK, 400, 404, 409)
// PATCH v1/cart/items JSON {"product_id","size","color","quantity"} (200 OK, 400, 404)
// DELETE v1/cart/items JSON {"product_id","size","color"} (200 OK, 400)
// POST v1/cart/checkout (202 Accepted)

type CartService interface {
	Cart(context.Context) (cart.State, error)
	AddToCart(context.Context, service.AddToCartCommand) (cart.State, error)
	UpdateQuantity(ctx context.Context, key domain.LineKey, qty int) (cart.State, error)
	RemoveFromCart(ctx context.Context, key domain.LineKey) (cart.State, error)
	Checkout(context.Context) (service.CheckoutSummary, error)
}

type CartHandler struct {
	svc CartService
}

// RegisterCart mounts the cart routes behind session, which must put a
// cart store into the request context.
func RegisterCart(
	mux *http.ServeMux, svc CartService, session func(http.Handler) http.Handler,
) {
	h := CartHandler{svc}
	mux.Handle("GET /v1/cart", session(http.HandlerFunc(h.GetCart)))
	mux.Handle("POST /v1/cart/items", session(http.HandlerFunc(h.PostItem)))
	mux.Handle("PATCH /v1/cart/items", session(http.HandlerFunc(h.PatchItem)))
	mux.Handle("DELETE /v1/cart/items", session(http.HandlerFunc(h.DeleteItem)))
	mux.Handle("POST /v1/cart/checkout", session(http.HandlerFunc(h.PostCheckout)))
}

func (h CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.GetCart"

	state, err := h.svc.Cart(r.Context())
	if err != nil {
		writeCartError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, toCart(state))
}

func (h CartHandler) PostItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.PostItem"

	var req AddItemRequest
	if !readJSON(w, r, op, &req) {
		return
	}

	state, err := h.svc.AddToCart(r.Context(), service.AddToCartCommand{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Size:      req.Size,
		Color:     req.Color,
	})
	if err != nil {
		writeCartError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, toCart(state))
}

func (h CartHandler) PatchItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.PatchItem"

	var req LineRequest
	if !readJSON(w, r, op, &req) {
		return
	}

	state, err := h.svc.UpdateQuantity(r.Context(), req.key(), req.Quantity)
	if err != nil {
		writeCartError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, toCart(state))
}

func (h CartHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.DeleteItem"

	var req LineRequest
	if !readJSON(w, r, op, &req) {
		return
	}

	state, err := h.svc.RemoveFromCart(r.Context(), req.key())
	if err != nil {
		writeCartError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, toCart(state))
}

func (h CartHandler) PostCheckout(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.PostCheckout"

	summary, err := h.svc.Checkout(r.Context())
	if err != nil {
		writeCartError(w, op, err)
		return
	}
	writeJSON(w, http.StatusAccepted, toCheckout(summary))
}

func readJSON(w http.ResponseWriter, r *http.Request, op string, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON data")
		slog.Warn("failed to parse JSON", "op", op, "err", err)
		return false
	}
	return true
}

func writeCartError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		writeError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, service.ErrLineNotFound):
		writeError(w, http.StatusNotFound, "cart line not found")
	case errors.Is(err, service.ErrOutOfStock):
		writeError(w, http.StatusConflict, "product is out of stock")
	case errors.Is(err, service.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, "quantity must be positive")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
		slog.Error("cart operation failed", "op", op, "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	const op = "httphandler.writeJSON"

	b, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to encode response", "op", op, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(b); err != nil {
		slog.Error("failed to write response body", "op", op, "err", err)
	}
}
