package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/niksmo/storefront/internal/core/cart"
	"github.com/niksmo/storefront/internal/core/catalog"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var (
	ErrProductNotFound = port.ErrProductNotFound
	ErrOutOfStock      = errors.New("product is out of stock")
	ErrLineNotFound    = errors.New("cart line not found")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

type (
	// A ListingQuery is the user input of the products listing.
	// Nil price bounds fall back to [0, highest catalog price].
	ListingQuery struct {
		SearchText  string
		Categories  []string
		MinPrice    *float64
		MaxPrice    *float64
		MinRating   float64
		InStockOnly bool
		Sort        domain.SortKey
	}

	ProductListing struct {
		Products   []domain.Product
		Categories []string
		MaxPrice   float64
		Filter     domain.FilterConfig
	}

	HomeView struct {
		Featured   []domain.Product
		ByCategory []domain.CategoryGroup
	}

	AddToCartCommand struct {
		ProductID int
		Quantity  int
		Size      string
		Color     string
	}

	CheckoutSummary struct {
		SessionID  string
		Items      int
		Subtotal   float64
		Shipping   float64
		Total      float64
		OccurredAt time.Time
	}
)

type Service struct {
	catalog port.CatalogClient
	events  port.CartEventsProducer
	now     func() time.Time
}

// New returns the storefront use cases. events may be nil, cart changes
// are not published then.
func New(catalogClient port.CatalogClient, events port.CartEventsProducer) Service {
	return Service{
		catalog: catalogClient,
		events:  events,
		now:     time.Now,
	}
}

// WithClock replaces the clock stamped on cart events.
func (s Service) WithClock(now func() time.Time) Service {
	s.now = now
	return s
}

func (s Service) ListProducts(ctx context.Context, q ListingQuery) ProductListing {
	products := s.fetchProducts(ctx)

	cfg := catalog.NewFilterConfig(products)
	maxPrice := cfg.PriceRange.Max

	cfg.SearchText = q.SearchText
	cfg.Categories = q.Categories
	cfg.MinRating = q.MinRating
	cfg.InStockOnly = q.InStockOnly
	if q.Sort != "" {
		cfg.Sort = q.Sort
	}
	if q.MinPrice != nil {
		cfg.PriceRange.Min = *q.MinPrice
	}
	if q.MaxPrice != nil {
		cfg.PriceRange.Max = *q.MaxPrice
	}

	return ProductListing{
		Products:   catalog.Derive(products, cfg),
		Categories: catalog.Categories(products),
		MaxPrice:   maxPrice,
		Filter:     cfg,
	}
}

// NewFilterConfig is the initial listing configuration for the current
// catalog, see [catalog.NewFilterConfig].
func (s Service) NewFilterConfig(ctx context.Context) domain.FilterConfig {
	return catalog.NewFilterConfig(s.fetchProducts(ctx))
}

func (s Service) Home(ctx context.Context) HomeView {
	products := s.fetchProducts(ctx)
	return HomeView{
		Featured:   catalog.Featured(products),
		ByCategory: catalog.ByCategory(products),
	}
}

// Product reports false both for unknown ids and for catalog failures.
func (s Service) Product(ctx context.Context, id int) (domain.Product, bool) {
	const op = "Service.Product"
	log := slog.With("op", op)

	p, err := s.catalog.GetProduct(ctx, id)
	if err != nil {
		if !errors.Is(err, port.ErrProductNotFound) {
			log.Error("failed to fetch product", "id", id, "err", err)
		}
		return domain.Product{}, false
	}
	return p, true
}

// fetchProducts degrades a failed fetch to an empty catalog.
func (s Service) fetchProducts(ctx context.Context) []domain.Product {
	const op = "Service.fetchProducts"
	log := slog.With("op", op)

	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		log.Error("failed to fetch products", "err", err)
		return []domain.Product{}
	}
	return products
}

// Cart returns the state of the session cart carried by ctx.
func (s Service) Cart(ctx context.Context) (cart.State, error) {
	const op = "Service.Cart"

	store, err := cart.FromContext(ctx)
	if err != nil {
		return cart.State{}, fmt.Errorf("%s: %w", op, err)
	}
	return store.State(), nil
}

// AddToCart puts a fresh catalog snapshot of the product into the cart.
//
// The requested quantity is kept within [1, stock], the line total may
// still grow beyond stock on repeated adds.
func (s Service) AddToCart(ctx context.Context, cmd AddToCartCommand) (cart.State, error) {
	const op = "Service.AddToCart"

	store, err := cart.FromContext(ctx)
	if err != nil {
		return cart.State{}, fmt.Errorf("%s: %w", op, err)
	}

	p, ok := s.Product(ctx, cmd.ProductID)
	if !ok {
		return cart.State{}, fmt.Errorf("%s: %w", op, ErrProductNotFound)
	}
	if !p.InStock() {
		return cart.State{}, fmt.Errorf("%s: %w", op, ErrOutOfStock)
	}

	qty := clamp(cmd.Quantity, 1, p.Stock)
	state := store.Dispatch(cart.AddItem{
		Product:  p,
		Quantity: qty,
		Size:     cmd.Size,
		Color:    cmd.Color,
	})

	s.publish(ctx, store, state, domain.CartEvent{
		Kind:      domain.CartItemAdded,
		ProductID: p.ID,
		Size:      cmd.Size,
		Color:     cmd.Color,
		Quantity:  qty,
		UnitPrice: p.Price,
	})
	return state, nil
}

// UpdateQuantity sets the line quantity, kept within [1, item stock].
func (s Service) UpdateQuantity(
	ctx context.Context, key domain.LineKey, qty int,
) (cart.State, error) {
	const op = "Service.UpdateQuantity"

	store, err := cart.FromContext(ctx)
	if err != nil {
		return cart.State{}, fmt.Errorf("%s: %w", op, err)
	}

	if qty < 1 {
		return cart.State{}, fmt.Errorf("%s: %w", op, ErrInvalidQuantity)
	}

	var (
		item  domain.LineItem
		found bool
	)
	state := store.DispatchFunc(func(cur cart.State) cart.Command {
		if item, found = cur.Item(key); !found {
			return nil
		}
		qty = clamp(qty, 1, item.Stock)
		return cart.SetQuantity{Key: key, Quantity: qty}
	})
	if !found {
		return cart.State{}, fmt.Errorf("%s: %w", op, ErrLineNotFound)
	}

	s.publish(ctx, store, state, domain.CartEvent{
		Kind:      domain.CartQuantitySet,
		ProductID: key.ProductID,
		Size:      key.Size,
		Color:     key.Color,
		Quantity:  qty,
		UnitPrice: item.Price,
	})
	return state, nil
}

// RemoveFromCart drops the line, removing an absent line is not an error.
func (s Service) RemoveFromCart(
	ctx context.Context, key domain.LineKey,
) (cart.State, error) {
	const op = "Service.RemoveFromCart"

	store, err := cart.FromContext(ctx)
	if err != nil {
		return cart.State{}, fmt.Errorf("%s: %w", op, err)
	}

	var (
		item    domain.LineItem
		existed bool
	)
	state := store.DispatchFunc(func(cur cart.State) cart.Command {
		item, existed = cur.Item(key)
		return cart.RemoveItem{Key: key}
	})

	if existed {
		s.publish(ctx, store, state, domain.CartEvent{
			Kind:      domain.CartItemRemoved,
			ProductID: key.ProductID,
			Size:      key.Size,
			Color:     key.Color,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
		})
	}
	return state, nil
}

// Checkout is a stub: it reports the totals and leaves the cart as is.
func (s Service) Checkout(ctx context.Context) (CheckoutSummary, error) {
	const op = "Service.Checkout"
	log := slog.With("op", op)

	store, err := cart.FromContext(ctx)
	if err != nil {
		return CheckoutSummary{}, fmt.Errorf("%s: %w", op, err)
	}

	state := store.State()
	summary := CheckoutSummary{
		SessionID:  store.SessionID(),
		Items:      state.TotalItems(),
		Subtotal:   state.TotalPrice(),
		Total:      state.TotalPrice(),
		OccurredAt: s.now(),
	}

	log.Info("proceeding to checkout",
		"session", summary.SessionID,
		"items", summary.Items,
		"total", summary.Total,
	)

	s.publish(ctx, store, state, domain.CartEvent{Kind: domain.CartCheckoutStarted})
	return summary, nil
}

func (s Service) publish(
	ctx context.Context, store *cart.Store, state cart.State, evt domain.CartEvent,
) {
	const op = "Service.publish"
	log := slog.With("op", op)

	if s.events == nil {
		return
	}

	evt.SessionID = store.SessionID()
	evt.CartItems = state.TotalItems()
	evt.CartTotal = state.TotalPrice()
	evt.OccurredAt = s.now()

	if err := s.events.ProduceCartEvent(ctx, evt); err != nil {
		log.Warn("failed to publish cart event", "kind", evt.Kind, "err", err)
	}
}

func clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
