package port

import (
	"context"
	"errors"

	"github.com/niksmo/storefront/internal/core/domain"
)

// ErrProductNotFound is returned by [CatalogClient.GetProduct] for unknown ids.
var ErrProductNotFound = errors.New("product not found")

type closer interface {
	Close()
}

type CatalogClient interface {
	ListProducts(context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int) (domain.Product, error)
}

type CartEventsProducer interface {
	ProduceCartEvent(context.Context, domain.CartEvent) error
	closer
}
