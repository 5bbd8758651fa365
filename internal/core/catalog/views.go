package catalog

import (
	"slices"

	"github.com/niksmo/storefront/internal/core/domain"
)

// Featured returns the best rated products (rating 4 and above), highest
// rating first, at most ten.
func Featured(products []domain.Product) []domain.Product {
	featured := make([]domain.Product, 0, featuredLimit)
	for _, p := range products {
		if p.Rating >= featuredMinRating {
			featured = append(featured, p)
		}
	}
	slices.SortStableFunc(featured, byRatingDesc)
	return truncate(featured, featuredLimit)
}

// ByCategory groups products by category in order of first appearance.
// Every group keeps at most ten products in source order.
func ByCategory(products []domain.Product) []domain.CategoryGroup {
	groups := make([]domain.CategoryGroup, 0)
	index := make(map[string]int)

	for _, p := range products {
		i, ok := index[p.Category]
		if !ok {
			i = len(groups)
			index[p.Category] = i
			groups = append(groups, domain.CategoryGroup{Category: p.Category})
		}
		if len(groups[i].Products) < categoryLimit {
			groups[i].Products = append(groups[i].Products, p)
		}
	}
	return groups
}

// Categories returns distinct categories in order of first appearance.
func Categories(products []domain.Product) []string {
	categories := make([]string, 0)
	seen := make(map[string]struct{})
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	return categories
}

func MaxPrice(products []domain.Product) float64 {
	var highest float64
	for i, p := range products {
		if i == 0 || p.Price > highest {
			highest = p.Price
		}
	}
	return highest
}

// NewFilterConfig returns the configuration a listing starts with: every
// product from 0 up to the highest price, in source order.
func NewFilterConfig(products []domain.Product) domain.FilterConfig {
	return domain.FilterConfig{
		PriceRange: domain.PriceRange{Min: 0, Max: MaxPrice(products)},
		Sort:       domain.SortDefault,
	}
}

func truncate(ps []domain.Product, n int) []domain.Product {
	if len(ps) > n {
		return ps[:n]
	}
	return ps
}
