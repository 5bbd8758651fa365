// Package catalog derives the product views shown by the storefront.
//
// All functions are pure: the input slice is never reordered or modified.
package catalog

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/niksmo/storefront/internal/core/domain"
)

const (
	featuredMinRating = 4
	featuredLimit     = 10
	categoryLimit     = 10
)

var ErrUnknownSortKey = errors.New("unknown sort key")

type stage func(domain.Product) bool

// Derive applies cfg to products.
//
// Filters run in a fixed order (text, category, price, rating, stock)
// and the survivors are stable sorted by cfg.Sort.
func Derive(products []domain.Product, cfg domain.FilterConfig) []domain.Product {
	stages := []stage{
		textStage(cfg.SearchText),
		categoryStage(cfg.Categories),
		priceStage(cfg.PriceRange),
		ratingStage(cfg.MinRating),
		stockStage(cfg.InStockOnly),
	}

	result := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if keep(p, stages) {
			result = append(result, p)
		}
	}

	sortProducts(result, cfg.Sort)
	return result
}

func keep(p domain.Product, stages []stage) bool {
	for _, s := range stages {
		if s != nil && !s(p) {
			return false
		}
	}
	return true
}

func textStage(text string) stage {
	if text == "" {
		return nil
	}
	needle := strings.ToLower(text)
	return func(p domain.Product) bool {
		return strings.Contains(strings.ToLower(p.Title), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle)
	}
}

func categoryStage(categories []string) stage {
	if len(categories) == 0 {
		return nil
	}
	return func(p domain.Product) bool {
		return slices.Contains(categories, p.Category)
	}
}

func priceStage(r domain.PriceRange) stage {
	return func(p domain.Product) bool {
		return r.Contains(p.Price)
	}
}

func ratingStage(minRating float64) stage {
	if minRating == 0 {
		return nil
	}
	return func(p domain.Product) bool {
		return p.Rating >= minRating
	}
}

func stockStage(inStockOnly bool) stage {
	if !inStockOnly {
		return nil
	}
	return domain.Product.InStock
}

func sortProducts(ps []domain.Product, key domain.SortKey) {
	var cmpFn func(a, b domain.Product) int

	switch key {
	case domain.SortPriceAsc:
		cmpFn = func(a, b domain.Product) int { return cmp.Compare(a.Price, b.Price) }
	case domain.SortPriceDesc:
		cmpFn = func(a, b domain.Product) int { return cmp.Compare(b.Price, a.Price) }
	case domain.SortRatingAsc:
		cmpFn = func(a, b domain.Product) int { return cmp.Compare(a.Rating, b.Rating) }
	case domain.SortRatingDesc:
		cmpFn = byRatingDesc
	default:
		return
	}

	slices.SortStableFunc(ps, cmpFn)
}

func byRatingDesc(a, b domain.Product) int {
	return cmp.Compare(b.Rating, a.Rating)
}

// ParseSortKey accepts the canonical keys and the labels used by the
// storefront UI ("price-low-high" and so on). Empty string is the default.
func ParseSortKey(s string) (domain.SortKey, error) {
	const op = "catalog.ParseSortKey"

	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return domain.SortDefault, nil
	case "price-asc", "price-low-high":
		return domain.SortPriceAsc, nil
	case "price-desc", "price-high-low":
		return domain.SortPriceDesc, nil
	case "rating-asc", "rating-low-high":
		return domain.SortRatingAsc, nil
	case "rating-desc", "rating-high-low":
		return domain.SortRatingDesc, nil
	}
	return "", fmt.Errorf("%s: %w: %q", op, ErrUnknownSortKey, s)
}
