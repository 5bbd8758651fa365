package domain

type SortKey string

const (
	SortDefault    SortKey = "default"
	SortPriceAsc   SortKey = "price-asc"
	SortPriceDesc  SortKey = "price-desc"
	SortRatingAsc  SortKey = "rating-asc"
	SortRatingDesc SortKey = "rating-desc"
)

// A PriceRange is inclusive on both ends.
type PriceRange struct {
	Min float64
	Max float64
}

func (r PriceRange) Contains(price float64) bool {
	return r.Min <= price && price <= r.Max
}

type FilterConfig struct {
	SearchText  string
	Categories  []string
	PriceRange  PriceRange
	MinRating   float64
	InStockOnly bool
	Sort        SortKey
}
