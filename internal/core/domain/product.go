package domain

type (
	Product struct {
		ID                   int
		Title                string
		Description          string
		Price                float64
		DiscountPercentage   float64
		Rating               float64
		Stock                int
		Brand                string
		Category             string
		Tags                 []string
		Images               []string
		Thumbnail            string
		SKU                  string
		WarrantyInformation  string
		ShippingInformation  string
		AvailabilityStatus   string
		ReturnPolicy         string
		MinimumOrderQuantity int
	}

	// A CategoryGroup is a category with the products shown under it.
	CategoryGroup struct {
		Category string
		Products []Product
	}
)

// DiscountedPrice returns the price after DiscountPercentage is applied.
//
// Percentages above 100 produce a negative price, it's up to the caller
// to keep discounts in range.
func (p Product) DiscountedPrice() float64 {
	return p.Price * (1 - p.DiscountPercentage/100)
}

func (p Product) InStock() bool {
	return p.Stock > 0
}
