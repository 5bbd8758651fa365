package catalogapi

import "github.com/niksmo/storefront/internal/core/domain"

type (
	productsEnvelope struct {
		Products []product `json:"products"`
		Total    int       `json:"total"`
		Skip     int       `json:"skip"`
		Limit    int       `json:"limit"`
	}

	product struct {
		ID                   int      `json:"id"`
		Title                string   `json:"title"`
		Description          string   `json:"description"`
		Category             string   `json:"category"`
		Price                float64  `json:"price"`
		DiscountPercentage   float64  `json:"discountPercentage"`
		Rating               float64  `json:"rating"`
		Stock                int      `json:"stock"`
		Tags                 []string `json:"tags"`
		Brand                string   `json:"brand"`
		SKU                  string   `json:"sku"`
		WarrantyInformation  string   `json:"warrantyInformation"`
		ShippingInformation  string   `json:"shippingInformation"`
		AvailabilityStatus   string   `json:"availabilityStatus"`
		ReturnPolicy         string   `json:"returnPolicy"`
		MinimumOrderQuantity int      `json:"minimumOrderQuantity"`
		Images               []string `json:"images"`
		Thumbnail            string   `json:"thumbnail"`
	}
)

func (p product) toDomain() domain.Product {
	return domain.Product{
		ID:                   p.ID,
		Title:                p.Title,
		Description:          p.Description,
		Price:                p.Price,
		DiscountPercentage:   p.DiscountPercentage,
		Rating:               p.Rating,
		Stock:                p.Stock,
		Brand:                p.Brand,
		Category:             p.Category,
		Tags:                 p.Tags,
		Images:               p.Images,
		Thumbnail:            p.Thumbnail,
		SKU:                  p.SKU,
		WarrantyInformation:  p.WarrantyInformation,
		ShippingInformation:  p.ShippingInformation,
		AvailabilityStatus:   p.AvailabilityStatus,
		ReturnPolicy:         p.ReturnPolicy,
		MinimumOrderQuantity: p.MinimumOrderQuantity,
	}
}

func toDomain(ps []product) []domain.Product {
	out := make([]domain.Product, len(ps))
	for i := range ps {
		out[i] = ps[i].toDomain()
	}
	return out
}
