package httphandler

import (
	"strconv"

	"github.com/niksmo/storefront/internal/core/cart"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/service"
)

type (
	Product struct {
		ID                   int      `json:"id"`
		Title                string   `json:"title"`
		Description          string   `json:"description"`
		Category             string   `json:"category"`
		Brand                string   `json:"brand,omitempty"`
		Price                float64  `json:"price"`
		DiscountPercentage   float64  `json:"discount_percentage"`
		DiscountedPrice      float64  `json:"discounted_price"`
		Rating               float64  `json:"rating"`
		Stock                int      `json:"stock"`
		InStock              bool     `json:"in_stock"`
		Tags                 []string `json:"tags"`
		Images               []string `json:"images"`
		Thumbnail            string   `json:"thumbnail"`
		SKU                  string   `json:"sku,omitempty"`
		WarrantyInformation  string   `json:"warranty_information,omitempty"`
		ShippingInformation  string   `json:"shipping_information,omitempty"`
		AvailabilityStatus   string   `json:"availability_status,omitempty"`
		ReturnPolicy         string   `json:"return_policy,omitempty"`
		MinimumOrderQuantity int      `json:"minimum_order_quantity,omitempty"`
	}

	Filter struct {
		SearchText  string   `json:"q"`
		Categories  []string `json:"categories"`
		MinPrice    float64  `json:"min_price"`
		MaxPrice    float64  `json:"max_price"`
		MinRating   float64  `json:"min_rating"`
		InStockOnly bool     `json:"in_stock"`
		Sort        string   `json:"sort"`
	}

	ProductListing struct {
		Products   []Product `json:"products"`
		Total      int       `json:"total"`
		Categories []string  `json:"categories"`
		MaxPrice   float64   `json:"max_price"`
		Filter     Filter    `json:"filter"`
	}

	CategoryGroup struct {
		Category string    `json:"category"`
		Products []Product `json:"products"`
	}

	Home struct {
		Featured   []Product       `json:"featured"`
		ByCategory []CategoryGroup `json:"by_category"`
	}
)

type (
	CartLine struct {
		ProductID int     `json:"product_id"`
		Title     string  `json:"title"`
		Thumbnail string  `json:"thumbnail"`
		Price     float64 `json:"price"`
		Stock     int     `json:"stock"`
		Size      string  `json:"size"`
		Color     string  `json:"color"`
		Quantity  int     `json:"quantity"`
		Subtotal  float64 `json:"subtotal"`
	}

	Cart struct {
		Items      []CartLine `json:"items"`
		TotalItems int        `json:"total_items"`
		Subtotal   float64    `json:"subtotal"`
		Shipping   string     `json:"shipping"`
		Total      float64    `json:"total"`
	}

	AddItemRequest struct {
		ProductID int    `json:"product_id"`
		Quantity  int    `json:"quantity"`
		Size      string `json:"size"`
		Color     string `json:"color"`
	}

	// A LineRequest addresses a cart line, Quantity is read by PATCH only.
	LineRequest struct {
		ProductID int    `json:"product_id"`
		Size      string `json:"size"`
		Color     string `json:"color"`
		Quantity  int    `json:"quantity"`
	}

	Checkout struct {
		SessionID  string  `json:"session_id"`
		Items      int     `json:"items"`
		Subtotal   float64 `json:"subtotal"`
		Shipping   string  `json:"shipping"`
		Total      float64 `json:"total"`
		OccurredAt string  `json:"occurred_at"`
	}

	errorBody struct {
		Error string `json:"error"`
	}
)

func (r LineRequest) key() domain.LineKey {
	return domain.LineKey{ProductID: r.ProductID, Size: r.Size, Color: r.Color}
}

func toProduct(p domain.Product) Product {
	tags, images := p.Tags, p.Images
	if tags == nil {
		tags = []string{}
	}
	if images == nil {
		images = []string{}
	}
	return Product{
		ID:                   p.ID,
		Title:                p.Title,
		Description:          p.Description,
		Category:             p.Category,
		Brand:                p.Brand,
		Price:                p.Price,
		DiscountPercentage:   p.DiscountPercentage,
		DiscountedPrice:      p.DiscountedPrice(),
		Rating:               p.Rating,
		Stock:                p.Stock,
		InStock:              p.InStock(),
		Tags:                 tags,
		Images:               images,
		Thumbnail:            p.Thumbnail,
		SKU:                  p.SKU,
		WarrantyInformation:  p.WarrantyInformation,
		ShippingInformation:  p.ShippingInformation,
		AvailabilityStatus:   p.AvailabilityStatus,
		ReturnPolicy:         p.ReturnPolicy,
		MinimumOrderQuantity: p.MinimumOrderQuantity,
	}
}

func toProducts(ps []domain.Product) []Product {
	out := make([]Product, len(ps))
	for i := range ps {
		out[i] = toProduct(ps[i])
	}
	return out
}

func toListing(l service.ProductListing) ProductListing {
	categories := l.Categories
	if categories == nil {
		categories = []string{}
	}
	return ProductListing{
		Products:   toProducts(l.Products),
		Total:      len(l.Products),
		Categories: categories,
		MaxPrice:   l.MaxPrice,
		Filter:     toFilter(l.Filter),
	}
}

func toFilter(cfg domain.FilterConfig) Filter {
	categories := cfg.Categories
	if categories == nil {
		categories = []string{}
	}
	return Filter{
		SearchText:  cfg.SearchText,
		Categories:  categories,
		MinPrice:    cfg.PriceRange.Min,
		MaxPrice:    cfg.PriceRange.Max,
		MinRating:   cfg.MinRating,
		InStockOnly: cfg.InStockOnly,
		Sort:        string(cfg.Sort),
	}
}

func toHome(h service.HomeView) Home {
	groups := make([]CategoryGroup, len(h.ByCategory))
	for i, g := range h.ByCategory {
		groups[i] = CategoryGroup{
			Category: g.Category,
			Products: toProducts(g.Products),
		}
	}
	return Home{
		Featured:   toProducts(h.Featured),
		ByCategory: groups,
	}
}

func toCart(s cart.State) Cart {
	lines := make([]CartLine, len(s.Items))
	for i, item := range s.Items {
		lines[i] = CartLine{
			ProductID: item.ID,
			Title:     item.Title,
			Thumbnail: item.Thumbnail,
			Price:     item.Price,
			Stock:     item.Stock,
			Size:      item.Size,
			Color:     item.Color,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal(),
		}
	}
	total := s.TotalPrice()
	return Cart{
		Items:      lines,
		TotalItems: s.TotalItems(),
		Subtotal:   total,
		Shipping:   shippingLabel(0),
		Total:      total,
	}
}

func toCheckout(c service.CheckoutSummary) Checkout {
	return Checkout{
		SessionID:  c.SessionID,
		Items:      c.Items,
		Subtotal:   c.Subtotal,
		Shipping:   shippingLabel(c.Shipping),
		Total:      c.Total,
		OccurredAt: c.OccurredAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}

func shippingLabel(cost float64) string {
	if cost == 0 {
		return "free"
	}
	return strconv.FormatFloat(cost, 'f', 2, 64)
}
