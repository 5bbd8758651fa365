package domain

import "time"

type (
	// A LineKey identifies a cart line: the same product with another
	// size or color is a different line. Empty Size or Color means
	// "not selected".
	LineKey struct {
		ProductID int
		Size      string
		Color     string
	}

	// A LineItem holds the product as it was when it was added to the cart.
	LineItem struct {
		Product
		Size     string
		Color    string
		Quantity int
	}
)

func (li LineItem) Key() LineKey {
	return LineKey{ProductID: li.ID, Size: li.Size, Color: li.Color}
}

func (li LineItem) Subtotal() float64 {
	return li.Price * float64(li.Quantity)
}

type CartEventKind string

const (
	CartItemAdded       CartEventKind = "added"
	CartItemRemoved     CartEventKind = "removed"
	CartQuantitySet     CartEventKind = "quantity_set"
	CartCheckoutStarted CartEventKind = "checkout"
)

// A CartEvent describes a cart change of a single session.
type CartEvent struct {
	SessionID  string
	Kind       CartEventKind
	ProductID  int
	Size       string
	Color      string
	Quantity   int
	UnitPrice  float64
	CartItems  int
	CartTotal  float64
	OccurredAt time.Time
}
