package cart

import "github.com/niksmo/storefront/internal/core/domain"

// A Command is one of [AddItem], [RemoveItem] or [SetQuantity].
type Command interface {
	isCommand()
}

// AddItem puts Product into the cart.
//
// Quantity is added to the existing line with the same key. A new line
// gets Quantity, or 1 when Quantity is zero.
type AddItem struct {
	Product  domain.Product
	Quantity int
	Size     string
	Color    string
}

// RemoveItem deletes the line with Key.
type RemoveItem struct {
	Key domain.LineKey
}

// SetQuantity replaces the quantity of the line with Key.
//
// Quantity is not validated, callers clamp it before dispatch.
type SetQuantity struct {
	Key      domain.LineKey
	Quantity int
}

func (AddItem) isCommand()     {}
func (RemoveItem) isCommand()  {}
func (SetQuantity) isCommand() {}

func (c AddItem) key() domain.LineKey {
	return domain.LineKey{ProductID: c.Product.ID, Size: c.Size, Color: c.Color}
}
