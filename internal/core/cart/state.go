package cart

import "github.com/niksmo/storefront/internal/core/domain"

// A State is an immutable cart snapshot.
//
// Items keep insertion order and never share a [domain.LineKey].
type State struct {
	Items []domain.LineItem
}

// Apply returns the state that results from cmd.
//
// s is never modified: every transition gets its own Items slice.
// Unknown commands return s as is.
func Apply(s State, cmd Command) State {
	switch c := cmd.(type) {
	case AddItem:
		return s.add(c)
	case RemoveItem:
		return s.remove(c.Key)
	case SetQuantity:
		return s.setQuantity(c.Key, c.Quantity)
	default:
		return s
	}
}

func (s State) add(c AddItem) State {
	key := c.key()
	if i := s.index(key); i != -1 {
		items := s.clone()
		items[i].Quantity += c.Quantity
		return State{Items: items}
	}

	qty := c.Quantity
	if qty == 0 {
		qty = 1
	}

	items := make([]domain.LineItem, len(s.Items), len(s.Items)+1)
	copy(items, s.Items)
	items = append(items, domain.LineItem{
		Product:  c.Product,
		Size:     c.Size,
		Color:    c.Color,
		Quantity: qty,
	})
	return State{Items: items}
}

func (s State) remove(key domain.LineKey) State {
	items := make([]domain.LineItem, 0, len(s.Items))
	for _, item := range s.Items {
		if item.Key() == key {
			continue
		}
		items = append(items, item)
	}
	return State{Items: items}
}

func (s State) setQuantity(key domain.LineKey, qty int) State {
	items := s.clone()
	if i := s.index(key); i != -1 {
		items[i].Quantity = qty
	}
	return State{Items: items}
}

func (s State) index(key domain.LineKey) int {
	for i, item := range s.Items {
		if item.Key() == key {
			return i
		}
	}
	return -1
}

func (s State) clone() []domain.LineItem {
	items := make([]domain.LineItem, len(s.Items))
	copy(items, s.Items)
	return items
}

// Item returns the line with key.
func (s State) Item(key domain.LineKey) (domain.LineItem, bool) {
	if i := s.index(key); i != -1 {
		return s.Items[i], true
	}
	return domain.LineItem{}, false
}

func (s State) TotalItems() int {
	var total int
	for _, item := range s.Items {
		total += item.Quantity
	}
	return total
}

// TotalPrice sums the price snapshots, later catalog price changes
// don't affect it.
func (s State) TotalPrice() float64 {
	var total float64
	for _, item := range s.Items {
		total += item.Subtotal()
	}
	return total
}
