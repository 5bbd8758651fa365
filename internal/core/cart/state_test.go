package cart_test

import (
	"testing"

	"github.com/niksmo/storefront/internal/core/cart"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	phone = domain.Product{
		ID: 1, Title: "Phone", Price: 100, DiscountPercentage: 10,
		Rating: 4.5, Stock: 50, Category: "A",
	}
	shirt = domain.Product{
		ID: 2, Title: "Shirt", Price: 20, Rating: 3.5, Stock: 5, Category: "B",
	}
)

type unknownCommand struct{ cart.AddItem }

func TestApplyAddItem(t *testing.T) {
	t.Run("NewLine", func(t *testing.T) {
		s := cart.Apply(cart.State{}, cart.AddItem{Product: phone, Quantity: 3})

		require.Len(t, s.Items, 1)
		assert.Equal(t, phone.ID, s.Items[0].ID)
		assert.Equal(t, 3, s.Items[0].Quantity)
		assert.Equal(t, phone.Price, s.Items[0].Price)
	})

	t.Run("ZeroQuantityDefaultsToOne", func(t *testing.T) {
		s := cart.Apply(cart.State{}, cart.AddItem{Product: phone})

		require.Len(t, s.Items, 1)
		assert.Equal(t, 1, s.Items[0].Quantity)
	})

	t.Run("SameKeySumsQuantities", func(t *testing.T) {
		s := cart.Apply(cart.State{}, cart.AddItem{Product: phone, Quantity: 2, Size: "M"})
		s = cart.Apply(s, cart.AddItem{Product: phone, Quantity: 5, Size: "M"})

		require.Len(t, s.Items, 1)
		assert.Equal(t, 7, s.Items[0].Quantity)
	})

	t.Run("NoClampAgainstStock", func(t *testing.T) {
		s := cart.Apply(cart.State{}, cart.AddItem{Product: shirt, Quantity: 4})
		s = cart.Apply(s, cart.AddItem{Product: shirt, Quantity: 4})

		require.Len(t, s.Items, 1)
		assert.Equal(t, 8, s.Items[0].Quantity)
	})

	t.Run("SizeMakesDistinctLine", func(t *testing.T) {
		s := cart.Apply(cart.State{}, cart.AddItem{Product: phone, Quantity: 1})
		s = cart.Apply(s, cart.AddItem{Product: phone, Quantity: 2, Size: "M"})

		require.Len(t, s.Items, 2)
		assert.Equal(t, 3, s.TotalItems())
		assert.Equal(t, "", s.Items[0].Size)
		assert.Equal(t, "M", s.Items[1].Size)
	})

	t.Run("ColorMakesDistinctLine", func(t *testing.T) {
		s := cart.Apply(cart.State{}, cart.AddItem{Product: shirt, Color: "red"})
		s = cart.Apply(s, cart.AddItem{Product: shirt, Color: "blue"})

		assert.Len(t, s.Items, 2)
	})

	t.Run("KeepsInsertionOrder", func(t *testing.T) {
		s := cart.Apply(cart.State{}, cart.AddItem{Product: shirt})
		s = cart.Apply(s, cart.AddItem{Product: phone})
		s = cart.Apply(s, cart.AddItem{Product: shirt})

		require.Len(t, s.Items, 2)
		assert.Equal(t, shirt.ID, s.Items[0].ID)
		assert.Equal(t, phone.ID, s.Items[1].ID)
	})
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	before := cart.Apply(cart.State{}, cart.AddItem{Product: phone, Quantity: 1})
	before = cart.Apply(before, cart.AddItem{Product: shirt, Quantity: 1})
	snapshot := append([]domain.LineItem(nil), before.Items...)

	after := cart.Apply(before, cart.AddItem{Product: phone, Quantity: 2})
	assert.Equal(t, snapshot, before.Items)
	assert.Equal(t, 3, after.Items[0].Quantity)

	after = cart.Apply(before, cart.SetQuantity{Key: before.Items[1].Key(), Quantity: 9})
	assert.Equal(t, snapshot, before.Items)
	assert.Equal(t, 9, after.Items[1].Quantity)

	after = cart.Apply(before, cart.RemoveItem{Key: before.Items[0].Key()})
	assert.Equal(t, snapshot, before.Items)
	assert.Len(t, after.Items, 1)

	after = cart.Apply(before, cart.AddItem{Product: phone, Size: "XL"})
	assert.Equal(t, snapshot, before.Items)
	assert.Len(t, after.Items, 3)
}

func TestApplyRemoveItem(t *testing.T) {
	s := cart.Apply(cart.State{}, cart.AddItem{Product: phone, Quantity: 1})
	s = cart.Apply(s, cart.AddItem{Product: phone, Quantity: 1, Size: "M"})
	s = cart.Apply(s, cart.AddItem{Product: shirt, Quantity: 2})

	t.Run("MatchingKey", func(t *testing.T) {
		got := cart.Apply(s, cart.RemoveItem{Key: domain.LineKey{ProductID: 1, Size: "M"}})

		require.Len(t, got.Items, 2)
		assert.Equal(t, s.Items[0], got.Items[0])
		assert.Equal(t, s.Items[2], got.Items[1])
	})

	t.Run("AbsentKeyIsNoop", func(t *testing.T) {
		got := cart.Apply(s, cart.RemoveItem{Key: domain.LineKey{ProductID: 1, Color: "red"}})

		require.Len(t, got.Items, len(s.Items))
		for i := range s.Items {
			assert.Equal(t, s.Items[i], got.Items[i])
		}
	})
}

func TestApplySetQuantity(t *testing.T) {
	s := cart.Apply(cart.State{}, cart.AddItem{Product: phone, Quantity: 1})

	t.Run("MatchingKey", func(t *testing.T) {
		got := cart.Apply(s, cart.SetQuantity{Key: s.Items[0].Key(), Quantity: 4})
		assert.Equal(t, 4, got.Items[0].Quantity)
	})

	t.Run("NoValidation", func(t *testing.T) {
		got := cart.Apply(s, cart.SetQuantity{Key: s.Items[0].Key(), Quantity: -2})
		assert.Equal(t, -2, got.Items[0].Quantity)
	})

	t.Run("AbsentKeyIsNoop", func(t *testing.T) {
		got := cart.Apply(s, cart.SetQuantity{Key: domain.LineKey{ProductID: 42}, Quantity: 4})
		assert.Equal(t, s.Items, got.Items)
	})
}

func TestApplyUnknownCommand(t *testing.T) {
	s := cart.Apply(cart.State{}, cart.AddItem{Product: phone})

	assert.Equal(t, s, cart.Apply(s, nil))
	assert.Equal(t, s, cart.Apply(s, unknownCommand{}))
}

func TestStateTotals(t *testing.T) {
	t.Run("EmptyCart", func(t *testing.T) {
		var s cart.State
		assert.Equal(t, 0, s.TotalItems())
		assert.Equal(t, 0.0, s.TotalPrice())
	})

	t.Run("SumOfLines", func(t *testing.T) {
		s := cart.Apply(cart.State{}, cart.AddItem{Product: phone, Quantity: 2})
		s = cart.Apply(s, cart.AddItem{Product: shirt, Quantity: 3, Color: "red"})

		assert.Equal(t, 5, s.TotalItems())
		assert.InDelta(t, 100*2+20*3, s.TotalPrice(), 1e-9)
	})

	t.Run("UsesPriceSnapshot", func(t *testing.T) {
		s := cart.Apply(cart.State{}, cart.AddItem{Product: phone, Quantity: 1})

		repriced := phone
		repriced.Price = 500
		s = cart.Apply(s, cart.AddItem{Product: repriced, Quantity: 1})

		require.Len(t, s.Items, 1)
		assert.InDelta(t, 200.0, s.TotalPrice(), 1e-9)
	})
}
