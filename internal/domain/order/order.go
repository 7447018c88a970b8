package order

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/kallerup/pickline/internal/domain/catalog"
)

// ErrNoItem is returned when an order is built without a catalog item.
var ErrNoItem = errors.New("order requires a catalog item")

// InvalidQuantityError indicates an order was built with a non-positive
// quantity.
type InvalidQuantityError struct {
	Item     string
	Quantity decimal.Decimal
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for item %s, got %s", e.Item, e.Quantity)
}

// Order is an immutable single-line order: one catalog item and a positive
// quantity. The item is a shared immutable handle; the catalog remains its
// sole owner.
type Order struct {
	item     catalog.Item
	quantity decimal.Decimal
}

// New validates its arguments and builds an Order. Validation failures are
// boundary errors; nothing enters the book until New has succeeded.
func New(item catalog.Item, quantity decimal.Decimal) (Order, error) {
	if item.Name == "" {
		return Order{}, ErrNoItem
	}
	if !quantity.IsPositive() {
		return Order{}, &InvalidQuantityError{Item: item.Name, Quantity: quantity}
	}
	return Order{item: item, quantity: quantity}, nil
}

// Item returns the ordered catalog item.
func (o Order) Item() catalog.Item { return o.item }

// Quantity returns the ordered quantity.
func (o Order) Quantity() decimal.Decimal { return o.quantity }

// TotalPrice returns price-per-unit times quantity.
func (o Order) TotalPrice() decimal.Decimal {
	return o.item.Price.Mul(o.quantity)
}

func (o Order) String() string {
	return fmt.Sprintf("%s x %s", o.item.Name, o.quantity)
}
