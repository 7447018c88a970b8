package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind discriminates the two item variants carried by the catalog.
type Kind uint8

const (
	// Discrete items are sold per piece and carry a unit weight.
	Discrete Kind = iota
	// Bulk items are sold by measure (kg, litre, ...) and carry the unit name.
	Bulk
)

// Item is an immutable catalog entry. Name is the unique key; Price is the
// price per unit (per piece for Discrete, per measurement unit for Bulk).
// Only the fields matching Kind are meaningful: Weight for Discrete, Unit
// for Bulk.
type Item struct {
	Name   string
	Price  decimal.Decimal
	Kind   Kind
	Weight decimal.Decimal
	Unit   string
}

// NewDiscreteItem creates a per-piece item with the given unit weight in kg.
func NewDiscreteItem(name string, price, weight decimal.Decimal) Item {
	return Item{Name: name, Price: price, Kind: Discrete, Weight: weight}
}

// NewBulkItem creates a by-measure item priced per the given unit.
func NewBulkItem(name string, price decimal.Decimal, unit string) Item {
	return Item{Name: name, Price: price, Kind: Bulk, Unit: unit}
}

// Describe returns a human-readable one-line description of the item,
// dispatching over the variant tag.
func (i Item) Describe() string {
	switch i.Kind {
	case Bulk:
		return fmt.Sprintf("%s (%s DKK/%s)", i.Name, i.Price.String(), i.Unit)
	default:
		return fmt.Sprintf("%s (%s DKK/unit, %s kg)", i.Name, i.Price.String(), i.Weight.String())
	}
}
