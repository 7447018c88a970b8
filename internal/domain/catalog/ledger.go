package catalog

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// DefaultLowStockThreshold is used when callers do not supply their own
// threshold for LowStock queries.
var DefaultLowStockThreshold = decimal.NewFromInt(5)

// Ledger holds the item catalog and the per-item quantity on hand.
//
// Stock never goes negative: Debit performs its check-then-subtract as a
// single critical section and refuses any withdrawal that would overdraw.
// Stock rows may exist without a catalog entry (Credit auto-creates them),
// but such rows are invisible to catalog queries like LowStock.
type Ledger struct {
	mu      sync.RWMutex
	catalog map[string]Item
	stock   map[string]decimal.Decimal
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		catalog: make(map[string]Item),
		stock:   make(map[string]decimal.Decimal),
	}
}

// Register adds or overwrites the catalog entry for item and sets its stock
// to initial. Overwriting is allowed so seeding is idempotent. A negative
// initial quantity is clamped to zero to preserve the non-negativity
// invariant.
func (l *Ledger) Register(item Item, initial decimal.Decimal) {
	if initial.IsNegative() {
		initial = decimal.Zero
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.catalog[item.Name] = item
	l.stock[item.Name] = initial
}

// Credit adds amount to the stock row for name, creating the row at zero if
// it does not exist. This permits restocking without re-registering the
// catalog entry. Non-positive amounts are a no-op.
func (l *Ledger) Credit(name string, amount decimal.Decimal) {
	if !amount.IsPositive() {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.stock[name] = l.stock[name].Add(amount)
}

// Debit atomically subtracts amount from the stock row for name. It returns
// false without mutating anything when the row is missing, the amount is not
// positive, or the row holds less than amount.
func (l *Ledger) Debit(name string, amount decimal.Decimal) bool {
	if !amount.IsPositive() {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	have, ok := l.stock[name]
	if !ok || have.LessThan(amount) {
		return false
	}
	l.stock[name] = have.Sub(amount)
	return true
}

// Quantity reports the stock on hand for name. The second return value is
// false when no stock row exists.
func (l *Ledger) Quantity(name string) (decimal.Decimal, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	q, ok := l.stock[name]
	return q, ok
}

// Item returns the catalog entry for name.
func (l *Ledger) Item(name string) (Item, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	it, ok := l.catalog[name]
	return it, ok
}

// Items returns a snapshot of all catalog entries, sorted by name.
func (l *Ledger) Items() []Item {
	l.mu.RLock()
	defer l.mu.RUnlock()

	items := make([]Item, 0, len(l.catalog))
	for _, it := range l.catalog {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items
}

// LowStock returns every catalog item whose stock is strictly below
// threshold, sorted by name. Stock rows without a catalog entry are
// excluded.
func (l *Ledger) LowStock(threshold decimal.Decimal) []Item {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var items []Item
	for name, q := range l.stock {
		if q.GreaterThanOrEqual(threshold) {
			continue
		}
		if it, ok := l.catalog[name]; ok {
			items = append(items, it)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items
}
