package order

import (
	"sync"

	"github.com/shopspring/decimal"
)

// StockDebiter is the slice of the stock ledger the book needs to commit an
// order.
type StockDebiter interface {
	Debit(name string, amount decimal.Decimal) bool
}

// Book owns the pending order queue, the committed order list, and the
// running revenue total.
//
// Revenue always equals the sum of TotalPrice over the committed list: both
// are only ever mutated together inside ProcessNext's critical section. An
// order in the committed list has had its quantity debited from the ledger
// exactly once.
type Book struct {
	mu        sync.Mutex
	pending   []Order
	committed []Order
	revenue   decimal.Decimal
}

// NewBook returns an empty order book.
func NewBook() *Book {
	return &Book{revenue: decimal.Zero}
}

// Enqueue appends an order to the pending queue. Stock is not checked here;
// availability is only decided at commit time, so orders may be queued
// against items that later run out.
func (b *Book) Enqueue(o Order) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, o)
}

// ProcessNext removes the head of the pending queue and attempts to commit
// it against the ledger. It returns true only when a commit happened.
//
// An order whose debit fails is discarded, not re-queued: an under-stocked
// order must not block the queue, and callers wanting a retry re-enqueue
// explicitly. Both the empty-queue case and the shortage case return false;
// the two are deliberately indistinguishable to the caller.
//
// The dequeue-then-debit sequence runs under the book mutex, so two
// concurrent calls can never pop the same head or double-debit an order.
func (b *Book) ProcessNext(ledger StockDebiter) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.pending) == 0 {
		return false
	}

	o := b.pending[0]
	b.pending = b.pending[1:]

	if !ledger.Debit(o.item.Name, o.quantity) {
		return false
	}

	b.committed = append(b.committed, o)
	b.revenue = b.revenue.Add(o.TotalPrice())
	return true
}

// Pending returns a copy of the pending queue in service order.
func (b *Book) Pending() []Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Order, len(b.pending))
	copy(out, b.pending)
	return out
}

// Committed returns a copy of the committed orders in commit order.
func (b *Book) Committed() []Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Order, len(b.committed))
	copy(out, b.committed)
	return out
}

// Revenue returns the accumulated revenue of all committed orders.
func (b *Book) Revenue() decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.revenue
}
