package order

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kallerup/pickline/internal/domain/catalog"
)

// countingDebiter records every debit attempt and answers a fixed verdict.
type countingDebiter struct {
	mu       sync.Mutex
	attempts int
	allow    bool
}

func (d *countingDebiter) Debit(string, decimal.Decimal) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.attempts++
	return d.allow
}

func seededLedger() *catalog.Ledger {
	l := catalog.NewLedger()
	l.Register(catalog.NewDiscreteItem("hydraulic pump", dec("8500"), dec("12")), dec("5"))
	l.Register(catalog.NewDiscreteItem("PLC module", dec("1200"), dec("0.4")), dec("10"))
	return l
}

func mustOrder(t *testing.T, l *catalog.Ledger, name, qty string) Order {
	t.Helper()
	it, ok := l.Item(name)
	require.True(t, ok)
	o, err := New(it, dec(qty))
	require.NoError(t, err)
	return o
}

func TestProcessNext_CommitsAndAccruesRevenue(t *testing.T) {
	l := seededLedger()
	b := NewBook()
	b.Enqueue(mustOrder(t, l, "hydraulic pump", "2"))

	require.True(t, b.ProcessNext(l))

	q, _ := l.Quantity("hydraulic pump")
	assert.True(t, dec("3").Equal(q))
	assert.True(t, dec("17000").Equal(b.Revenue()))

	committed := b.Committed()
	require.Len(t, committed, 1)
	assert.Equal(t, "hydraulic pump", committed[0].Item().Name)
	assert.Empty(t, b.Pending())
}

func TestProcessNext_ShortageDiscardsOrder(t *testing.T) {
	l := seededLedger()
	b := NewBook()
	b.Enqueue(mustOrder(t, l, "PLC module", "12"))

	require.False(t, b.ProcessNext(l))

	// Stock untouched, nothing committed, and the order is gone from the
	// queue as well: discard-on-shortage is the documented policy.
	q, _ := l.Quantity("PLC module")
	assert.True(t, dec("10").Equal(q))
	assert.True(t, b.Revenue().IsZero())
	assert.Empty(t, b.Committed())
	assert.Empty(t, b.Pending())
}

func TestProcessNext_EmptyQueueIsIdempotent(t *testing.T) {
	l := seededLedger()
	b := NewBook()

	for range 3 {
		assert.False(t, b.ProcessNext(l))
	}
	assert.True(t, b.Revenue().IsZero())
	assert.Empty(t, b.Committed())
}

// Shortage and empty queue both answer false; the caller cannot tell them
// apart. This is intentional behavior, not a bug.
func TestProcessNext_ShortageIndistinguishableFromEmptyQueue(t *testing.T) {
	l := seededLedger()
	b := NewBook()
	b.Enqueue(mustOrder(t, l, "PLC module", "999"))

	shortage := b.ProcessNext(l)
	empty := b.ProcessNext(l)

	assert.Equal(t, shortage, empty)
	assert.False(t, shortage)
}

func TestProcessNext_ShortedOrderCanBeReEnqueued(t *testing.T) {
	l := seededLedger()
	b := NewBook()
	o := mustOrder(t, l, "PLC module", "12")

	b.Enqueue(o)
	require.False(t, b.ProcessNext(l))

	// Retry is the caller's concern: restock and enqueue again.
	l.Credit("PLC module", dec("5"))
	b.Enqueue(o)
	require.True(t, b.ProcessNext(l))

	q, _ := l.Quantity("PLC module")
	assert.True(t, dec("3").Equal(q))
}

func TestProcessNext_RevenueMatchesCommittedOrders(t *testing.T) {
	l := seededLedger()
	b := NewBook()
	b.Enqueue(mustOrder(t, l, "hydraulic pump", "1"))
	b.Enqueue(mustOrder(t, l, "PLC module", "20")) // will be discarded
	b.Enqueue(mustOrder(t, l, "PLC module", "3"))

	for range 3 {
		b.ProcessNext(l)
	}

	want := decimal.Zero
	for _, o := range b.Committed() {
		want = want.Add(o.TotalPrice())
	}
	assert.True(t, want.Equal(b.Revenue()))
	assert.True(t, dec("12100").Equal(b.Revenue()))
}

func TestProcessNext_DebitAttemptedExactlyOncePerOrder(t *testing.T) {
	l := seededLedger()
	b := NewBook()
	d := &countingDebiter{allow: true}
	b.Enqueue(mustOrder(t, l, "hydraulic pump", "1"))

	require.True(t, b.ProcessNext(d))
	require.False(t, b.ProcessNext(d))

	assert.Equal(t, 1, d.attempts)
	assert.Len(t, b.Committed(), 1)
}

func TestProcessNext_ConcurrentCallsNeverShareAHead(t *testing.T) {
	l := seededLedger()
	b := NewBook()
	d := &countingDebiter{allow: true}

	const n = 50
	for range n {
		b.Enqueue(mustOrder(t, l, "hydraulic pump", "1"))
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		processed int
	)
	for range n * 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if b.ProcessNext(d) {
				mu.Lock()
				processed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, n, processed)
	assert.Equal(t, n, d.attempts)
	assert.Len(t, b.Committed(), n)
	assert.Empty(t, b.Pending())
}

func TestEnqueue_ConcurrentWithProcessing(t *testing.T) {
	l := catalog.NewLedger()
	l.Register(catalog.NewDiscreteItem("servo", dec("4300"), dec("1.1")), dec("1000"))
	b := NewBook()
	o := mustOrder(t, l, "servo", "1")

	const n = 100
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Enqueue(o)
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.ProcessNext(l)
		}()
	}
	wg.Wait()

	// Drain whatever the racing processors left behind.
	for b.ProcessNext(l) {
	}

	// Every enqueued order was committed exactly once, none lost.
	assert.Len(t, b.Committed(), n)
	q, _ := l.Quantity("servo")
	assert.True(t, dec("900").Equal(q))
}

func TestSnapshots_AreCopies(t *testing.T) {
	l := seededLedger()
	b := NewBook()
	b.Enqueue(mustOrder(t, l, "hydraulic pump", "1"))

	pending := b.Pending()
	require.Len(t, pending, 1)
	pending[0] = Order{}

	// Mutating the snapshot must not touch the book.
	assert.Equal(t, "hydraulic pump", b.Pending()[0].Item().Name)
}
