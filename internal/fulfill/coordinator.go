// Package fulfill orchestrates order fulfillment: it drives the order book's
// commit protocol against the stock ledger and triggers the actuator after a
// successful commit. It is the composition root external callers talk to.
package fulfill

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kallerup/pickline/internal/domain/catalog"
	"github.com/kallerup/pickline/internal/domain/order"
)

// ErrUnknownItem is returned when an order references an item that is not in
// the catalog.
var ErrUnknownItem = errors.New("unknown catalog item")

// Dispatcher sends the pick/place program to the actuator. Implemented by
// robot.Client.
type Dispatcher interface {
	ReleaseAndRun(ctx context.Context) error
}

// Snapshot is a read-only view of the book for external callers.
type Snapshot struct {
	Pending   []order.Order
	Committed []order.Order
	Revenue   decimal.Decimal
}

// Result reports the outcome of a FulfillNext call. Processed is false both
// when the queue was empty and when the head order was discarded for
// insufficient stock.
type Result struct {
	Processed bool
	Snapshot  Snapshot
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithMetrics wires the fulfillment counters.
func WithMetrics(m Metrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// WithDispatchTimeout bounds a single actuator dispatch. The default is 30s.
func WithDispatchTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.dispatchTimeout = d }
}

// WithDispatchObserver registers a callback invoked with the outcome of
// every actuator dispatch. The dispatch itself never reports through the
// caller's control flow; this hook is the only way to observe it.
func WithDispatchObserver(fn func(error)) Option {
	return func(c *Coordinator) { c.onDispatch = fn }
}

// Coordinator ties the ledger, the order book, and the actuator link
// together. The ledger commit is always finalized before the actuator
// dispatch starts: a sale is final the moment stock is debited, whether or
// not the physical motion ever completes.
type Coordinator struct {
	ledger *catalog.Ledger
	book   *order.Book
	robot  Dispatcher
	lg     *zap.Logger

	metrics         Metrics
	dispatchTimeout time.Duration
	onDispatch      func(error)

	// wg tracks in-flight dispatches so Close can drain them.
	wg sync.WaitGroup
}

// NewCoordinator builds a Coordinator over the given collaborators.
func NewCoordinator(ledger *catalog.Ledger, book *order.Book, robot Dispatcher, lg *zap.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		ledger:          ledger,
		book:            book,
		robot:           robot,
		lg:              lg,
		dispatchTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ledger exposes the stock ledger for catalog and stock operations.
func (c *Coordinator) Ledger() *catalog.Ledger { return c.ledger }

// Enqueue validates the request against the catalog and appends a new order
// to the pending queue. Stock is not checked here; shortage is only decided
// at commit time.
func (c *Coordinator) Enqueue(name string, quantity decimal.Decimal) (order.Order, error) {
	item, ok := c.ledger.Item(name)
	if !ok {
		return order.Order{}, errors.Wrapf(ErrUnknownItem, "%q", name)
	}
	o, err := order.New(item, quantity)
	if err != nil {
		return order.Order{}, err
	}
	c.book.Enqueue(o)

	c.lg.Info("order enqueued",
		zap.String("item", name),
		zap.String("quantity", quantity.String()))
	return o, nil
}

// FulfillNext processes the head of the pending queue. On a successful
// commit it fires the actuator dispatch on a detached goroutine and returns
// without waiting for it; a dispatch fault never rolls back the commit. The
// returned snapshot reflects the book state after the commit.
func (c *Coordinator) FulfillNext(ctx context.Context) Result {
	processed := c.book.ProcessNext(c.ledger)
	if processed {
		c.metrics.addCommitted(ctx)
		c.dispatch()
	}
	return Result{Processed: processed, Snapshot: c.Snapshot()}
}

// dispatch launches the actuator call in the background. The context is
// detached deliberately: once sent, the program runs to completion on the
// controller regardless of the local caller's lifetime.
func (c *Coordinator) dispatch() {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), c.dispatchTimeout)
		defer cancel()

		err := c.robot.ReleaseAndRun(ctx)
		if err != nil {
			c.metrics.addDispatchFailure(ctx)
			c.lg.Warn("actuator dispatch failed", zap.Error(err))
		} else {
			c.lg.Info("actuator dispatch completed")
		}
		if c.onDispatch != nil {
			c.onDispatch(err)
		}
	}()
}

// Snapshot returns the current read views of the book.
func (c *Coordinator) Snapshot() Snapshot {
	return Snapshot{
		Pending:   c.book.Pending(),
		Committed: c.book.Committed(),
		Revenue:   c.book.Revenue(),
	}
}

// Close waits for in-flight actuator dispatches to finish. It does not
// cancel them; there is no cancellation for a dispatch once started.
func (c *Coordinator) Close() {
	c.wg.Wait()
}
