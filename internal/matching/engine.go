package matching

// Engine owns the instrument registry and the global order index, and is
// the entry point client commands are submitted through. Unlike the
// original C++ engine, the index is a field here rather than a package
// static, so nothing prevents running more than one Engine in a process
// (e.g. in tests).
type Engine struct {
	books *ShardedMap[string, *OrderBook]
	index *ShardedMap[uint32, *Order]
	sink  Sink
	clock Clock
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithSink overrides the default NopSink.
func WithSink(sink Sink) Option {
	return func(e *Engine) { e.sink = sink }
}

// WithClock overrides the default SystemClock.
func WithClock(clock Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// New builds an Engine with an empty instrument registry and order index.
func New(opts ...Option) *Engine {
	e := &Engine{
		books: NewShardedMap[string, *OrderBook](defaultShardCount, HashString),
		index: NewShardedMap[uint32, *Order](defaultShardCount, HashUint32),
		sink:  NopSink{},
		clock: SystemClock{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SubmitNew runs a new-order command to completion: register it in the
// order index, resolve (creating if necessary) its instrument's book, and
// run the book's match-then-rest lifecycle.
func (e *Engine) SubmitNew(cmd NewOrderCommand) {
	order := &Order{
		OrderID:    cmd.OrderID,
		Side:       cmd.Side,
		Instrument: cmd.Instrument,
		Price:      cmd.Price,
		Count:      cmd.Count,
	}
	e.index.Store(order.OrderID, order)

	book := e.resolveBook(cmd.Instrument)
	book.submit(order)
}

// SubmitCancel runs a cancel command to completion. If the order_id is
// unknown to the index, OrderDeleted(accepted=false) is emitted directly;
// otherwise the cancel is delegated to the order's book, which emits the
// event itself once it knows whether the order was still resting.
func (e *Engine) SubmitCancel(cmd CancelCommand) {
	order, ok := e.index.Load(cmd.OrderID)
	if !ok {
		e.sink.OrderDeleted(cmd.OrderID, false, e.clock.Now())
		return
	}

	book, ok := e.books.Load(order.Instrument)
	if !ok {
		e.sink.OrderDeleted(cmd.OrderID, false, e.clock.Now())
		return
	}

	book.cancel(order)
}

// Book returns the order book for instrument, if one has been created.
func (e *Engine) Book(instrument string) (*OrderBook, bool) {
	return e.books.Load(instrument)
}

// Shutdown drops every instrument's book and the entire order index,
// leaving the Engine ready for reuse as an empty market.
func (e *Engine) Shutdown() {
	e.books.Clear()
	e.index.Clear()
}

func (e *Engine) resolveBook(instrument string) *OrderBook {
	if b, ok := e.books.Load(instrument); ok {
		return b
	}
	return e.books.LoadOrStore(instrument, newOrderBook(instrument, e))
}
