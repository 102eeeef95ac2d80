package matching

import "sync"

// OrderBook holds the resting orders for a single instrument: one sorted
// price-level list per side, each traversed and mutated hand-over-hand so
// independent price levels never serialize against each other. bookMu only
// ever guards the handoff of both dummy locks at the start of a new-order
// submission; it is never held across a match or a rest.
type OrderBook struct {
	instrument string
	bookMu     sync.Mutex
	buy        *sideBook
	sell       *sideBook
	engine     *Engine
}

func newOrderBook(instrument string, engine *Engine) *OrderBook {
	return &OrderBook{
		instrument: instrument,
		buy:        newSideBook(true),
		sell:       newSideBook(false),
		engine:     engine,
	}
}

// submit runs the full new-order lifecycle: lock both dummies under the
// book lock, match against the opposite side, then rest whatever remains
// of the active order on its own side.
func (ob *OrderBook) submit(order *Order) {
	var own, opp *sideBook
	if order.Side == Buy {
		own, opp = ob.buy, ob.sell
	} else {
		own, opp = ob.sell, ob.buy
	}

	ob.bookMu.Lock()
	own.dummy.mu.Lock()
	opp.dummy.mu.Lock()
	ob.bookMu.Unlock()

	ob.match(opp, order)

	if order.Count > 0 {
		ob.rest(own, order)
	} else {
		own.dummy.mu.Unlock()
		ob.engine.index.Delete(order.OrderID)
	}
}

// match walks the opposite side hand-over-hand, consuming price levels that
// cross against the active order, until either side is exhausted or a
// non-crossing level is reached. The caller must hold opp.dummy.mu; match
// releases every lock it touches before returning.
func (ob *OrderBook) match(opp *sideBook, active *Order) {
	prev := opp.dummy
	curr := prev.next
	currLocked := false

	for curr != nil && active.Count > 0 {
		curr.mu.Lock()
		currLocked = true

		if !crosses(active.Side, active.Price, curr.price) {
			break
		}

		ob.fill(curr, active)

		if len(curr.orders) == 0 {
			prev.next = curr.next
			curr.mu.Unlock()
			currLocked = false
			curr = prev.next
			continue
		}

		// Level still holds orders, which only happens once active is
		// exhausted. Hand the outer lock over to curr and stop; curr's
		// lock is released below as prev.
		prev.mu.Unlock()
		prev = curr
		curr = curr.next
		currLocked = false
		break
	}

	prev.mu.Unlock()
	if currLocked {
		curr.mu.Unlock()
	}
}

// fill matches active against the resting orders of level in arrival order,
// compacting the level's order slice in place and emitting one
// OrderExecuted event per partial or full fill. Orders that reach zero
// count are dropped from the level and from the order index.
func (ob *OrderBook) fill(level *priceLevel, active *Order) {
	n := 0
	for _, resting := range level.orders {
		if active.Count == 0 {
			level.orders[n] = resting
			n++
			continue
		}

		qty := active.Count
		if resting.Count < qty {
			qty = resting.Count
		}
		active.Count -= qty
		resting.Count -= qty
		level.totalVolume -= uint64(qty)
		resting.ExecutionID++

		ts := ob.engine.clock.Now()
		ob.engine.sink.OrderExecuted(resting.OrderID, active.OrderID, resting.ExecutionID, level.price, qty, ts)

		if resting.Count == 0 {
			ob.engine.index.Delete(resting.OrderID)
			continue
		}
		level.orders[n] = resting
		n++
	}
	level.orders = level.orders[:n]
}

// rest splices order onto own side in price-time order, creating a new
// price level if none exists at its price, and emits OrderAdded. The
// caller must hold own.dummy.mu; rest releases every lock it touches
// before returning.
func (ob *OrderBook) rest(own *sideBook, order *Order) {
	prev := own.dummy
	curr := prev.next
	currLocked := false

	for curr != nil {
		curr.mu.Lock()
		currLocked = true

		if !outOfRange(own.isBuy, curr.price, order.Price) {
			break
		}

		prev.mu.Unlock()
		prev = curr
		curr = curr.next
		currLocked = false
	}

	if currLocked && curr.price == order.Price {
		curr.orders = append(curr.orders, order)
		curr.totalVolume += uint64(order.Count)
		curr.mu.Unlock()
	} else {
		level := &priceLevel{
			price:       order.Price,
			orders:      []*Order{order},
			totalVolume: uint64(order.Count),
			next:        curr,
		}
		prev.next = level
		if currLocked {
			curr.mu.Unlock()
		}
	}
	prev.mu.Unlock()

	ts := ob.engine.clock.Now()
	ob.engine.sink.OrderAdded(order.OrderID, ob.instrument, order.Price, order.Count, order.Side == Sell, ts)
}

// cancel removes order from its resting side, if still present, and emits
// OrderDeleted reporting whether it was found. cancel acquires only the
// own-side dummy lock; it never touches bookMu or the opposite side.
func (ob *OrderBook) cancel(order *Order) {
	var own *sideBook
	if order.Side == Buy {
		own = ob.buy
	} else {
		own = ob.sell
	}

	own.dummy.mu.Lock()
	prev := own.dummy
	curr := prev.next

	for curr != nil {
		curr.mu.Lock()

		if curr.price == order.Price {
			removed := ob.removeFromLevel(prev, curr, order)
			ts := ob.engine.clock.Now()
			ob.engine.sink.OrderDeleted(order.OrderID, removed, ts)
			return
		}

		if passedInsertionPoint(own.isBuy, curr.price, order.Price) {
			curr.mu.Unlock()
			prev.mu.Unlock()
			ts := ob.engine.clock.Now()
			ob.engine.sink.OrderDeleted(order.OrderID, false, ts)
			return
		}

		prev.mu.Unlock()
		prev = curr
		curr = curr.next
	}

	prev.mu.Unlock()
	ts := ob.engine.clock.Now()
	ob.engine.sink.OrderDeleted(order.OrderID, false, ts)
}

// removeFromLevel deletes order from level's order slice, unlinking the
// level entirely if it becomes empty, and releases both prev's and curr's
// locks before returning. It reports whether the order was actually found.
func (ob *OrderBook) removeFromLevel(prev, curr *priceLevel, order *Order) bool {
	idx := -1
	for i, o := range curr.orders {
		if o.OrderID == order.OrderID {
			idx = i
			break
		}
	}
	if idx == -1 {
		curr.mu.Unlock()
		prev.mu.Unlock()
		return false
	}

	curr.totalVolume -= uint64(curr.orders[idx].Count)
	curr.orders = append(curr.orders[:idx], curr.orders[idx+1:]...)
	ob.engine.index.Delete(order.OrderID)

	if len(curr.orders) == 0 {
		prev.next = curr.next
	}
	curr.mu.Unlock()
	prev.mu.Unlock()
	return true
}
