package matching

import "sync"

// priceLevel is one node of a side's sorted singly-linked list. Its price
// never changes after construction, so readers that already hold the
// previous node's lock may inspect price without separately locking curr;
// the mutex here guards orders and totalVolume, and next during splice.
type priceLevel struct {
	mu          sync.Mutex
	price       uint32
	totalVolume uint64
	orders      []*Order
	next        *priceLevel
}

// sideBook is one side (buy or sell) of an OrderBook: a dummy head node
// followed by price levels in strict priority order (descending price for
// bids, ascending for asks). The dummy carries no orders and always sorts
// first on its side; locking it first is the entry point for hand-over-hand
// traversal.
type sideBook struct {
	dummy *priceLevel
	isBuy bool
}

func newSideBook(isBuy bool) *sideBook {
	return &sideBook{dummy: &priceLevel{}, isBuy: isBuy}
}

// crosses reports whether a resting level at levelPrice would trade against
// an active order of the opposite side at activePrice.
func crosses(activeSide Side, activePrice, levelPrice uint32) bool {
	if activeSide == Buy {
		return levelPrice <= activePrice
	}
	return levelPrice >= activePrice
}

// outOfRange reports whether, while inserting a resting order on own side,
// a level at levelPrice has better priority than restPrice and so the
// traversal should keep advancing past it.
func outOfRange(isBuy bool, levelPrice, restPrice uint32) bool {
	if isBuy {
		return levelPrice > restPrice
	}
	return levelPrice < restPrice
}

// passedInsertionPoint reports whether, while cancelling on own side, a
// level at levelPrice already sorts past where order.Price would be,
// meaning the order cannot be resting any further down the list.
func passedInsertionPoint(isBuy bool, levelPrice, orderPrice uint32) bool {
	if isBuy {
		return levelPrice < orderPrice
	}
	return levelPrice > orderPrice
}
