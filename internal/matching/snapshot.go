package matching

import "github.com/tidwall/btree"

// LevelSnapshot is a point-in-time, read-only view of one price level. It
// is never the structure matching or cancelling operate against; it exists
// only for depth-of-book reporting.
type LevelSnapshot struct {
	Price       uint32
	TotalVolume uint64
	OrderCount  int
}

// Snapshot walks both sides of the book hand-over-hand, the same
// discipline match/rest/cancel use, and returns an ordered copy of each
// side's levels. The btree is only a convenient sorted container to
// assemble the copy in; it never backs live order state, since that must
// stay the linked list to get hand-over-hand locking at all.
func (ob *OrderBook) Snapshot() (bids, asks []LevelSnapshot) {
	return ob.snapshotSide(ob.buy), ob.snapshotSide(ob.sell)
}

func (ob *OrderBook) snapshotSide(side *sideBook) []LevelSnapshot {
	var less func(a, b LevelSnapshot) bool
	if side.isBuy {
		less = func(a, b LevelSnapshot) bool { return a.Price > b.Price }
	} else {
		less = func(a, b LevelSnapshot) bool { return a.Price < b.Price }
	}
	tree := btree.NewBTreeG(less)

	prev := side.dummy
	prev.mu.Lock()
	curr := prev.next
	for curr != nil {
		curr.mu.Lock()
		tree.Set(LevelSnapshot{Price: curr.price, TotalVolume: curr.totalVolume, OrderCount: len(curr.orders)})
		prev.mu.Unlock()
		prev = curr
		curr = curr.next
	}
	prev.mu.Unlock()

	out := make([]LevelSnapshot, 0, tree.Len())
	tree.Scan(func(item LevelSnapshot) bool {
		out = append(out, item)
		return true
	})
	return out
}
