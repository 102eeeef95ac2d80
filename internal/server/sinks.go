package server

import (
	"github.com/rs/zerolog/log"

	"matchbook/internal/matching"
	"matchbook/internal/wire"
)

// wireSink routes each event to the session that owns the affected
// order_id, serializing it onto the wire. Routing is always by order
// ownership, even for OrderDeleted: the session that originally submitted
// an order is the one notified when it is filled, added, or removed,
// regardless of which connection requested the cancel.
type wireSink struct {
	owners *matching.ShardedMap[uint32, *Session]
}

func newWireSink() *wireSink {
	return &wireSink{owners: matching.NewShardedMap[uint32, *Session](32, matching.HashUint32)}
}

// Track records which session owns order_id. Must be called before the
// command that creates the order is submitted to the engine, since a
// match can emit events for it synchronously.
func (w *wireSink) Track(orderID uint32, sess *Session) {
	w.owners.Store(orderID, sess)
}

func (w *wireSink) deliver(orderID uint32, buf []byte) {
	sess, ok := w.owners.Load(orderID)
	if !ok {
		return
	}
	if err := sess.Write(buf); err != nil {
		log.Warn().Err(err).Str("session", sess.id).Uint32("order_id", orderID).Msg("failed to deliver event")
	}
}

func (w *wireSink) OrderAdded(orderID uint32, instrument string, price, count uint32, isSell bool, ts int64) {
	buf, err := wire.EncodeOrderAdded(wire.OrderAddedEvent{
		OrderID: orderID, Instrument: instrument, Price: price, Count: count, IsSell: isSell, Timestamp: ts,
	})
	if err != nil {
		log.Error().Err(err).Uint32("order_id", orderID).Msg("failed to encode order-added event")
		return
	}
	w.deliver(orderID, buf)
}

func (w *wireSink) OrderExecuted(restingID, activeID, executionID, price, qty uint32, ts int64) {
	buf := wire.EncodeOrderExecuted(wire.OrderExecutedEvent{
		RestingID: restingID, ActiveID: activeID, ExecutionID: executionID, Price: price, Qty: qty, Timestamp: ts,
	})
	w.deliver(restingID, buf)
	w.deliver(activeID, buf)
}

func (w *wireSink) OrderDeleted(orderID uint32, accepted bool, ts int64) {
	buf := wire.EncodeOrderDeleted(wire.OrderDeletedEvent{OrderID: orderID, Accepted: accepted, Timestamp: ts})
	w.deliver(orderID, buf)
	w.owners.Delete(orderID)
}

// zerologSink logs fills at info level since they're the interesting
// event; adds and deletes are routine and logged at debug.
type zerologSink struct{}

func (zerologSink) OrderAdded(orderID uint32, instrument string, price, count uint32, isSell bool, ts int64) {
	log.Debug().
		Uint32("order_id", orderID).
		Str("instrument", instrument).
		Uint32("price", price).
		Uint32("count", count).
		Bool("is_sell", isSell).
		Msg("order added")
}

func (zerologSink) OrderExecuted(restingID, activeID, executionID, price, qty uint32, ts int64) {
	log.Info().
		Uint32("resting_id", restingID).
		Uint32("active_id", activeID).
		Uint32("execution_id", executionID).
		Uint32("price", price).
		Uint32("qty", qty).
		Msg("order executed")
}

func (zerologSink) OrderDeleted(orderID uint32, accepted bool, ts int64) {
	log.Debug().
		Uint32("order_id", orderID).
		Bool("accepted", accepted).
		Msg("order deleted")
}
