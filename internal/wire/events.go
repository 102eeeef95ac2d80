package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Frame layout, all integers big-endian:
//
//	OrderAdded:    type(1) order_id(4) instrument_len(1) instrument(n) price(4) count(4) is_sell(1) ts(8)
//	OrderExecuted: type(1) resting_id(4) active_id(4) execution_id(4) price(4) qty(4) ts(8)
//	OrderDeleted:  type(1) order_id(4) accepted(1) ts(8)

type OrderAddedEvent struct {
	OrderID    uint32
	Instrument string
	Price      uint32
	Count      uint32
	IsSell     bool
	Timestamp  int64
}

type OrderExecutedEvent struct {
	RestingID   uint32
	ActiveID    uint32
	ExecutionID uint32
	Price       uint32
	Qty         uint32
	Timestamp   int64
}

type OrderDeletedEvent struct {
	OrderID   uint32
	Accepted  bool
	Timestamp int64
}

// Event is a decoded output frame; exactly one of Added, Executed, Deleted
// is meaningful, selected by Type.
type Event struct {
	Type     EventType
	Added    OrderAddedEvent
	Executed OrderExecutedEvent
	Deleted  OrderDeletedEvent
}

func EncodeOrderAdded(e OrderAddedEvent) ([]byte, error) {
	if len(e.Instrument) > 255 {
		return nil, ErrInstrumentTooLong
	}
	buf := make([]byte, 1+4+1+len(e.Instrument)+4+4+1+8)
	buf[0] = byte(EventOrderAdded)
	binary.BigEndian.PutUint32(buf[1:5], e.OrderID)
	buf[5] = byte(len(e.Instrument))
	off := 6
	off += copy(buf[off:], e.Instrument)
	binary.BigEndian.PutUint32(buf[off:off+4], e.Price)
	off += 4
	binary.BigEndian.PutUint32(buf[off:off+4], e.Count)
	off += 4
	if e.IsSell {
		buf[off] = 1
	}
	off++
	binary.BigEndian.PutUint64(buf[off:off+8], uint64(e.Timestamp))
	return buf, nil
}

func EncodeOrderExecuted(e OrderExecutedEvent) []byte {
	buf := make([]byte, 1+4*5+8)
	buf[0] = byte(EventOrderExecuted)
	binary.BigEndian.PutUint32(buf[1:5], e.RestingID)
	binary.BigEndian.PutUint32(buf[5:9], e.ActiveID)
	binary.BigEndian.PutUint32(buf[9:13], e.ExecutionID)
	binary.BigEndian.PutUint32(buf[13:17], e.Price)
	binary.BigEndian.PutUint32(buf[17:21], e.Qty)
	binary.BigEndian.PutUint64(buf[21:29], uint64(e.Timestamp))
	return buf
}

func EncodeOrderDeleted(e OrderDeletedEvent) []byte {
	buf := make([]byte, 1+4+1+8)
	buf[0] = byte(EventOrderDeleted)
	binary.BigEndian.PutUint32(buf[1:5], e.OrderID)
	if e.Accepted {
		buf[5] = 1
	}
	binary.BigEndian.PutUint64(buf[6:14], uint64(e.Timestamp))
	return buf
}

// ReadEvent reads one output frame from r.
func ReadEvent(r io.Reader) (Event, error) {
	var typeByte [1]byte
	if _, err := io.ReadFull(r, typeByte[:]); err != nil {
		return Event{}, err
	}

	switch EventType(typeByte[0]) {
	case EventOrderAdded:
		return readOrderAdded(r)
	case EventOrderExecuted:
		return readOrderExecuted(r)
	case EventOrderDeleted:
		return readOrderDeleted(r)
	default:
		return Event{}, fmt.Errorf("%w: %d", ErrUnknownEventType, typeByte[0])
	}
}

func readOrderAdded(r io.Reader) (Event, error) {
	var head [5]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return Event{}, fmt.Errorf("read order-added head: %w", err)
	}
	orderID := binary.BigEndian.Uint32(head[0:4])
	instrLen := int(head[4])

	instrument := make([]byte, instrLen)
	if instrLen > 0 {
		if _, err := io.ReadFull(r, instrument); err != nil {
			return Event{}, fmt.Errorf("read order-added instrument: %w", err)
		}
	}

	var tail [9]byte
	if _, err := io.ReadFull(r, tail[:]); err != nil {
		return Event{}, fmt.Errorf("read order-added tail: %w", err)
	}
	var tsBuf [8]byte
	if _, err := io.ReadFull(r, tsBuf[:]); err != nil {
		return Event{}, fmt.Errorf("read order-added timestamp: %w", err)
	}

	return Event{
		Type: EventOrderAdded,
		Added: OrderAddedEvent{
			OrderID:    orderID,
			Instrument: string(instrument),
			Price:      binary.BigEndian.Uint32(tail[0:4]),
			Count:      binary.BigEndian.Uint32(tail[4:8]),
			IsSell:     tail[8] != 0,
			Timestamp:  int64(binary.BigEndian.Uint64(tsBuf[:])),
		},
	}, nil
}

func readOrderExecuted(r io.Reader) (Event, error) {
	var buf [28]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Event{}, fmt.Errorf("read order-executed body: %w", err)
	}
	return Event{
		Type: EventOrderExecuted,
		Executed: OrderExecutedEvent{
			RestingID:   binary.BigEndian.Uint32(buf[0:4]),
			ActiveID:    binary.BigEndian.Uint32(buf[4:8]),
			ExecutionID: binary.BigEndian.Uint32(buf[8:12]),
			Price:       binary.BigEndian.Uint32(buf[12:16]),
			Qty:         binary.BigEndian.Uint32(buf[16:20]),
			Timestamp:   int64(binary.BigEndian.Uint64(buf[20:28])),
		},
	}, nil
}

func readOrderDeleted(r io.Reader) (Event, error) {
	var buf [13]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Event{}, fmt.Errorf("read order-deleted body: %w", err)
	}
	return Event{
		Type: EventOrderDeleted,
		Deleted: OrderDeletedEvent{
			OrderID:   binary.BigEndian.Uint32(buf[0:4]),
			Accepted:  buf[4] != 0,
			Timestamp: int64(binary.BigEndian.Uint64(buf[5:13])),
		},
	}, nil
}
