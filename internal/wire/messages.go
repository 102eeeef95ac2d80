package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// CommandType tags a client-to-engine request frame.
type CommandType uint8

const (
	CommandNewOrder CommandType = iota
	CommandCancelOrder
)

// EventType tags an engine-to-client output frame.
type EventType uint8

const (
	EventOrderAdded EventType = iota
	EventOrderExecuted
	EventOrderDeleted
)

// Side mirrors matching.Side on the wire; it is a distinct type so this
// package carries no dependency on internal/matching.
type Side uint8

const (
	Buy Side = iota
	Sell
)

var (
	ErrUnknownCommandType = errors.New("wire: unknown command type")
	ErrUnknownEventType   = errors.New("wire: unknown event type")
	ErrInstrumentTooLong  = errors.New("wire: instrument symbol longer than 255 bytes")
)

// ClientCommand is a decoded request frame. Instrument is empty for
// CommandCancelOrder, which does not carry one.
type ClientCommand struct {
	Type       CommandType
	OrderID    uint32
	Instrument string
	Side       Side
	Price      uint32
	Count      uint32
}

// Frame layout, all integers big-endian:
//
//	NewOrder:    type(1) order_id(4) instrument_len(1) instrument(n) side(1) price(4) count(4)
//	CancelOrder: type(1) order_id(4)

// ReadCommand reads one request frame from r, blocking until a full frame
// is available or the connection is closed. A partial frame ending in EOF
// surfaces as io.ErrUnexpectedEOF from io.ReadFull; a clean close between
// frames surfaces as io.EOF.
func ReadCommand(r io.Reader) (ClientCommand, error) {
	var typeByte [1]byte
	if _, err := io.ReadFull(r, typeByte[:]); err != nil {
		return ClientCommand{}, err
	}

	var (
		cmd ClientCommand
		err error
	)
	switch CommandType(typeByte[0]) {
	case CommandNewOrder:
		cmd, err = readNewOrder(r)
	case CommandCancelOrder:
		cmd, err = readCancelOrder(r)
	default:
		return ClientCommand{}, fmt.Errorf("%w: %d", ErrUnknownCommandType, typeByte[0])
	}
	if errors.Is(err, io.EOF) {
		// The type byte was already consumed, so EOF here is mid-frame.
		err = fmt.Errorf("%w: %v", io.ErrUnexpectedEOF, err)
	}
	return cmd, err
}

func readNewOrder(r io.Reader) (ClientCommand, error) {
	var head [5]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return ClientCommand{}, fmt.Errorf("read new-order head: %w", err)
	}
	orderID := binary.BigEndian.Uint32(head[0:4])
	instrLen := int(head[4])

	instrument := make([]byte, instrLen)
	if instrLen > 0 {
		if _, err := io.ReadFull(r, instrument); err != nil {
			return ClientCommand{}, fmt.Errorf("read new-order instrument: %w", err)
		}
	}

	var tail [9]byte
	if _, err := io.ReadFull(r, tail[:]); err != nil {
		return ClientCommand{}, fmt.Errorf("read new-order tail: %w", err)
	}

	return ClientCommand{
		Type:       CommandNewOrder,
		OrderID:    orderID,
		Instrument: string(instrument),
		Side:       Side(tail[0]),
		Price:      binary.BigEndian.Uint32(tail[1:5]),
		Count:      binary.BigEndian.Uint32(tail[5:9]),
	}, nil
}

func readCancelOrder(r io.Reader) (ClientCommand, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return ClientCommand{}, fmt.Errorf("read cancel-order body: %w", err)
	}
	return ClientCommand{Type: CommandCancelOrder, OrderID: binary.BigEndian.Uint32(buf[:])}, nil
}

// EncodeNewOrder serializes a new-order request frame.
func EncodeNewOrder(cmd ClientCommand) ([]byte, error) {
	if len(cmd.Instrument) > 255 {
		return nil, ErrInstrumentTooLong
	}
	buf := make([]byte, 1+4+1+len(cmd.Instrument)+1+4+4)
	buf[0] = byte(CommandNewOrder)
	binary.BigEndian.PutUint32(buf[1:5], cmd.OrderID)
	buf[5] = byte(len(cmd.Instrument))
	off := 6
	off += copy(buf[off:], cmd.Instrument)
	buf[off] = byte(cmd.Side)
	off++
	binary.BigEndian.PutUint32(buf[off:off+4], cmd.Price)
	off += 4
	binary.BigEndian.PutUint32(buf[off:off+4], cmd.Count)
	return buf, nil
}

// EncodeCancelOrder serializes a cancel-order request frame.
func EncodeCancelOrder(orderID uint32) []byte {
	buf := make([]byte, 1+4)
	buf[0] = byte(CommandCancelOrder)
	binary.BigEndian.PutUint32(buf[1:5], orderID)
	return buf
}
