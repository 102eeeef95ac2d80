package wire

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderRoundTrip(t *testing.T) {
	want := ClientCommand{
		Type:       CommandNewOrder,
		OrderID:    42,
		Instrument: "AAPL",
		Side:       Sell,
		Price:      10050,
		Count:      7,
	}

	encoded, err := EncodeNewOrder(want)
	require.NoError(t, err)

	got, err := ReadCommand(bytes.NewReader(encoded))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestNewOrderRoundTrip_EmptyInstrument(t *testing.T) {
	want := ClientCommand{Type: CommandNewOrder, OrderID: 1, Instrument: "", Side: Buy, Price: 1, Count: 1}
	encoded, err := EncodeNewOrder(want)
	require.NoError(t, err)

	got, err := ReadCommand(bytes.NewReader(encoded))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestEncodeNewOrder_InstrumentTooLong(t *testing.T) {
	long := make([]byte, 256)
	for i := range long {
		long[i] = 'A'
	}
	_, err := EncodeNewOrder(ClientCommand{Instrument: string(long)})
	assert.ErrorIs(t, err, ErrInstrumentTooLong)
}

func TestCancelOrderRoundTrip(t *testing.T) {
	encoded := EncodeCancelOrder(99)

	got, err := ReadCommand(bytes.NewReader(encoded))
	require.NoError(t, err)
	assert.Equal(t, ClientCommand{Type: CommandCancelOrder, OrderID: 99}, got)
}

func TestReadCommand_UnknownType(t *testing.T) {
	_, err := ReadCommand(bytes.NewReader([]byte{0xFF}))
	assert.ErrorIs(t, err, ErrUnknownCommandType)
}

func TestReadCommand_TruncatedFrame(t *testing.T) {
	encoded := EncodeCancelOrder(1)
	_, err := ReadCommand(bytes.NewReader(encoded[:2]))
	require.Error(t, err)
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}

func TestReadCommand_CleanCloseBetweenFrames(t *testing.T) {
	_, err := ReadCommand(bytes.NewReader(nil))
	assert.ErrorIs(t, err, io.EOF)
}

func TestOrderAddedRoundTrip(t *testing.T) {
	want := OrderAddedEvent{OrderID: 1, Instrument: "MSFT", Price: 250, Count: 3, IsSell: true, Timestamp: 123456789}
	encoded, err := EncodeOrderAdded(want)
	require.NoError(t, err)

	event, err := ReadEvent(bytes.NewReader(encoded))
	require.NoError(t, err)
	assert.Equal(t, EventOrderAdded, event.Type)
	assert.Equal(t, want, event.Added)
}

func TestOrderExecutedRoundTrip(t *testing.T) {
	want := OrderExecutedEvent{RestingID: 1, ActiveID: 2, ExecutionID: 1, Price: 100, Qty: 5, Timestamp: 42}
	encoded := EncodeOrderExecuted(want)

	event, err := ReadEvent(bytes.NewReader(encoded))
	require.NoError(t, err)
	assert.Equal(t, EventOrderExecuted, event.Type)
	assert.Equal(t, want, event.Executed)
}

func TestOrderDeletedRoundTrip(t *testing.T) {
	want := OrderDeletedEvent{OrderID: 7, Accepted: false, Timestamp: 99}
	encoded := EncodeOrderDeleted(want)

	event, err := ReadEvent(bytes.NewReader(encoded))
	require.NoError(t, err)
	assert.Equal(t, EventOrderDeleted, event.Type)
	assert.Equal(t, want, event.Deleted)
}

func TestReadEvent_UnknownType(t *testing.T) {
	_, err := ReadEvent(bytes.NewReader([]byte{0xFF}))
	assert.ErrorIs(t, err, ErrUnknownEventType)
}

func TestReadCommand_MultipleFramesInSequence(t *testing.T) {
	var buf bytes.Buffer
	enc1, err := EncodeNewOrder(ClientCommand{Type: CommandNewOrder, OrderID: 1, Instrument: "AAPL", Side: Buy, Price: 10, Count: 1})
	require.NoError(t, err)
	buf.Write(enc1)
	buf.Write(EncodeCancelOrder(1))

	first, err := ReadCommand(&buf)
	require.NoError(t, err)
	assert.Equal(t, CommandNewOrder, first.Type)

	second, err := ReadCommand(&buf)
	require.NoError(t, err)
	assert.Equal(t, CommandCancelOrder, second.Type)
	assert.Equal(t, uint32(1), second.OrderID)
}
