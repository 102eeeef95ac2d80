package matching

import "sync"

// Sink receives the three output events as the engine produces them. A
// Sink implementation must not block the caller for long: it runs inline
// on whichever goroutine is processing the command that produced the
// event.
type Sink interface {
	OrderAdded(orderID uint32, instrument string, price, count uint32, isSell bool, ts int64)
	OrderExecuted(restingID, activeID, executionID, price, qty uint32, ts int64)
	OrderDeleted(orderID uint32, accepted bool, ts int64)
}

// NopSink discards every event. Useful as the default Sink for engines
// built outside of cmd/server, e.g. in tests that only care about book
// state.
type NopSink struct{}

func (NopSink) OrderAdded(orderID uint32, instrument string, price, count uint32, isSell bool, ts int64) {
}
func (NopSink) OrderExecuted(restingID, activeID, executionID, price, qty uint32, ts int64) {}
func (NopSink) OrderDeleted(orderID uint32, accepted bool, ts int64)                         {}

// FanOutSink delivers every event to each of its sinks, in order, on the
// calling goroutine.
type FanOutSink struct {
	sinks []Sink
}

// NewFanOutSink builds a Sink that broadcasts to all of sinks.
func NewFanOutSink(sinks ...Sink) *FanOutSink {
	return &FanOutSink{sinks: sinks}
}

func (f *FanOutSink) OrderAdded(orderID uint32, instrument string, price, count uint32, isSell bool, ts int64) {
	for _, s := range f.sinks {
		s.OrderAdded(orderID, instrument, price, count, isSell, ts)
	}
}

func (f *FanOutSink) OrderExecuted(restingID, activeID, executionID, price, qty uint32, ts int64) {
	for _, s := range f.sinks {
		s.OrderExecuted(restingID, activeID, executionID, price, qty, ts)
	}
}

func (f *FanOutSink) OrderDeleted(orderID uint32, accepted bool, ts int64) {
	for _, s := range f.sinks {
		s.OrderDeleted(orderID, accepted, ts)
	}
}

// RecordingSink appends every event it receives to in-memory slices, for
// assertions in tests.
type RecordingSink struct {
	mu       sync.Mutex
	Added    []AddedEvent
	Executed []ExecutedEvent
	Deleted  []DeletedEvent
}

type AddedEvent struct {
	OrderID    uint32
	Instrument string
	Price      uint32
	Count      uint32
	IsSell     bool
	Timestamp  int64
}

type ExecutedEvent struct {
	RestingID, ActiveID, ExecutionID, Price, Qty uint32
	Timestamp                                    int64
}

type DeletedEvent struct {
	OrderID   uint32
	Accepted  bool
	Timestamp int64
}

// NewRecordingSink builds a RecordingSink ready for concurrent use.
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

func (r *RecordingSink) OrderAdded(orderID uint32, instrument string, price, count uint32, isSell bool, ts int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Added = append(r.Added, AddedEvent{orderID, instrument, price, count, isSell, ts})
}

func (r *RecordingSink) OrderExecuted(restingID, activeID, executionID, price, qty uint32, ts int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Executed = append(r.Executed, ExecutedEvent{restingID, activeID, executionID, price, qty, ts})
}

func (r *RecordingSink) OrderDeleted(orderID uint32, accepted bool, ts int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Deleted = append(r.Deleted, DeletedEvent{orderID, accepted, ts})
}
