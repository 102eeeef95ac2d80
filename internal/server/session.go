package server

import (
	"net"
	"sync"
)

// Session wraps one accepted connection. Writes are serialized because two
// different goroutines processing unrelated commands can both end up
// needing to deliver an event to the same connection (e.g. two of a
// client's resting orders filling back to back from different
// counterparties).
type Session struct {
	mu   sync.Mutex
	conn net.Conn
	id   string
}

// Write sends a fully-framed event to the session's connection.
func (s *Session) Write(b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.conn.Write(b)
	return err
}
