package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"matchbook/internal/matching"
	"matchbook/internal/wire"
)

// Server accepts TCP connections and gives each one a persistent goroutine
// that reads and submits commands serially for the connection's lifetime,
// supervised by a tomb so Shutdown can stop every connection's goroutine
// together.
type Server struct {
	address string
	engine  *matching.Engine
	owners  *wireSink
	tomb    *tomb.Tomb
	conns   chan struct{}

	// ready, if non-nil, receives the actual bound address once the
	// listener is up. Used by tests that bind to ":0".
	ready chan string
}

// New builds a Server bound to address, admitting at most maxConns
// simultaneous connections (0 means unbounded). The returned Server owns
// its own Engine, wired with a FanOutSink that both delivers events back
// over the wire to their owning connection and logs them through zerolog.
func New(address string, maxConns int) *Server {
	owners := newWireSink()
	engine := matching.New(matching.WithSink(matching.NewFanOutSink(owners, zerologSink{})))
	var conns chan struct{}
	if maxConns > 0 {
		conns = make(chan struct{}, maxConns)
	}
	return &Server{
		address: address,
		engine:  engine,
		owners:  owners,
		conns:   conns,
	}
}

// Engine returns the Server's matching engine, mainly for tests that want
// to inspect book state directly.
func (s *Server) Engine() *matching.Engine {
	return s.engine
}

// NotifyReady makes Run send the actual bound address on ch once listening
// starts, for tests that bind to an ephemeral port.
func (s *Server) NotifyReady(ch chan string) {
	s.ready = ch
}

// Run listens on the Server's address and serves connections until ctx is
// cancelled or the tomb is killed; it returns an error straight away if
// listening fails, while later accept errors are logged and skipped. It
// blocks until every connection goroutine has exited.
func (s *Server) Run(ctx context.Context) error {
	t, ctx := tomb.WithContext(ctx)
	s.tomb = t

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.address)
	if err != nil {
		return fmt.Errorf("matchbook: listen %s: %w", s.address, err)
	}
	defer listener.Close()

	log.Info().Str("address", listener.Addr().String()).Msg("matching engine listening")

	if s.ready != nil {
		s.ready <- listener.Addr().String()
	}

	t.Go(func() error {
		<-t.Dying()
		return listener.Close()
	})

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-t.Dying():
				return t.Wait()
			default:
				log.Error().Err(err).Msg("accept failed")
				continue
			}
		}

		if s.conns != nil {
			select {
			case s.conns <- struct{}{}:
			default:
				log.Warn().Str("remote", conn.RemoteAddr().String()).Msg("connection limit reached, rejecting")
				conn.Close()
				continue
			}
		}

		sess := &Session{conn: conn, id: uuid.NewString()}
		log.Info().Str("session", sess.id).Str("remote", conn.RemoteAddr().String()).Msg("connection accepted")

		t.Go(func() error {
			defer s.release()
			s.handleConnection(t, sess)
			return nil
		})
	}
}

func (s *Server) release() {
	if s.conns != nil {
		<-s.conns
	}
}

// Shutdown stops the accept loop and every connection goroutine, then
// drops all engine state.
func (s *Server) Shutdown() {
	if s.tomb != nil {
		s.tomb.Kill(nil)
		_ = s.tomb.Wait()
	}
	s.engine.Shutdown()
}

// handleConnection owns conn for its entire life: it reads one command at
// a time, serially, and submits each to the engine before reading the
// next. This is the one-worker-per-connection model; unlike a bounded
// worker pool, a slow or bursty connection never blocks another
// connection's progress.
func (s *Server) handleConnection(t *tomb.Tomb, sess *Session) {
	defer func() {
		sess.conn.Close()
		log.Info().Str("session", sess.id).Msg("connection closed")
	}()

	// Closing the connection on shutdown unblocks a pending read.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-t.Dying():
			sess.conn.Close()
		case <-done:
		}
	}()

	reader := bufio.NewReader(sess.conn)
	for {
		select {
		case <-t.Dying():
			return
		default:
		}

		cmd, err := wire.ReadCommand(reader)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Warn().Err(err).Str("session", sess.id).Msg("connection read failed")
			}
			return
		}

		switch cmd.Type {
		case wire.CommandNewOrder:
			s.owners.Track(cmd.OrderID, sess)
			s.engine.SubmitNew(matching.NewOrderCommand{
				OrderID:    cmd.OrderID,
				Side:       matching.Side(cmd.Side),
				Instrument: cmd.Instrument,
				Price:      cmd.Price,
				Count:      cmd.Count,
			})
		case wire.CommandCancelOrder:
			s.engine.SubmitCancel(matching.CancelCommand{OrderID: cmd.OrderID})
		}
	}
}
