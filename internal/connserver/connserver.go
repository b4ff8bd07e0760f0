// Package connserver implements the explicit connection state machine of
// §4.G. The original design is mio/epoll-based (one thread polling
// non-blocking sockets); Go's natural equivalent is one goroutine per
// connection doing blocking I/O, with state transitions and backpressure
// expressed through channels and a small mutex-guarded struct instead of
// readiness events — net.Conn.Write already blocks until the kernel
// accepts the bytes, which is what Ready/Waiting is modelling. The public
// surface (Incoming/Waiting/Drain/Streaming, bounded slots, a streaming
// ready-queue) is preserved so §4.H's driver needs no further adaptation.
package connserver

import (
	"net"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	l "github.com/sirupsen/logrus"
)

var log *l.Entry = l.WithFields(l.Fields{"srv": "connserver"})

// Outcome is what a caller's parse callback decided about a connection's
// buffered bytes so far.
type Outcome int

// possible parse outcomes
const (
	// None means more bytes are needed; the connection is left untouched.
	None Outcome = iota
	// Invalid means the bytes can never form a valid request; the
	// connection transitions to closed.
	Invalid
	// Received means a complete request was parsed; Value carries it and
	// Consumed bytes are dropped from the buffer.
	Received
)

// ParseResult is returned by a ParseFunc.
type ParseResult struct {
	Outcome  Outcome
	Value    any
	Consumed int
}

// ParseFunc inspects a connection's accumulated read buffer and decides
// whether it holds a complete request yet (§4.G Incoming state).
type ParseFunc func(buf []byte) ParseResult

// Status is a streaming connection's current write-backpressure state,
// consulted by the streaming driver (§4.H) before feeding it more bytes.
type Status int

// possible streaming statuses
const (
	Ready Status = iota
	Waiting
	Closed
)

// Incoming is one parsed request delivered on the incoming queue,
// together with the writable Handle the caller uses to respond.
type Incoming struct {
	ID     string
	Handle *Handle
	Value  any
}

type writeJob struct {
	data       []byte
	closeAfter bool
}

// conn is the shared mutable state behind both Handle and StreamHandle.
type conn struct {
	id      string
	netConn net.Conn
	server  *Server

	queued int64 // bytes handed to feedCh but not yet written, for Status()
	feedCh chan writeJob

	mu     sync.Mutex
	closed bool
}

func (c *conn) release() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.netConn.Close()
	c.server.release()
}

// Handle is held by application code while a connection is in Waiting
// (§4.G): it has exactly two exits, Send (one-shot response, then close)
// or IntoStream (long-lived backpressured delivery).
type Handle struct{ c *conn }

// Send writes data and closes the connection once it has been fully
// flushed (§4.G Drain state).
func (h *Handle) Send(data []byte) error {
	_, err := h.c.netConn.Write(data)
	h.c.release()
	if err != nil {
		return errors.Wrapf(err, "connection %s: write failed", h.c.id)
	}
	return nil
}

// IntoStream writes prelude synchronously, then returns a StreamHandle
// for the connection's remaining lifetime as a streaming client (§4.G).
func (h *Handle) IntoStream(prelude []byte) (*StreamHandle, error) {
	if len(prelude) > 0 {
		if _, err := h.c.netConn.Write(prelude); err != nil {
			h.c.release()
			return nil, errors.Wrapf(err, "connection %s: prelude write failed", h.c.id)
		}
	}

	h.c.feedCh = make(chan writeJob, 64)
	sh := &StreamHandle{c: h.c}
	go sh.writerLoop()
	sh.publishReady()
	return sh, nil
}

// StreamHandle is a streaming client's write side (§4.G Streaming,
// §4.H). Feed/Drain/Status are safe to call from any goroutine; writes
// for one connection are always issued in the order they were fed.
type StreamHandle struct{ c *conn }

// Status reports whether this connection can currently accept more
// bytes without piling up behind an in-flight write.
func (h *StreamHandle) Status() Status {
	h.c.mu.Lock()
	closed := h.c.closed
	h.c.mu.Unlock()
	if closed {
		return Closed
	}
	if atomic.LoadInt64(&h.c.queued) > 0 {
		return Waiting
	}
	return Ready
}

// Feed appends data to the connection's pending writes (§4.G).
func (h *StreamHandle) Feed(data []byte) {
	h.enqueue(data, false)
}

// Drain appends data and closes the connection once it has been fully
// flushed (§4.G Drain-from-Streaming, final flush).
func (h *StreamHandle) Drain(data []byte) {
	h.enqueue(data, true)
}

func (h *StreamHandle) enqueue(data []byte, closeAfter bool) {
	h.c.mu.Lock()
	closed := h.c.closed
	h.c.mu.Unlock()
	if closed {
		return
	}

	atomic.AddInt64(&h.c.queued, int64(len(data)))
	h.c.feedCh <- writeJob{data: data, closeAfter: closeAfter}
}

// writerLoop is the single goroutine allowed to write to this
// connection's socket once it is streaming, guaranteeing in-order
// delivery (§5 ordering invariant).
func (h *StreamHandle) writerLoop() {
	for job := range h.c.feedCh {
		if len(job.data) > 0 {
			_, err := h.c.netConn.Write(job.data)
			atomic.AddInt64(&h.c.queued, -int64(len(job.data)))
			if err != nil {
				h.c.release()
				return
			}
		}
		if job.closeAfter {
			h.c.release()
			return
		}
		h.publishReady()
	}
}

// publishReady notifies the streaming driver (§4.H) that this
// connection's write buffer has drained and it may accept more data.
// Non-blocking: a full queue means a ready-event is already pending and
// the driver will re-check every registered pair regardless.
func (h *StreamHandle) publishReady() {
	select {
	case h.c.server.streaming <- h:
	default:
	}
}

// Server owns the listener, a bounded connection-slot pool and the
// incoming/streaming queues the rest of the process consumes (§4.G).
type Server struct {
	listener net.Listener
	parse    ParseFunc

	slots     chan struct{}
	incoming  chan Incoming
	streaming chan *StreamHandle
	shutdown  chan struct{}
}

// Listen opens addr and prepares a Server with the given connection-slot
// capacity. Call Serve to start accepting.
func Listen(addr string, capacity int, parse ParseFunc) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot listen on '%s'", addr)
	}

	return &Server{
		listener:  ln,
		parse:     parse,
		slots:     make(chan struct{}, capacity),
		incoming:  make(chan Incoming, capacity),
		streaming: make(chan *StreamHandle, capacity),
		shutdown:  make(chan struct{}),
	}, nil
}

// Addr returns the listener's bound address.
func (s *Server) Addr() string { return s.listener.Addr().String() }

// Incoming returns the queue of parsed requests (§4.G).
func (s *Server) Incoming() <-chan Incoming { return s.incoming }

// Streaming returns the queue of writable-edge events for active
// streaming connections, consumed by the streaming driver (§4.H).
func (s *Server) Streaming() <-chan *StreamHandle { return s.streaming }

// Serve accepts connections until Shutdown is called. Acceptance is
// gated by the bounded slot pool; exhaustion closes the new connection
// immediately (§4.G capacity error).
func (s *Server) Serve() error {
	for {
		nc, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return nil
			default:
				return errors.Wrap(err, "accept failed")
			}
		}

		select {
		case s.slots <- struct{}{}:
			go s.handle(nc)
		default:
			log.Warn("max connections reached, rejecting new connection")
			nc.Close()
		}
	}
}

func (s *Server) release() {
	select {
	case <-s.slots:
	default:
	}
}

// Shutdown stops Serve and closes the listener.
func (s *Server) Shutdown() {
	close(s.shutdown)
	s.listener.Close()
}

func (s *Server) handle(nc net.Conn) {
	c := &conn{id: uuid.NewString(), netConn: nc, server: s}

	buf := make([]byte, 0, 4096)
	chunk := make([]byte, 4096)

	for {
		n, err := nc.Read(chunk)
		if err != nil {
			c.release()
			return
		}
		buf = append(buf, chunk[:n]...)

		result := s.parse(buf)
		switch result.Outcome {
		case None:
			continue
		case Invalid:
			log.Debugf("connection %s: invalid request, closing", c.id)
			c.release()
			return
		case Received:
			buf = buf[result.Consumed:]
			s.incoming <- Incoming{ID: c.id, Handle: &Handle{c: c}, Value: result.Value}
			return
		}
	}
}
