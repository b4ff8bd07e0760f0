package streamdriver

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/mipimipi/musicd/internal/connserver"
)

// fakeProducer yields the chunks in order, then signals end-of-stream.
type fakeProducer struct {
	chunks [][]byte
	closed bool
}

func (p *fakeProducer) Next(sink func([]byte)) bool {
	if len(p.chunks) == 0 {
		return false
	}
	sink(p.chunks[0])
	p.chunks = p.chunks[1:]
	return len(p.chunks) > 0
}

func (p *fakeProducer) Close() error {
	p.closed = true
	return nil
}

func lineParser(buf []byte) connserver.ParseResult {
	idx := bytes.IndexByte(buf, '\n')
	if idx < 0 {
		return connserver.ParseResult{Outcome: connserver.None}
	}
	return connserver.ParseResult{Outcome: connserver.Received, Value: string(buf[:idx]), Consumed: idx + 1}
}

func newStreamHandle(t *testing.T) (*connserver.Server, *connserver.StreamHandle, net.Conn) {
	t.Helper()

	srv, err := connserver.Listen("127.0.0.1:0", 4, lineParser)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	go srv.Serve()

	c, err := net.Dial("tcp", srv.Addr())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	c.Write([]byte("go\n"))

	in := <-srv.Incoming()
	sh, err := in.Handle.IntoStream(nil)
	if err != nil {
		t.Fatalf("IntoStream: %v", err)
	}

	return srv, sh, c
}

func TestDriverFeedsUntilProducerExhausted(t *testing.T) {
	srv, sh, c := newStreamHandle(t)
	defer srv.Shutdown()
	defer c.Close()

	producer := &fakeProducer{chunks: [][]byte{[]byte("abc"), []byte("def")}}

	d := New()
	d.AddStream(sh, producer)

	shutdown := make(chan struct{})
	defer close(shutdown)
	go d.Run(srv.Streaming(), shutdown)

	c.SetReadDeadline(time.Now().Add(2 * time.Second))
	out := make([]byte, 6)
	n := 0
	for n < len(out) {
		m, err := c.Read(out[n:])
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		n += m
	}
	if string(out) != "abcdef" {
		t.Fatalf("got %q, want %q", out, "abcdef")
	}

	deadline := time.Now().Add(2 * time.Second)
	for !producer.closed && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if !producer.closed {
		t.Fatal("expected producer to be closed once exhausted")
	}
}

func TestDriverRemovesClosedConnections(t *testing.T) {
	srv, sh, c := newStreamHandle(t)
	defer srv.Shutdown()
	defer c.Close()

	// Close the connection ourselves so Status() reports Closed
	// deterministically, instead of racing a real socket teardown. Drain
	// closes on the connection's writer goroutine, so wait for it.
	sh.Drain(nil)
	deadline := time.Now().Add(2 * time.Second)
	for sh.Status() != connserver.Closed && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	producer := &fakeProducer{chunks: [][]byte{[]byte("x")}}
	d := New()
	d.AddStream(sh, producer)

	d.sweep()

	d.mu.Lock()
	n := len(d.pairs)
	d.mu.Unlock()
	if n != 0 {
		t.Fatalf("expected the pair to be removed, got %d still registered", n)
	}
	if !producer.closed {
		t.Fatal("expected producer to be closed when its connection is already closed")
	}
}
