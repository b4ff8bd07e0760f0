// Package streamdriver implements the single streaming driver of §4.H: a
// background worker pumping transcoded audio into backpressured
// connections. It owns the mapping from stream handle to producer; the
// HTTP API hands a pair over at stream start and never touches either
// side again.
package streamdriver

import (
	"sync"

	l "github.com/sirupsen/logrus"

	"github.com/mipimipi/musicd/internal/audiostream"
	"github.com/mipimipi/musicd/internal/connserver"
)

var log *l.Entry = l.WithFields(l.Fields{"srv": "streamdriver"})

// Producer is the driver's view of an audio producer (§4.E);
// *audiostream.Producer satisfies it. Kept as an interface so the
// pull/flush loop can be tested without shelling out to ffmpeg.
type Producer interface {
	Next(sink func([]byte)) bool
	Close() error
}

// Driver owns the registered stream handle → producer pairs and drives
// them to completion as ready-events arrive.
type Driver struct {
	mu    sync.Mutex
	pairs map[*connserver.StreamHandle]Producer
}

// New returns an empty Driver.
func New() *Driver {
	return &Driver{pairs: make(map[*connserver.StreamHandle]Producer)}
}

// AddStream registers a pair, handing ownership of producer to the
// driver (§5: "Audio producers are single-owner, handed from API thread
// → streaming driver"). The caller must not use producer afterwards.
func (d *Driver) AddStream(handle *connserver.StreamHandle, producer Producer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pairs[handle] = producer
}

// Run services the streaming queue until shutdown fires. Each ready
// event re-inspects every registered pair, matching §4.H's description
// of a ready-event as a prompt to sweep the whole table rather than a
// pointer to one specific connection.
func (d *Driver) Run(streaming <-chan *connserver.StreamHandle, shutdown <-chan struct{}) {
	for {
		select {
		case <-shutdown:
			d.closeAll()
			return
		case <-streaming:
			d.sweep()
		}
	}
}

func (d *Driver) sweep() {
	d.mu.Lock()
	pairs := make(map[*connserver.StreamHandle]Producer, len(d.pairs))
	for h, p := range d.pairs {
		pairs[h] = p
	}
	d.mu.Unlock()

	for handle, producer := range pairs {
		d.service(handle, producer)
	}
}

// service drives one pair one step according to its current status
// (§4.H): Closed removes it, Waiting skips it, Ready pulls from the
// producer up to the flush threshold and feeds the handle.
func (d *Driver) service(handle *connserver.StreamHandle, producer Producer) {
	switch handle.Status() {
	case connserver.Closed:
		d.remove(handle, producer)
	case connserver.Waiting:
		return
	case connserver.Ready:
		more := flush(producer, handle)
		if !more {
			d.remove(handle, producer)
		}
	}
}

// flush pulls from producer until it has accumulated audiostream's flush
// threshold or the producer signals end-of-stream, feeding every
// accumulated chunk to handle. Once the producer is exhausted it hands the
// last chunk to handle.Drain (final flush, then close) and returns false;
// the caller must then remove the pair.
func flush(producer Producer, handle *connserver.StreamHandle) bool {
	var pending []byte
	more := true

	for more {
		more = producer.Next(func(b []byte) {
			pending = append(pending, b...)
		})
		if len(pending) >= audiostream.FlushSize {
			break
		}
	}

	if !more {
		handle.Drain(pending)
		return false
	}

	handle.Feed(pending)
	return true
}

func (d *Driver) remove(handle *connserver.StreamHandle, producer Producer) {
	d.mu.Lock()
	delete(d.pairs, handle)
	d.mu.Unlock()

	if err := producer.Close(); err != nil {
		log.Warnf("producer close: %v", err)
	}
}

func (d *Driver) closeAll() {
	d.mu.Lock()
	pairs := d.pairs
	d.pairs = make(map[*connserver.StreamHandle]Producer)
	d.mu.Unlock()

	for _, p := range pairs {
		if err := p.Close(); err != nil {
			log.Warnf("producer close on shutdown: %v", err)
		}
	}
}
