package httpapi

import (
	l "github.com/sirupsen/logrus"

	"github.com/mipimipi/musicd/internal/catalog"
	"github.com/mipimipi/musicd/internal/connserver"
	"github.com/mipimipi/musicd/internal/lyrics"
	"github.com/mipimipi/musicd/internal/scan"
	"github.com/mipimipi/musicd/internal/streamdriver"
	"github.com/mipimipi/musicd/internal/thumbnail"
)

var log *l.Entry = l.WithFields(l.Fields{"srv": "httpapi"})

// connCapacity bounds simultaneous connections (§5 capacity backpressure).
const connCapacity = 64

// Server glues the catalog, query layer, thumbnail cache, lyrics
// collaborator, scan worker and streaming driver into the endpoint
// table of §6, dispatched over a connserver.Server (§4.G).
type Server struct {
	cat           *catalog.Catalog
	cache         thumbnail.Cache
	lyricsFetcher *lyrics.Fetcher
	scanWorker    *scan.Worker
	driver        *streamdriver.Driver
	password      string

	conns *connserver.Server
}

// New wires together a Server ready to Serve on bind.
func New(bind string, cat *catalog.Catalog, cache thumbnail.Cache, scanWorker *scan.Worker, driver *streamdriver.Driver, password string) (*Server, error) {
	s := &Server{
		cat:           cat,
		cache:         cache,
		lyricsFetcher: lyrics.NewFetcher(),
		scanWorker:    scanWorker,
		driver:        driver,
		password:      password,
	}

	conns, err := connserver.Listen(bind, connCapacity, ParseRequest)
	if err != nil {
		return nil, err
	}
	s.conns = conns

	return s, nil
}

// Streaming exposes the underlying connserver's streaming queue, wired
// into the streaming driver's Run loop by the caller (§4.H).
func (s *Server) Streaming() <-chan *connserver.StreamHandle { return s.conns.Streaming() }

// Shutdown stops accepting new connections.
func (s *Server) Shutdown() { s.conns.Shutdown() }

// Serve accepts connections and dispatches parsed requests until
// Shutdown is called.
func (s *Server) Serve() error {
	go s.dispatchLoop()
	return s.conns.Serve()
}

func (s *Server) dispatchLoop() {
	for in := range s.conns.Incoming() {
		req, ok := in.Value.(*Request)
		if !ok {
			in.Handle.Send(errorResponse(400, "malformed request"))
			continue
		}
		go s.dispatch(in.Handle, req)
	}
}

func (s *Server) dispatch(handle *connserver.Handle, req *Request) {
	if !s.authorized(req) {
		handle.Send(errorResponse(401, "unauthorized"))
		return
	}

	if req.Path == "/api/audio_stream" {
		s.handleAudioStream(handle, req)
		return
	}

	var body []byte
	switch req.Path {
	case "/api/musicd":
		body = s.handleMusicd(req)
	case "/api/auth":
		body = s.handleAuth(req)
	case "/api/image_file":
		body = s.handleImageFile(req)
	case "/api/track_lyrics":
		body = s.handleTrackLyrics(req)
	case "/api/nodes":
		body = s.handleNodes(req)
	case "/api/tracks":
		body = s.handleTracks(req)
	case "/api/artists":
		body = s.handleArtists(req)
	case "/api/albums":
		body = s.handleAlbums(req)
	case "/api/images":
		body = s.handleImages(req)
	case "/api/scan":
		body = s.handleScan(req)
	default:
		body = errorResponse(404, "no such endpoint")
	}

	if err := handle.Send(body); err != nil {
		log.Debugf("cannot send response: %v", err)
	}
}
