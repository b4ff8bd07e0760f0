package httpapi

import (
	"net/url"
	"strconv"

	"github.com/mipimipi/musicd/internal/audiostream"
	"github.com/mipimipi/musicd/internal/connserver"
	"github.com/mipimipi/musicd/internal/mediaprobe"
	"github.com/mipimipi/musicd/internal/query"
	"github.com/mipimipi/musicd/internal/thumbnail"
)

func toParams(q url.Values) query.Params {
	p := make(query.Params, len(q))
	for k, v := range q {
		if len(v) > 0 {
			p[k] = v[0]
		}
	}
	return p
}

func listResponse(total int64, items any) map[string]any {
	return map[string]any{"total": total, "items": items}
}

func (s *Server) handleMusicd(req *Request) []byte {
	return jsonResponse(200, map[string]any{})
}

func (s *Server) handleAuth(req *Request) []byte {
	if req.Query.Get("password") != s.password {
		return errorResponse(401, "wrong password")
	}
	return rawResponse(200, "application/json", []byte(`{}`), setCookieHeader(authCookie, s.password))
}

func (s *Server) handleNodes(req *Request) []byte {
	total, items, err := query.Nodes(s.cat.DB(), toParams(req.Query))
	if err != nil {
		return errorResponse(500, err.Error())
	}
	return jsonResponse(200, listResponse(total, items))
}

func (s *Server) handleTracks(req *Request) []byte {
	p := toParams(req.Query)
	total, items, err := query.Tracks(s.cat.DB(), p)
	if err != nil {
		return errorResponse(500, err.Error())
	}
	return jsonResponse(200, listResponse(total, items))
}

func (s *Server) handleArtists(req *Request) []byte {
	total, items, err := query.Artists(s.cat.DB(), toParams(req.Query))
	if err != nil {
		return errorResponse(500, err.Error())
	}
	return jsonResponse(200, listResponse(total, items))
}

func (s *Server) handleAlbums(req *Request) []byte {
	total, items, err := query.Albums(s.cat.DB(), toParams(req.Query))
	if err != nil {
		return errorResponse(500, err.Error())
	}
	return jsonResponse(200, listResponse(total, items))
}

func (s *Server) handleImages(req *Request) []byte {
	total, items, err := query.Images(s.cat.DB(), toParams(req.Query))
	if err != nil {
		return errorResponse(500, err.Error())
	}
	return jsonResponse(200, listResponse(total, items))
}

func (s *Server) handleScan(req *Request) []byte {
	switch req.Query.Get("action") {
	case "start":
		if !s.scanWorker.IsRunning() {
			if err := s.scanWorker.Start(); err != nil {
				return errorResponse(500, err.Error())
			}
		}
	case "restart":
		s.scanWorker.Stop()
		if err := s.scanWorker.Start(); err != nil {
			return errorResponse(500, err.Error())
		}
	case "stop":
		s.scanWorker.Stop()
	default:
		return errorResponse(400, "action must be one of start, restart, stop")
	}
	return jsonResponse(200, map[string]bool{"running": s.scanWorker.IsRunning()})
}

func (s *Server) handleImageFile(req *Request) []byte {
	imageID, err := strconv.ParseInt(req.Query.Get("image_id"), 10, 64)
	if err != nil {
		return errorResponse(400, "image_id is required")
	}
	size := 0
	if v := req.Query.Get("size"); v != "" {
		size, _ = strconv.Atoi(v)
	}

	img, ok, err := s.cat.Image(imageID)
	if err != nil {
		return errorResponse(500, err.Error())
	}
	if !ok {
		return errorResponse(404, "no such image")
	}

	key := thumbnail.Key(imageID, size)
	if blob, hit, err := s.cache.GetBlob(key); err == nil && hit {
		return rawResponse(200, "image/jpeg", blob)
	}

	node, ok, err := s.cat.NodeByID(img.NodeID)
	if err != nil {
		return errorResponse(500, err.Error())
	}
	if !ok {
		return errorResponse(404, "image's node no longer exists")
	}
	fsPath, ok := s.cat.MapFSPath(node.Path)
	if !ok {
		return errorResponse(404, "image's root is not configured")
	}

	var blob []byte
	if img.StreamIndex != nil {
		data, ok := mediaprobe.ReadEmbeddedImage(fsPath, *img.StreamIndex)
		if !ok {
			return errorResponse(500, "cannot read embedded image")
		}
		blob, err = thumbnail.RenderBytes(data, size)
	} else {
		blob, err = thumbnail.Render(fsPath, size)
	}
	if err != nil {
		return errorResponse(500, err.Error())
	}
	if err := s.cache.SetBlob(key, blob); err != nil {
		log.Warnf("cannot cache thumbnail '%s': %v", key, err)
	}
	return rawResponse(200, "image/jpeg", blob)
}

func (s *Server) handleTrackLyrics(req *Request) []byte {
	trackID, err := strconv.ParseInt(req.Query.Get("track_id"), 10, 64)
	if err != nil {
		return errorResponse(400, "track_id is required")
	}

	tl, ok, err := s.cat.TrackLyrics(trackID)
	if err != nil {
		return errorResponse(500, err.Error())
	}
	if !ok {
		track, ok, err := s.cat.Track(trackID)
		if err != nil {
			return errorResponse(500, err.Error())
		}
		if !ok {
			return errorResponse(404, "no such track")
		}

		var lyricsText, provider, source *string
		if result, found := s.lyricsFetcher.TryFetch(track.ArtistName, track.Title); found {
			lyricsText, provider, source = &result.Lyrics, &result.Provider, &result.Source
		}

		tl, err = s.cat.SetTrackLyrics(trackID, lyricsText, provider, source)
		if err != nil {
			return errorResponse(500, err.Error())
		}
	}

	return jsonResponse(200, map[string]any{
		"track_id": tl.TrackID,
		"lyrics":   tl.Lyrics,
		"provider": tl.Provider,
		"source":   tl.Source,
		"modified": tl.Modified,
	})
}

// handleAudioStream resolves the requested track to its source file,
// opens a producer, hands the connection into Streaming via IntoStream
// and then registers the pair with the streaming driver (§4.H, §6).
func (s *Server) handleAudioStream(handle *connserver.Handle, req *Request) {
	trackID, err := strconv.ParseInt(req.Query.Get("track_id"), 10, 64)
	if err != nil {
		handle.Send(errorResponse(400, "track_id is required"))
		return
	}

	codec := audiostream.CodecMP3
	switch req.Query.Get("codec") {
	case "opus":
		codec = audiostream.CodecOpus
	case "ogg":
		codec = audiostream.CodecOgg
	case "", "mp3":
		codec = audiostream.CodecMP3
	default:
		handle.Send(errorResponse(400, "codec must be one of mp3, opus, ogg"))
		return
	}

	start := 0.0
	if v := req.Query.Get("start"); v != "" {
		start, err = strconv.ParseFloat(v, 64)
		if err != nil || start < 0 {
			handle.Send(errorResponse(400, "start must be a non-negative number of seconds"))
			return
		}
	}

	track, ok, err := s.cat.Track(trackID)
	if err != nil {
		handle.Send(errorResponse(500, err.Error()))
		return
	}
	if !ok {
		handle.Send(errorResponse(404, "no such track"))
		return
	}

	node, ok, err := s.cat.NodeByID(track.NodeID)
	if err != nil {
		handle.Send(errorResponse(500, err.Error()))
		return
	}
	if !ok {
		handle.Send(errorResponse(404, "track's node no longer exists"))
		return
	}
	fsPath, ok := s.cat.MapFSPath(node.Path)
	if !ok {
		handle.Send(errorResponse(404, "track's root is not configured"))
		return
	}

	// A virtual (cue-sliced) track's content starts at track.Start inside
	// its node's master file; the requested start is relative to the
	// track itself, so the two add. A whole-file track has no inherent
	// offset and streams to the end of the container (length 0).
	offset := start
	length := 0.0
	if track.Start != nil {
		offset += *track.Start
		length = track.Length
	}

	producer, ok := audiostream.Open(fsPath, track.StreamIndex, track.TrackIndex, offset, length, codec)
	if !ok {
		handle.Send(errorResponse(500, "cannot start transcode"))
		return
	}

	stream, err := handle.IntoStream(streamPrelude(codec.ContentType()))
	if err != nil {
		producer.Close()
		return
	}
	s.driver.AddStream(stream, producer)
}
