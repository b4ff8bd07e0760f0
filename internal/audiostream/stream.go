// Package audiostream implements the transcode producer of §4.E: a
// pull-driven step function wrapping an ffmpeg subprocess, so the HTTP
// delivery path (§4.H) can read encoded output at its own pace without
// buffering a whole track in memory.
package audiostream

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"

	"github.com/pkg/errors"
	l "github.com/sirupsen/logrus"
)

var log *l.Entry = l.WithFields(l.Fields{"srv": "audiostream"})

// Codec is a supported transcode target.
type Codec int

// supported codecs
const (
	CodecMP3 Codec = iota
	CodecOpus
	CodecOgg
)

// ContentType returns the HTTP content type for codec.
func (c Codec) ContentType() string {
	switch c {
	case CodecOpus, CodecOgg:
		return "audio/ogg"
	default:
		return "audio/mpeg"
	}
}

func (c Codec) ffmpegArgs() []string {
	switch c {
	case CodecOpus:
		return []string{"-c:a", "libopus", "-f", "opus"}
	case CodecOgg:
		return []string{"-c:a", "libvorbis", "-f", "ogg"}
	default:
		return []string{"-c:a", "libmp3lame", "-f", "mp3"}
	}
}

// FlushSize is the minimum number of buffered bytes Execute (and the
// streaming driver's own pull loop) accumulates before handing a chunk
// to its sink (§4.E).
const FlushSize = 10 * 1024

// Producer is an opaque transcode step machine. Next drives one
// demux/decode/encode step, invoking sink zero or more times with
// encoded chunks, and reports whether more input remains. Close is
// mandatory on every termination path.
type Producer struct {
	cmd    *exec.Cmd
	stdout *bufio.Reader
	cancel context.CancelFunc
	buf    []byte
}

// Open starts an ffmpeg subprocess transcoding path from startSeconds for
// lengthSeconds (0 means to end of container) into targetCodec, mapping
// the given stream index. trackIndex is accepted but not used. Returns
// ok=false if ffmpeg could not be started.
func Open(path string, streamIndex int64, trackIndex *int64, startSeconds, lengthSeconds float64, targetCodec Codec) (*Producer, bool) {
	ctx, cancel := context.WithCancel(context.Background())

	args := []string{"-hide_banner", "-loglevel", "error"}
	if startSeconds > 0 {
		args = append(args, "-ss", fmt.Sprintf("%f", startSeconds))
	}
	args = append(args, "-i", path)
	if lengthSeconds > 0 {
		args = append(args, "-t", fmt.Sprintf("%f", lengthSeconds))
	}
	args = append(args, "-map", fmt.Sprintf("0:%d", streamIndex))
	args = append(args, targetCodec.ffmpegArgs()...)
	args = append(args, "pipe:1")

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, false
	}

	if err := cmd.Start(); err != nil {
		log.Debugf("cannot start ffmpeg for '%s': %v", path, err)
		cancel()
		return nil, false
	}

	return &Producer{
		cmd:    cmd,
		stdout: bufio.NewReaderSize(stdout, FlushSize),
		cancel: cancel,
		buf:    make([]byte, FlushSize),
	}, true
}

// Next drives one read from the ffmpeg pipe and invokes sink with
// whatever encoded bytes came back. It returns false once the pipe is
// exhausted; the caller must then call Close.
func (p *Producer) Next(sink func([]byte)) bool {
	n, err := p.stdout.Read(p.buf)
	if n > 0 {
		chunk := make([]byte, n)
		copy(chunk, p.buf[:n])
		sink(chunk)
	}
	return err == nil
}

// Execute reads from Next into an in-memory buffer until it reaches
// FlushSize or the stream ends, handing each accumulated buffer to sink.
// Close is always called before Execute returns (§4.E).
func (p *Producer) Execute(sink func([]byte) bool) error {
	defer p.Close()

	var pending []byte
	more := true

	for more {
		more = p.Next(func(b []byte) {
			pending = append(pending, b...)
		})

		if len(pending) >= FlushSize || (!more && len(pending) > 0) {
			if !sink(pending) {
				return nil
			}
			pending = nil
		}
	}

	return nil
}

// Close terminates the ffmpeg subprocess and releases its resources.
// Closing is mandatory on every termination path (§4.E).
func (p *Producer) Close() error {
	p.cancel()
	if err := p.cmd.Wait(); err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			// killed by our own cancel, or ffmpeg exited after EOF: not a failure
			return nil
		}
		return errors.Wrap(err, "ffmpeg did not exit cleanly")
	}
	return nil
}
