// Package httpapi implements the HTTP surface of §6: a thin request
// parser feeding the connection server (§4.G) and a set of handlers that
// compose the query layer, thumbnail cache, lyrics collaborator, scan
// worker and streaming driver into the documented endpoint table. It
// intentionally parses only what this API actually needs — a GET/POST
// request line, a path and a query string, no bodies, no chunked
// transfer encoding, no keep-alive — rather than a general-purpose
// HTTP/1.1 implementation.
package httpapi

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/mipimipi/musicd/internal/connserver"
)

// Request is the result of parsing one client request off the wire
// (§4.G Incoming.Value).
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Cookies map[string]string
}

const headerTerminator = "\r\n\r\n"

// ParseRequest is the connserver.ParseFunc for this API: it waits for a
// full header block, then extracts the request line and the Cookie
// header. Anything beyond that (bodies, trailers, further pipelined
// requests) is out of scope for this thin layer.
func ParseRequest(buf []byte) connserver.ParseResult {
	idx := bytes.Index(buf, []byte(headerTerminator))
	if idx < 0 {
		if len(buf) > maxHeaderSize {
			return connserver.ParseResult{Outcome: connserver.Invalid}
		}
		return connserver.ParseResult{Outcome: connserver.None}
	}

	head := string(buf[:idx])
	lines := strings.Split(head, "\r\n")
	if len(lines) == 0 {
		return connserver.ParseResult{Outcome: connserver.Invalid}
	}

	req, ok := parseRequestLine(lines[0])
	if !ok {
		return connserver.ParseResult{Outcome: connserver.Invalid}
	}

	req.Cookies = map[string]string{}
	for _, line := range lines[1:] {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(name), "cookie") {
			parseCookies(strings.TrimSpace(value), req.Cookies)
		}
	}

	return connserver.ParseResult{Outcome: connserver.Received, Value: req, Consumed: idx + len(headerTerminator)}
}

const maxHeaderSize = 16 * 1024

func parseRequestLine(line string) (*Request, bool) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return nil, false
	}
	method, target := fields[0], fields[1]
	if method != "GET" && method != "POST" {
		return nil, false
	}

	u, err := url.ParseRequestURI(target)
	if err != nil {
		return nil, false
	}

	return &Request{Method: method, Path: u.Path, Query: u.Query()}, true
}

func parseCookies(header string, into map[string]string) {
	for _, pair := range strings.Split(header, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			continue
		}
		into[name] = value
	}
}
