package httpapi

import (
	"testing"

	"github.com/mipimipi/musicd/internal/connserver"
)

func TestParseRequestWaitsForFullHeaders(t *testing.T) {
	result := ParseRequest([]byte("GET /api/musicd HTTP/1.1\r\nHost: x\r\n"))
	if result.Outcome != connserver.None {
		t.Fatalf("expected None before the header terminator, got %v", result.Outcome)
	}
}

func TestParseRequestExtractsPathQueryAndCookies(t *testing.T) {
	raw := "GET /api/tracks?search=abc HTTP/1.1\r\nHost: x\r\nCookie: musicd2-auth=secret; other=1\r\n\r\n"
	result := ParseRequest([]byte(raw))
	if result.Outcome != connserver.Received {
		t.Fatalf("expected Received, got %v", result.Outcome)
	}

	req := result.Value.(*Request)
	if req.Path != "/api/tracks" {
		t.Fatalf("got path %q", req.Path)
	}
	if req.Query.Get("search") != "abc" {
		t.Fatalf("got query %v", req.Query)
	}
	if req.Cookies["musicd2-auth"] != "secret" {
		t.Fatalf("got cookies %v", req.Cookies)
	}
	if result.Consumed != len(raw) {
		t.Fatalf("got consumed=%d, want %d", result.Consumed, len(raw))
	}
}

func TestParseRequestRejectsUnsupportedMethod(t *testing.T) {
	result := ParseRequest([]byte("PUT /api/tracks HTTP/1.1\r\n\r\n"))
	if result.Outcome != connserver.Invalid {
		t.Fatalf("expected Invalid for a PUT request, got %v", result.Outcome)
	}
}
