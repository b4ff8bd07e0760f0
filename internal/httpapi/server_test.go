package httpapi

import (
	"bufio"
	"io"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mipimipi/musicd/internal/catalog"
	"github.com/mipimipi/musicd/internal/scan"
	"github.com/mipimipi/musicd/internal/streamdriver"
	"github.com/mipimipi/musicd/internal/thumbnail"
)

func newTestServer(t *testing.T, password string) (*Server, string) {
	t.Helper()

	source, err := catalog.OpenSource(filepath.Join(t.TempDir(), "catalog.db"), nil)
	if err != nil {
		t.Fatalf("OpenSource: %v", err)
	}
	cat, err := source.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { cat.Close() })

	srv, err := New("127.0.0.1:0", cat, thumbnail.Disabled(), scan.NewWorker(source), streamdriver.New(), password)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(srv.Shutdown)

	go srv.Serve()

	return srv, srv.conns.Addr()
}

func rawGet(t *testing.T, addr, path string, cookie string) (status int, body string) {
	t.Helper()

	c, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	req := "GET " + path + " HTTP/1.1\r\nHost: x\r\n"
	if cookie != "" {
		req += "Cookie: " + cookie + "\r\n"
	}
	req += "\r\n"
	if _, err := c.Write([]byte(req)); err != nil {
		t.Fatalf("write: %v", err)
	}

	c.SetReadDeadline(time.Now().Add(2 * time.Second))
	resp, err := io.ReadAll(c)
	if err != nil && err != io.EOF {
		t.Fatalf("read: %v", err)
	}

	reader := bufio.NewReader(strings.NewReader(string(resp)))
	statusLine, _ := reader.ReadString('\n')
	parts := strings.Fields(statusLine)
	if len(parts) < 2 {
		t.Fatalf("malformed status line %q", statusLine)
	}
	status = 0
	for _, digit := range parts[1] {
		status = status*10 + int(digit-'0')
	}

	idx := strings.Index(string(resp), "\r\n\r\n")
	if idx < 0 {
		return status, ""
	}
	return status, string(resp[idx+4:])
}

func TestMusicdEndpointReturnsEmptyObject(t *testing.T) {
	_, addr := newTestServer(t, "")

	status, body := rawGet(t, addr, "/api/musicd", "")
	if status != 200 {
		t.Fatalf("got status %d", status)
	}
	if strings.TrimSpace(body) != "{}" {
		t.Fatalf("got body %q", body)
	}
}

func TestNodesEndpointReturnsEmptyCatalog(t *testing.T) {
	_, addr := newTestServer(t, "")

	status, body := rawGet(t, addr, "/api/nodes?parent_id=null", "")
	if status != 200 {
		t.Fatalf("got status %d", status)
	}
	if !strings.Contains(body, `"total":0`) {
		t.Fatalf("got body %q", body)
	}
}

func TestPasswordGateRejectsWithoutCookie(t *testing.T) {
	_, addr := newTestServer(t, "sekrit")

	status, _ := rawGet(t, addr, "/api/nodes", "")
	if status != 401 {
		t.Fatalf("got status %d, want 401", status)
	}
}

func TestPasswordGateAllowsPublicPaths(t *testing.T) {
	_, addr := newTestServer(t, "sekrit")

	status, _ := rawGet(t, addr, "/api/musicd", "")
	if status != 200 {
		t.Fatalf("got status %d, want 200 for a public path", status)
	}
}

func TestAuthEndpointSetsCookieOnMatch(t *testing.T) {
	_, addr := newTestServer(t, "sekrit")

	status, _ := rawGet(t, addr, "/api/auth?password=sekrit", "")
	if status != 200 {
		t.Fatalf("got status %d", status)
	}

	status, _ = rawGet(t, addr, "/api/nodes", "musicd2-auth=sekrit")
	if status != 200 {
		t.Fatalf("got status %d once authorized", status)
	}
}

func TestUnknownEndpointReturns404(t *testing.T) {
	_, addr := newTestServer(t, "")

	status, _ := rawGet(t, addr, "/api/nope", "")
	if status != 404 {
		t.Fatalf("got status %d, want 404", status)
	}
}
