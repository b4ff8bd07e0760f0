package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// statusText covers the status codes this API actually returns (§7).
var statusText = map[int]string{
	200: "OK",
	302: "Found",
	400: "Bad Request",
	401: "Unauthorized",
	404: "Not Found",
	500: "Internal Server Error",
	503: "Service Unavailable",
}

func statusLine(code int) string {
	text, ok := statusText[code]
	if !ok {
		text = "Unknown"
	}
	return fmt.Sprintf("HTTP/1.1 %d %s\r\n", code, text)
}

// rawResponse builds a full, connection-closing HTTP response: status
// line, Content-Type/Content-Length/Connection-close headers, plus any
// extra headers, then body. This is the complete bytes handed to
// connserver.Handle.Send for every non-streaming endpoint.
func rawResponse(code int, contentType string, body []byte, extra ...string) []byte {
	var buf bytes.Buffer
	buf.WriteString(statusLine(code))
	buf.WriteString(fmt.Sprintf("Content-Type: %s\r\n", contentType))
	buf.WriteString(fmt.Sprintf("Content-Length: %d\r\n", len(body)))
	buf.WriteString("Connection: close\r\n")
	for _, h := range extra {
		buf.WriteString(h)
		buf.WriteString("\r\n")
	}
	buf.WriteString("\r\n")
	buf.Write(body)
	return buf.Bytes()
}

func jsonResponse(code int, v any) []byte {
	body, err := json.Marshal(v)
	if err != nil {
		return rawResponse(500, "application/json", []byte(`{"error":"cannot encode response"}`))
	}
	return rawResponse(code, "application/json", body)
}

func errorResponse(code int, message string) []byte {
	return jsonResponse(code, map[string]string{"error": message})
}

// streamPrelude builds the headers for a connection-owning streaming
// response (§4.H hands the body through StreamHandle.Feed). No
// Content-Length and no chunked transfer encoding: the body length is not
// known up front, and the body ends when the connection closes.
func streamPrelude(contentType string) []byte {
	var buf bytes.Buffer
	buf.WriteString(statusLine(200))
	buf.WriteString(fmt.Sprintf("Content-Type: %s\r\n", contentType))
	buf.WriteString("Connection: close\r\n")
	buf.WriteString("\r\n")
	return buf.Bytes()
}

// setCookieHeader builds a Set-Cookie header for the auth cookie.
func setCookieHeader(name, value string) string {
	return fmt.Sprintf("Set-Cookie: %s=%s; Path=/; HttpOnly", name, value)
}
