package httpapi

// authCookie is the cookie name checked against the configured password
// (§6 Optional password gate).
const authCookie = "musicd2-auth"

// publicPaths never require the auth cookie, even when a password is
// configured.
var publicPaths = map[string]bool{
	"/api/musicd": true,
	"/api/auth":   true,
}

// authorized reports whether req may proceed given the configured
// password. An empty password disables the gate entirely.
func (s *Server) authorized(req *Request) bool {
	if s.password == "" || publicPaths[req.Path] {
		return true
	}
	return req.Cookies[authCookie] == s.password
}
