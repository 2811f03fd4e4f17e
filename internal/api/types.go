package api

import (
	"encoding/json"
	"net/http"
	"net/url"
)

// Request describes one logical backend call. Bodies are kept in rebuildable
// form (values, not readers) so the refresh path can replay the request.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any               // JSON-encoded when non-nil
	Files  map[string]string // multipart form: part name -> file path
	Fields map[string]string // multipart form: plain text fields
	Header map[string]string

	// NoRefresh disables the 401 refresh-and-retry path. Set on the auth
	// endpoints themselves: a 401 from login is a wrong password, and a 401
	// from the refresh exchange is terminal.
	NoRefresh bool
}

// Response is a completed 2xx backend response.
type Response struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

// Envelope is the backend's success wrapper: {status, message, data}.
type Envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}
