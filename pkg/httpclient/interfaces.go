package httpclient

import (
	"context"
	"io"
	"net/http"
)

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Header() http.Header
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Do(ctx context.Context, req Request) (Response, error)
}

// Request describes a single outbound call. Form fields are sent url-encoded
// unless Files is non-empty, in which case Form and Files travel together as
// multipart/form-data.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Query   map[string]string
	Form    map[string]string
	Files   []FilePart
}

// FilePart is one binary multipart segment.
type FilePart struct {
	Field       string
	FileName    string
	ContentType string
	Reader      io.Reader
}

// Multipart reports whether the request carries file parts.
func (r Request) Multipart() bool {
	return len(r.Files) > 0
}
