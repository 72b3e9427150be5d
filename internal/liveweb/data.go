package liveweb

import (
	"io"
)

// Live-fetch boundary

// Resource is a successfully fetched live document: a status code plus a
// readable byte body. The body is backed by an open connection until
// Release is called.
type Resource struct {
	statusCode int
	body       io.ReadCloser
	released   bool
}

func NewResource(statusCode int, body io.ReadCloser) *Resource {
	return &Resource{
		statusCode: statusCode,
		body:       body,
	}
}

func (r *Resource) StatusCode() int {
	return r.statusCode
}

func (r *Resource) Body() io.Reader {
	return r.body
}

// Release closes the underlying body. Safe to call more than once.
func (r *Resource) Release() error {
	if r.released || r.body == nil {
		return nil
	}
	r.released = true
	return r.body.Close()
}
