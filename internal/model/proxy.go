// Package model defines shared types for the proxy.
package model

import (
	"context"
)

// ForwardRequest represents a client request to be relayed to the backend.
type ForwardRequest struct {
	Ctx      context.Context
	Method   string
	Path     string
	RawQuery string
	Body     []byte
}

// BackendResponse holds a fully read backend response.
//
// Bodies are buffered rather than streamed: the relay only inspects the
// content type and copies the body text verbatim, so there is no reason to
// keep the upstream connection open while the client drains it.
type BackendResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}
