package binding

import (
	"net/http"
	"net/url"
	"strings"
)

// RequestScope is the per-request bag of transport values the resolver may
// bind parameters from. It is owned by the transport layer and read-only
// here.
type RequestScope struct {
	Headers http.Header
	Params  url.Values
	// Transport is an escape hatch for transport-specific state, e.g. the
	// *http.Request itself. The resolver never touches it.
	Transport any
}

// NewRequestScope builds a scope from a header multimap and a query
// parameter multimap. Either may be nil.
func NewRequestScope(headers http.Header, params url.Values) *RequestScope {
	return &RequestScope{Headers: headers, Params: params}
}

// Header returns the first value for key, matched case-insensitively.
func (s *RequestScope) Header(key string) (string, bool) {
	if s == nil || s.Headers == nil {
		return "", false
	}
	if vs := s.Headers.Values(key); len(vs) > 0 {
		return vs[0], true
	}
	// Values misses non-canonical keys in hand-built maps.
	for k, vs := range s.Headers {
		if strings.EqualFold(k, key) && len(vs) > 0 {
			return vs[0], true
		}
	}
	return "", false
}

// Param returns the first value for key.
func (s *RequestScope) Param(key string) (string, bool) {
	if s == nil || s.Params == nil {
		return "", false
	}
	if vs, ok := s.Params[key]; ok && len(vs) > 0 {
		return vs[0], true
	}
	return "", false
}
