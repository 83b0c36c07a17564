package domain

import (
	"net/http"
	"net/url"
	"strings"
)

// RemoteRequest describes one call to the identity service.
// It is a value: every builder method returns a modified copy, so a request
// (and the bearer token it carries) is never shared between callers.
type RemoteRequest struct {
	Method    string
	Path      string
	Query     url.Values
	Body      map[string]any
	AuthToken BearerToken
}

// UserResource addresses a single user by id
func UserResource(id string) RemoteRequest {
	return RemoteRequest{Method: http.MethodGet, Path: "users/" + url.PathEscape(id)}
}

// ProfileResource addresses the user owning the request's bearer token
func ProfileResource() RemoteRequest {
	return RemoteRequest{Method: http.MethodGet, Path: "me"}
}

// WithMethod sets the HTTP method
func (r RemoteRequest) WithMethod(method string) RemoteRequest {
	r.Method = strings.ToUpper(method)
	return r
}

// Include requests related resources alongside the primary one
func (r RemoteRequest) Include(relations ...string) RemoteRequest {
	return r.WithQuery("include", strings.Join(relations, ","))
}

// WithQuery adds a query argument
func (r RemoteRequest) WithQuery(key, value string) RemoteRequest {
	q := make(url.Values, len(r.Query)+1)
	for k, v := range r.Query {
		q[k] = append([]string(nil), v...)
	}
	q.Set(key, value)
	r.Query = q
	return r
}

// WithBody adds a body parameter
func (r RemoteRequest) WithBody(key string, value any) RemoteRequest {
	b := make(map[string]any, len(r.Body)+1)
	for k, v := range r.Body {
		b[k] = v
	}
	b[key] = value
	r.Body = b
	return r
}

// WithToken attaches a bearer token to this request only
func (r RemoteRequest) WithToken(token BearerToken) RemoteRequest {
	r.AuthToken = token
	return r
}

// NormalizedResponse is the envelope every identity service call is reduced to
type NormalizedResponse struct {
	Success    bool
	Data       map[string]any
	Meta       map[string]any
	StatusCode int
	Message    string
}

// TrustedData returns the payload only if the call succeeded
func (r *NormalizedResponse) TrustedData() map[string]any {
	if r == nil || !r.Success {
		return nil
	}
	return r.Data
}

// IsSuccessful reports whether the payload can be trusted
func (r *NormalizedResponse) IsSuccessful() bool {
	return r != nil && r.Success
}
