// Package auth provides connect-time authorization of websocket connections, checked once per connection against
// headers of the original upgrade request.
package auth

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/eientei/wsgraphqlbc"
	"github.com/eientei/wsgraphqlbc/apollows"
)

// DefaultHeader is the header StaticToken reads credential from, unless specified
const DefaultHeader = "Authorization"

// Result of the credential check, zero value allows the connection
type Result struct {
	// Reason is reported to the client when connection is rejected
	Reason   string
	rejected bool
}

// Allow returns successful Result
func Allow() Result {
	return Result{}
}

// Reject returns failed Result with provided reason
func Reject(reason string) Result {
	return Result{
		Reason:   reason,
		rejected: true,
	}
}

// Rejected reports whether connection should be refused
func (r Result) Rejected() bool {
	return r.rejected
}

// Verifier checks credentials of an upgrade request, may block on I/O bound to ctx
type Verifier interface {
	Verify(ctx context.Context, r *http.Request) Result
}

// VerifierFunc adapts function to Verifier
type VerifierFunc func(ctx context.Context, r *http.Request) Result

// Verify implementation
func (f VerifierFunc) Verify(ctx context.Context, r *http.Request) Result {
	return f(ctx, r)
}

// StaticToken accepts requests carrying exactly Token in Header
type StaticToken struct {
	Header string
	Token  string
}

// Verify implementation
func (s StaticToken) Verify(_ context.Context, r *http.Request) Result {
	header := s.Header
	if header == "" {
		header = DefaultHeader
	}

	value := r.Header.Get(header)
	if value == "" {
		return Reject("missing credential")
	}

	if subtle.ConstantTimeCompare([]byte(value), []byte(s.Token)) != 1 {
		return Reject("invalid credential")
	}

	return Allow()
}

// Rejection is returned by InitInterceptor for refused connections, closing them with 4403 Forbidden
type Rejection struct {
	Reason string
}

func (r Rejection) Error() string {
	if r.Reason == "" {
		return apollows.EventForbidden.Error()
	}

	return apollows.EventForbidden.Error() + ": " + r.Reason
}

// EventMessageType implements apollows.Error
func (r Rejection) EventMessageType() apollows.MessageType {
	return apollows.EventForbidden
}

// InitInterceptor returns interceptor verifying the upgrade request once connection is initialized, before
// acknowledging it
func InitInterceptor(verifier Verifier) wsgraphql.InterceptorInit {
	return func(ctx context.Context, init apollows.PayloadInit, handler wsgraphql.HandlerInit) error {
		r := wsgraphql.ContextHTTPRequest(ctx)
		if r == nil {
			return Rejection{
				Reason: "missing upgrade request",
			}
		}

		if res := verifier.Verify(ctx, r); res.Rejected() {
			return Rejection{
				Reason: res.Reason,
			}
		}

		return handler(ctx, init)
	}
}
