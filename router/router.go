// Package router dispatches websocket upgrade requests between graphql-transport-ws (modern) and graphql-ws
// (legacy) transport handlers, based on subprotocols advertised by the client.
//
// Client advertising graphql-ws without graphql-transport-ws is bound to the legacy handler. Every other upgrade
// request, including ones advertising both protocols or none at all, is bound to the modern handler, which is expected
// to negotiate its own subprotocol or reject the connection.
package router

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/eientei/wsgraphqlbc/apollows"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/eientei/wsgraphqlbc/router"

// Attribute keys reported on upgrade spans
const (
	SubprotocolsKey = attribute.Key("websocket.subprotocols")
	TransportKey    = attribute.Key("graphql.transport")
)

// ErrHandlerRequired is returned by New when either handler is missing
var ErrHandlerRequired = errors.New("both modern and legacy handlers are required")

// Binding identifies transport handler an upgrade request is bound to
type Binding int

const (
	// BindingModern graphql-transport-ws handler
	BindingModern Binding = iota

	// BindingLegacy graphql-ws handler
	BindingLegacy
)

// String returns subprotocol natively supported by the bound handler
func (b Binding) String() string {
	if b == BindingLegacy {
		return string(apollows.WebsocketSubprotocolGraphqlWS)
	}

	return string(apollows.WebsocketSubprotocolGraphqlTransportWS)
}

// Subprotocols returns trimmed non-empty subprotocol tokens from every Sec-WebSocket-Protocol header line
func Subprotocols(header http.Header) []string {
	var protocols []string

	for _, line := range header.Values("Sec-WebSocket-Protocol") {
		for _, token := range strings.Split(line, ",") {
			token = strings.TrimSpace(token)

			if token != "" {
				protocols = append(protocols, token)
			}
		}
	}

	return protocols
}

func contains(protocols []string, protocol apollows.Protocol) bool {
	for _, p := range protocols {
		if strings.EqualFold(p, string(protocol)) {
			return true
		}
	}

	return false
}

// Select binds offered subprotocols to a handler. Legacy handler is selected only when graphql-ws is offered and
// graphql-transport-ws is not; modern one prevails otherwise.
func Select(protocols []string) Binding {
	if contains(protocols, apollows.WebsocketSubprotocolGraphqlWS) &&
		!contains(protocols, apollows.WebsocketSubprotocolGraphqlTransportWS) {
		return BindingLegacy
	}

	return BindingModern
}

// IsUpgrade reports whether request asks to switch connection to websocket protocol
func IsUpgrade(r *http.Request) bool {
	return headerContainsToken(r.Header, "Connection", "upgrade") &&
		headerContainsToken(r.Header, "Upgrade", "websocket")
}

func headerContainsToken(header http.Header, name, token string) bool {
	for _, line := range header.Values(name) {
		for _, t := range strings.Split(line, ",") {
			if strings.EqualFold(strings.TrimSpace(t), token) {
				return true
			}
		}
	}

	return false
}

// Option configures Router
type Option func(r *Router)

// WithLogger sets the logger, slog.Default() is used otherwise
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTracerProvider sets tracer provider used to report upgrade spans, global one is used otherwise
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(r *Router) {
		if provider != nil {
			r.tracerProvider = provider
		}
	}
}

// Router is an http.Handler dispatching upgrade requests to one of two transport handlers, plain requests are
// answered with 404 and empty body
type Router struct {
	modern         http.Handler
	legacy         http.Handler
	logger         *slog.Logger
	tracerProvider trace.TracerProvider
	tracer         trace.Tracer
}

// New returns Router dispatching between provided handlers
func New(modern, legacy http.Handler, options ...Option) (*Router, error) {
	if modern == nil || legacy == nil {
		return nil, ErrHandlerRequired
	}

	r := &Router{
		modern:         modern,
		legacy:         legacy,
		logger:         slog.Default(),
		tracerProvider: otel.GetTracerProvider(),
	}

	for _, o := range options {
		o(r)
	}

	r.tracer = r.tracerProvider.Tracer(instrumentationName)

	return r, nil
}

// Route returns binding for the request
func (router *Router) Route(r *http.Request) Binding {
	return Select(Subprotocols(r.Header))
}

// Handler returns handler for the binding
func (router *Router) Handler(b Binding) http.Handler {
	if b == BindingLegacy {
		return router.legacy
	}

	return router.modern
}

func (router *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !IsUpgrade(r) {
		w.WriteHeader(http.StatusNotFound)

		return
	}

	protocols := Subprotocols(r.Header)
	binding := Select(protocols)

	ctx, span := router.tracer.Start(
		r.Context(),
		"graphql.upgrade",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			SubprotocolsKey.StringSlice(protocols),
			TransportKey.String(binding.String()),
		),
	)

	defer span.End()

	router.logger.Debug(
		"routing websocket upgrade",
		"remote", r.RemoteAddr,
		"subprotocols", protocols,
		"transport", binding.String(),
	)

	router.Handler(binding).ServeHTTP(w, r.WithContext(ctx))
}
