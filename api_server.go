package wsgraphql

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/eientei/wsgraphqlbc/apollows"
	"github.com/graphql-go/graphql"
)

// Server implements graphql websocket handler for single protocol
type Server interface {
	http.Handler

	// Protocol returns websocket subprotocol served
	Protocol() apollows.Protocol
}

// NewServer returns new Server instance
func NewServer(schema graphql.Schema, options ...ServerOption) (Server, error) {
	c := serverConfig{
		protocol: apollows.WebsocketSubprotocolGraphqlTransportWS,
		logger:   slog.Default(),
	}

	for _, o := range options {
		err := o(&c)
		if err != nil {
			return nil, err
		}
	}

	if c.upgrader == nil {
		return nil, ErrUpgraderRequired
	}

	initInterceptors(&c)

	return &serverImpl{
		schema:       schema,
		serverConfig: c,
	}, nil
}

// ServerOption to configure Server
type ServerOption func(config *serverConfig) error

// WithUpgrader option sets Upgrader (interface in image of gorilla websocket upgrader), required
func WithUpgrader(upgrader Upgrader) ServerOption {
	return func(config *serverConfig) error {
		config.upgrader = upgrader

		return nil
	}
}

// WithProtocol option sets protocol for this server to use
// default: graphql-transport-ws
func WithProtocol(protocol apollows.Protocol) ServerOption {
	return func(config *serverConfig) error {
		switch protocol {
		case apollows.WebsocketSubprotocolGraphqlWS, apollows.WebsocketSubprotocolGraphqlTransportWS:
		default:
			return ErrUnsupportedProtocol
		}

		config.protocol = protocol

		return nil
	}
}

// WithInterceptors option sets interceptors around various stages of requests, replacing previously set ones
func WithInterceptors(interceptors Interceptors) ServerOption {
	return func(config *serverConfig) error {
		config.interceptors = interceptors

		return nil
	}
}

// WithExtraInterceptors option appends interceptors after previously set ones
func WithExtraInterceptors(interceptors Interceptors) ServerOption {
	return func(config *serverConfig) error {
		config.interceptors = Interceptors{
			HTTPRequest:      InterceptorHTTPRequestChain(config.interceptors.HTTPRequest, interceptors.HTTPRequest),
			Init:             InterceptorInitChain(config.interceptors.Init, interceptors.Init),
			Operation:        InterceptorOperationChain(config.interceptors.Operation, interceptors.Operation),
			OperationExecute: InterceptorOperationExecuteChain(
				config.interceptors.OperationExecute,
				interceptors.OperationExecute,
			),
		}

		return nil
	}
}

// WithKeepalive enables sending keepalive messages with provided intervals
func WithKeepalive(interval time.Duration) ServerOption {
	return func(config *serverConfig) error {
		config.keepalive = interval

		return nil
	}
}

// WithConnectTimeout option sets duration within which client is allowed to initialize the connection before being
// disconnected
func WithConnectTimeout(timeout time.Duration) ServerOption {
	return func(config *serverConfig) error {
		config.connectTimeout = timeout

		return nil
	}
}

// WithRootObject provides root object that will be used in root resolvers
func WithRootObject(rootObject map[string]interface{}) ServerOption {
	return func(config *serverConfig) error {
		config.rootObject = rootObject

		return nil
	}
}

// WithLogger sets the logger, slog.Default() is used otherwise
func WithLogger(logger *slog.Logger) ServerOption {
	return func(config *serverConfig) error {
		if logger != nil {
			config.logger = logger
		}

		return nil
	}
}

// WriteError helper function writing an error to http.ResponseWriter, unless response was already started
func WriteError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil || ContextHTTPResponseStarted(ctx) {
		return
	}

	bs := []byte(err.Error())

	w.Header().Set("content-length", strconv.Itoa(len(bs)))
	w.WriteHeader(http.StatusBadRequest)

	_, _ = w.Write(bs)
}
