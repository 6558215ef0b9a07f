package wsgraphql

import (
	"context"
	"net/http"

	"github.com/eientei/wsgraphqlbc/apollows"
	"github.com/graphql-go/graphql"
)

// Interceptors allow to customize request processing
// Sequence:
// HTTPRequest -> Init -> [ Operation -> OperationExecute ]*
type Interceptors struct {
	HTTPRequest      InterceptorHTTPRequest
	Init             InterceptorInit
	Operation        InterceptorOperation
	OperationExecute InterceptorOperationExecute
}

type (
	// HandlerHTTPRequest handler
	HandlerHTTPRequest func(ctx context.Context, w http.ResponseWriter, r *http.Request) error
	// HandlerInit handler, acknowledges the connection
	HandlerInit func(ctx context.Context, init apollows.PayloadInit) error
	// HandlerOperation handler, executes operation and writes its results
	HandlerOperation func(ctx context.Context, payload *apollows.PayloadOperation) error
	// HandlerOperationExecute handler, parses and validates operation, then starts execution
	HandlerOperationExecute func(ctx context.Context, payload *apollows.PayloadOperation) (chan *graphql.Result, error)
)

type (
	// InterceptorHTTPRequest interceptor, returned error is written as 400 response unless response was started
	InterceptorHTTPRequest func(
		ctx context.Context,
		w http.ResponseWriter,
		r *http.Request,
		handler HandlerHTTPRequest,
	) error
	// InterceptorInit interceptor, called once per connection on connection_init message.
	// Returning apollows.Error will close the connection with its code.
	InterceptorInit func(
		ctx context.Context,
		init apollows.PayloadInit,
		handler HandlerInit,
	) error
	// InterceptorOperation interceptor
	InterceptorOperation func(
		ctx context.Context,
		payload *apollows.PayloadOperation,
		handler HandlerOperation,
	) error
	// InterceptorOperationExecute interceptor
	InterceptorOperationExecute func(
		ctx context.Context,
		payload *apollows.PayloadOperation,
		handler HandlerOperationExecute,
	) (chan *graphql.Result, error)
)

// InterceptorHTTPRequestChain returns interceptor composed of the provided list, nil entries are skipped
func InterceptorHTTPRequestChain(interceptors ...InterceptorHTTPRequest) InterceptorHTTPRequest {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request, handler HandlerHTTPRequest) error {
		for i := len(interceptors) - 1; i >= 0; i-- {
			if interceptor, next := interceptors[i], handler; interceptor != nil {
				handler = func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
					return interceptor(ctx, w, r, next)
				}
			}
		}

		return handler(ctx, w, r)
	}
}

// InterceptorInitChain returns interceptor composed of the provided list, nil entries are skipped
func InterceptorInitChain(interceptors ...InterceptorInit) InterceptorInit {
	return func(ctx context.Context, init apollows.PayloadInit, handler HandlerInit) error {
		for i := len(interceptors) - 1; i >= 0; i-- {
			if interceptor, next := interceptors[i], handler; interceptor != nil {
				handler = func(ctx context.Context, init apollows.PayloadInit) error {
					return interceptor(ctx, init, next)
				}
			}
		}

		return handler(ctx, init)
	}
}

// InterceptorOperationChain returns interceptor composed of the provided list, nil entries are skipped
func InterceptorOperationChain(interceptors ...InterceptorOperation) InterceptorOperation {
	return func(ctx context.Context, payload *apollows.PayloadOperation, handler HandlerOperation) error {
		for i := len(interceptors) - 1; i >= 0; i-- {
			if interceptor, next := interceptors[i], handler; interceptor != nil {
				handler = func(ctx context.Context, payload *apollows.PayloadOperation) error {
					return interceptor(ctx, payload, next)
				}
			}
		}

		return handler(ctx, payload)
	}
}

// InterceptorOperationExecuteChain returns interceptor composed of the provided list, nil entries are skipped
func InterceptorOperationExecuteChain(interceptors ...InterceptorOperationExecute) InterceptorOperationExecute {
	return func(
		ctx context.Context,
		payload *apollows.PayloadOperation,
		handler HandlerOperationExecute,
	) (chan *graphql.Result, error) {
		for i := len(interceptors) - 1; i >= 0; i-- {
			if interceptor, next := interceptors[i], handler; interceptor != nil {
				handler = func(ctx context.Context, payload *apollows.PayloadOperation) (chan *graphql.Result, error) {
					return interceptor(ctx, payload, next)
				}
			}
		}

		return handler(ctx, payload)
	}
}

func initInterceptors(c *serverConfig) {
	if c.interceptors.HTTPRequest == nil {
		c.interceptors.HTTPRequest = func(
			ctx context.Context,
			w http.ResponseWriter,
			r *http.Request,
			handler HandlerHTTPRequest,
		) error {
			return handler(ctx, w, r)
		}
	}

	if c.interceptors.Init == nil {
		c.interceptors.Init = func(ctx context.Context, init apollows.PayloadInit, handler HandlerInit) error {
			return handler(ctx, init)
		}
	}

	if c.interceptors.Operation == nil {
		c.interceptors.Operation = func(
			ctx context.Context,
			payload *apollows.PayloadOperation,
			handler HandlerOperation,
		) error {
			return handler(ctx, payload)
		}
	}

	if c.interceptors.OperationExecute == nil {
		c.interceptors.OperationExecute = func(
			ctx context.Context,
			payload *apollows.PayloadOperation,
			handler HandlerOperationExecute,
		) (chan *graphql.Result, error) {
			return handler(ctx, payload)
		}
	}
}
