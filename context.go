package wsgraphql

import (
	"context"
	"net/http"

	"github.com/eientei/wsgraphqlbc/apollows"
	"github.com/eientei/wsgraphqlbc/mutable"
	"github.com/graphql-go/graphql/language/ast"
)

type (
	contextKeyRequestContextT      struct{}
	contextKeyOperationContextT    struct{}
	contextKeyOperationStoppedT    struct{}
	contextKeyOperationExecutedT   struct{}
	contextKeyOperationIDT         struct{}
	contextKeyAstT                 struct{}
	contextKeySubscriptionT        struct{}
	contextKeyHTTPRequestT         struct{}
	contextKeyHTTPResponseWriterT  struct{}
	contextKeyHTTPResponseStartedT struct{}
	contextKeyWebsocketConnectionT struct{}
	contextKeyConnectionIDT        struct{}
	contextKeyProtocolT            struct{}
)

var (
	// ContextKeyRequestContext used to store HTTP request-scoped mutable.Context
	ContextKeyRequestContext = contextKeyRequestContextT{}

	// ContextKeyOperationContext used to store graphql operation-scoped mutable.Context
	ContextKeyOperationContext = contextKeyOperationContextT{}

	// ContextKeyOperationStopped indicates the operation was stopped on client request or terminated by error
	ContextKeyOperationStopped = contextKeyOperationStoppedT{}

	// ContextKeyOperationExecuted indicates the operation passed validation and was executed
	ContextKeyOperationExecuted = contextKeyOperationExecutedT{}

	// ContextKeyOperationID used to store client-provided operation ID
	ContextKeyOperationID = contextKeyOperationIDT{}

	// ContextKeyAST used to store operation's ast.Document (abstract syntax tree)
	ContextKeyAST = contextKeyAstT{}

	// ContextKeySubscription used to store operation subscription flag
	ContextKeySubscription = contextKeySubscriptionT{}

	// ContextKeyHTTPRequest used to store HTTP request
	ContextKeyHTTPRequest = contextKeyHTTPRequestT{}

	// ContextKeyHTTPResponseWriter used to store HTTP response
	ContextKeyHTTPResponseWriter = contextKeyHTTPResponseWriterT{}

	// ContextKeyHTTPResponseStarted used to indicate HTTP response already has headers sent
	ContextKeyHTTPResponseStarted = contextKeyHTTPResponseStartedT{}

	// ContextKeyWebsocketConnection used to store websocket connection
	ContextKeyWebsocketConnection = contextKeyWebsocketConnectionT{}

	// ContextKeyConnectionID used to store server-generated connection ID
	ContextKeyConnectionID = contextKeyConnectionIDT{}

	// ContextKeyProtocol used to store protocol the connection is served with
	ContextKeyProtocol = contextKeyProtocolT{}
)

func contextValue[T any](ctx context.Context, key interface{}) (res T) {
	v, ok := ctx.Value(key).(T)
	if !ok {
		return res
	}

	return v
}

// RequestContext returns HTTP request-scoped mutable context from provided context, or a new detached one if none
// present
func RequestContext(ctx context.Context) mutable.Context {
	if mutctx := contextValue[mutable.Context](ctx, ContextKeyRequestContext); mutctx != nil {
		return mutctx
	}

	return mutable.NewMutableContext(ctx)
}

// OperationContext returns graphql operation-scoped mutable context from provided context, or a new detached one if
// none present
func OperationContext(ctx context.Context) mutable.Context {
	if mutctx := contextValue[mutable.Context](ctx, ContextKeyOperationContext); mutctx != nil {
		return mutctx
	}

	return mutable.NewMutableContext(ctx)
}

// ContextOperationStopped returns true if operation was stopped
func ContextOperationStopped(ctx context.Context) bool {
	return contextValue[bool](ctx, ContextKeyOperationStopped)
}

// ContextOperationExecuted returns true if operation was executed
func ContextOperationExecuted(ctx context.Context) bool {
	return contextValue[bool](ctx, ContextKeyOperationExecuted)
}

// ContextOperationID returns operation ID stored in the context
func ContextOperationID(ctx context.Context) string {
	return contextValue[string](ctx, ContextKeyOperationID)
}

// ContextAST returns operation's abstract syntax tree document
func ContextAST(ctx context.Context) *ast.Document {
	return contextValue[*ast.Document](ctx, ContextKeyAST)
}

// ContextSubscription returns operation's subscription flag
func ContextSubscription(ctx context.Context) bool {
	return contextValue[bool](ctx, ContextKeySubscription)
}

// ContextHTTPRequest returns http request stored in a context
func ContextHTTPRequest(ctx context.Context) *http.Request {
	return contextValue[*http.Request](ctx, ContextKeyHTTPRequest)
}

// ContextHTTPResponseWriter returns http response writer stored in a context
func ContextHTTPResponseWriter(ctx context.Context) http.ResponseWriter {
	return contextValue[http.ResponseWriter](ctx, ContextKeyHTTPResponseWriter)
}

// ContextHTTPResponseStarted returns true if HTTP response has already headers sent
func ContextHTTPResponseStarted(ctx context.Context) bool {
	return contextValue[bool](ctx, ContextKeyHTTPResponseStarted)
}

// ContextWebsocketConnection returns websocket connection stored in a context
func ContextWebsocketConnection(ctx context.Context) Conn {
	return contextValue[Conn](ctx, ContextKeyWebsocketConnection)
}

// ContextConnectionID returns connection ID stored in a context
func ContextConnectionID(ctx context.Context) string {
	return contextValue[string](ctx, ContextKeyConnectionID)
}

// ContextProtocol returns protocol the connection is served with
func ContextProtocol(ctx context.Context) apollows.Protocol {
	return contextValue[apollows.Protocol](ctx, ContextKeyProtocol)
}
