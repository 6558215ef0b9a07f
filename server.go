package wsgraphql

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/eientei/wsgraphqlbc/apollows"
	"github.com/eientei/wsgraphqlbc/mutable"
	"github.com/google/uuid"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
)

type serverConfig struct {
	upgrader       Upgrader
	interceptors   Interceptors
	logger         *slog.Logger
	rootObject     map[string]interface{}
	protocol       apollows.Protocol
	keepalive      time.Duration
	connectTimeout time.Duration
}

type serverImpl struct {
	schema graphql.Schema
	serverConfig
}

func (server *serverImpl) Protocol() apollows.Protocol {
	return server.protocol
}

func (server *serverImpl) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqctx := mutable.NewMutableContext(r.Context())

	reqctx.Set(ContextKeyRequestContext, reqctx)
	reqctx.Set(ContextKeyHTTPRequest, r)
	reqctx.Set(ContextKeyHTTPResponseWriter, w)
	reqctx.Set(ContextKeyConnectionID, uuid.NewString())
	reqctx.Set(ContextKeyProtocol, server.protocol)

	err := server.interceptors.HTTPRequest(reqctx, w, r, server.handleHTTPRequest)
	if err != nil {
		WriteError(reqctx, w, err)
	}

	reqctx.Cancel()
}

func (server *serverImpl) handleHTTPRequest(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if r.Header.Get("connection") == "" || r.Header.Get("upgrade") == "" {
		return ErrHTTPQueryRejected
	}

	return server.serveWebsocketRequest(RequestContext(ctx), w, r)
}

// executeOperation is the innermost HandlerOperationExecute
func (server *serverImpl) executeOperation(
	ctx context.Context,
	payload *apollows.PayloadOperation,
) (chan *graphql.Result, error) {
	astdoc, subscription, result := server.parseAST(payload)
	if result != nil {
		return nil, ResultError{
			Result: result,
		}
	}

	opctx := OperationContext(ctx)

	opctx.Set(ContextKeyAST, astdoc)
	opctx.Set(ContextKeySubscription, subscription)

	params := graphql.ExecuteParams{
		Schema:        server.schema,
		Root:          server.rootObject,
		AST:           astdoc,
		OperationName: payload.OperationName,
		Args:          payload.Variables,
		Context:       ctx,
	}

	if subscription {
		return graphql.ExecuteSubscription(params), nil
	}

	cres := make(chan *graphql.Result, 1)

	cres <- graphql.Execute(params)

	close(cres)

	return cres, nil
}

func (server *serverImpl) processResults(
	ctx context.Context,
	cres chan *graphql.Result,
	write func(ctx context.Context, result *graphql.Result) error,
) error {
	OperationContext(ctx).Set(ContextKeyOperationExecuted, true)

	for {
		select {
		case <-ctx.Done():
			if ContextOperationStopped(ctx) {
				return nil
			}

			return ctx.Err()
		case result, ok := <-cres:
			if !ok {
				return nil
			}

			if result == nil {
				continue
			}

			formatResult(result)

			err := write(ctx, result)
			if err != nil {
				return err
			}
		}
	}
}

// formatResult normalizes result errors, error stored as Data by interceptors included
func formatResult(result *graphql.Result) {
	var errs []gqlerrors.FormattedError

	if err, ok := result.Data.(error); ok {
		errs = append(errs, FormatError(err))

		result.Data = nil
	}

	for _, src := range result.Errors {
		errs = append(errs, FormatError(src))
	}

	result.Errors = errs
}
