package wsgraphql

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eientei/wsgraphqlbc/apollows"
	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterceptorInitChain(t *testing.T) {
	var calls []string

	record := func(name string) InterceptorInit {
		return func(ctx context.Context, init apollows.PayloadInit, handler HandlerInit) error {
			calls = append(calls, name)

			return handler(ctx, init)
		}
	}

	chain := InterceptorInitChain(record("a"), nil, record("b"))

	err := chain(context.Background(), nil, func(ctx context.Context, init apollows.PayloadInit) error {
		calls = append(calls, "handler")

		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "handler"}, calls)
}

func TestInterceptorInitChainShortCircuit(t *testing.T) {
	chain := InterceptorInitChain(
		func(ctx context.Context, init apollows.PayloadInit, handler HandlerInit) error {
			return errTestFailing
		},
		func(ctx context.Context, init apollows.PayloadInit, handler HandlerInit) error {
			t.Fatal("unreachable")

			return nil
		},
	)

	err := chain(context.Background(), nil, func(ctx context.Context, init apollows.PayloadInit) error {
		t.Fatal("unreachable")

		return nil
	})

	assert.ErrorIs(t, err, errTestFailing)
}

func TestInterceptorHTTPRequestChain(t *testing.T) {
	var calls []string

	chain := InterceptorHTTPRequestChain(
		nil,
		func(ctx context.Context, w http.ResponseWriter, r *http.Request, handler HandlerHTTPRequest) error {
			calls = append(calls, "a")

			return handler(ctx, w, r)
		},
	)

	err := chain(
		context.Background(),
		httptest.NewRecorder(),
		httptest.NewRequest(http.MethodGet, "/", nil),
		func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			calls = append(calls, "handler")

			return nil
		},
	)

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "handler"}, calls)
}

func TestInterceptorOperationChain(t *testing.T) {
	var calls []string

	chain := InterceptorOperationChain(
		func(ctx context.Context, payload *apollows.PayloadOperation, handler HandlerOperation) error {
			calls = append(calls, "a:"+payload.Query)

			payload.Query = "rewritten"

			return handler(ctx, payload)
		},
	)

	err := chain(
		context.Background(),
		&apollows.PayloadOperation{Query: "original"},
		func(ctx context.Context, payload *apollows.PayloadOperation) error {
			calls = append(calls, "handler:"+payload.Query)

			return nil
		},
	)

	require.NoError(t, err)
	assert.Equal(t, []string{"a:original", "handler:rewritten"}, calls)
}

func TestInterceptorOperationExecuteChain(t *testing.T) {
	chain := InterceptorOperationExecuteChain(
		nil,
		func(
			ctx context.Context,
			payload *apollows.PayloadOperation,
			handler HandlerOperationExecute,
		) (chan *graphql.Result, error) {
			cres, err := handler(ctx, payload)
			if err != nil {
				return nil, err
			}

			res := <-cres

			res.Data = "intercepted"

			out := make(chan *graphql.Result, 1)

			out <- res

			close(out)

			return out, nil
		},
	)

	cres, err := chain(
		context.Background(),
		&apollows.PayloadOperation{},
		func(ctx context.Context, payload *apollows.PayloadOperation) (chan *graphql.Result, error) {
			out := make(chan *graphql.Result, 1)

			out <- &graphql.Result{}

			close(out)

			return out, nil
		},
	)

	require.NoError(t, err)
	assert.Equal(t, "intercepted", (<-cres).Data)
}

func TestWithExtraInterceptors(t *testing.T) {
	var calls []string

	c := serverConfig{}

	for _, o := range []ServerOption{
		WithInterceptors(Interceptors{
			Init: func(ctx context.Context, init apollows.PayloadInit, handler HandlerInit) error {
				calls = append(calls, "first")

				return handler(ctx, init)
			},
		}),
		WithExtraInterceptors(Interceptors{
			Init: func(ctx context.Context, init apollows.PayloadInit, handler HandlerInit) error {
				calls = append(calls, "second")

				return handler(ctx, init)
			},
		}),
	} {
		require.NoError(t, o(&c))
	}

	initInterceptors(&c)

	require.NoError(t, c.interceptors.Init(context.Background(), nil, func(context.Context, apollows.PayloadInit) error {
		calls = append(calls, "handler")

		return nil
	}))

	assert.Equal(t, []string{"first", "second", "handler"}, calls)
	assert.NotNil(t, c.interceptors.HTTPRequest)
	assert.NotNil(t, c.interceptors.Operation)
	assert.NotNil(t, c.interceptors.OperationExecute)
}
