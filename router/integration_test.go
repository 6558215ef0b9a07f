package router_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/eientei/wsgraphqlbc"
	"github.com/eientei/wsgraphqlbc/apollows"
	"github.com/eientei/wsgraphqlbc/compat/gorillaws"
	"github.com/eientei/wsgraphqlbc/internal/schema"
	"github.com/eientei/wsgraphqlbc/router"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func testNewServer(t *testing.T, protocol apollows.Protocol) wsgraphql.Server {
	gqlschema, err := schema.New()

	require.NoError(t, err)

	server, err := wsgraphql.NewServer(
		gqlschema,
		wsgraphql.WithProtocol(protocol),
		wsgraphql.WithUpgrader(gorillaws.New(protocol, false)),
	)

	require.NoError(t, err)

	return server
}

func testNewRouter(t *testing.T) *httptest.Server {
	rt, err := router.New(
		testNewServer(t, apollows.WebsocketSubprotocolGraphqlTransportWS),
		testNewServer(t, apollows.WebsocketSubprotocolGraphqlWS),
		router.WithTracerProvider(trace.NewNoopTracerProvider()),
	)

	require.NoError(t, err)

	srv := httptest.NewServer(rt)

	t.Cleanup(srv.Close)

	return srv
}

func testDial(t *testing.T, srv *httptest.Server, header http.Header) *websocket.Conn {
	dialer := websocket.Dialer{
		HandshakeTimeout: time.Second,
	}

	conn, resp, err := dialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)

	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		_ = resp.Body.Close()
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	return conn
}

func testGreetings(t *testing.T, conn *websocket.Conn, protocol apollows.Protocol) {
	require.NoError(t, conn.WriteJSON(apollows.Message{
		Type: apollows.OperationConnectionInit,
	}))

	var msg apollows.Message

	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, apollows.OperationConnectionAck, msg.Type)

	require.NoError(t, conn.WriteJSON(apollows.Message{
		ID:   "1",
		Type: protocol.Start(),
		Payload: apollows.Data{
			Value: apollows.PayloadOperation{
				Query: `subscription { greetings }`,
			},
		},
	}))

	for _, greeting := range schema.Greetings {
		msg = apollows.Message{}

		require.NoError(t, conn.ReadJSON(&msg))
		require.Equal(t, protocol.Data(), msg.Type)
		assert.Equal(t, "1", msg.ID)

		pd, err := msg.Payload.ReadPayloadData()

		require.NoError(t, err)
		assert.Equal(t, greeting, pd.Data["greetings"])
	}

	msg = apollows.Message{}

	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, apollows.OperationComplete, msg.Type)
	assert.Equal(t, "1", msg.ID)
}

func TestRouterLegacyClient(t *testing.T) {
	srv := testNewRouter(t)

	conn := testDial(t, srv, http.Header{
		"Sec-Websocket-Protocol": []string{"graphql-ws"},
	})

	assert.Equal(t, "graphql-ws", conn.Subprotocol())

	testGreetings(t, conn, apollows.WebsocketSubprotocolGraphqlWS)
}

func TestRouterModernClient(t *testing.T) {
	srv := testNewRouter(t)

	conn := testDial(t, srv, http.Header{
		"Sec-Websocket-Protocol": []string{"graphql-transport-ws"},
	})

	assert.Equal(t, "graphql-transport-ws", conn.Subprotocol())

	testGreetings(t, conn, apollows.WebsocketSubprotocolGraphqlTransportWS)
}

func TestRouterBothOffered(t *testing.T) {
	srv := testNewRouter(t)

	conn := testDial(t, srv, http.Header{
		"Sec-Websocket-Protocol": []string{"graphql-ws, graphql-transport-ws"},
	})

	assert.Equal(t, "graphql-transport-ws", conn.Subprotocol())

	testGreetings(t, conn, apollows.WebsocketSubprotocolGraphqlTransportWS)
}

func TestRouterUnsupportedSubprotocol(t *testing.T) {
	srv := testNewRouter(t)

	for name, header := range map[string]http.Header{
		"absent":    nil,
		"unrelated": {"Sec-Websocket-Protocol": []string{"mqtt"}},
	} {
		t.Run(name, func(t *testing.T) {
			conn := testDial(t, srv, header)

			var msg apollows.Message

			err := conn.ReadJSON(&msg)

			var closeErr *websocket.CloseError

			require.ErrorAs(t, err, &closeErr)
			assert.Equal(t, int(apollows.EventSubprotocolNotAcceptable), closeErr.Code)
		})
	}
}

func TestRouterPlainRequest(t *testing.T) {
	srv := testNewRouter(t)

	resp, err := srv.Client().Get(srv.URL + "/graphql")

	require.NoError(t, err)

	defer func() {
		_ = resp.Body.Close()
	}()

	bs, err := io.ReadAll(resp.Body)

	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Empty(t, bs)
}
