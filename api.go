// Package wsgraphql implements graphql over websocket transport, serving either of the two protocols known as
// graphql-ws (subscriptions-transport-ws, legacy) and graphql-transport-ws (graphql-ws, modern).
//
// Each Server instance speaks exactly one protocol, selected with WithProtocol. Serving clients of both protocols
// on same endpoint is done by constructing one server per protocol and dispatching upgrade requests between them,
// see package router.
//
// Operations are executed with github.com/graphql-go/graphql. Subscription operations stream results until
// resolver channel is closed, operation is stopped by the client or connection is terminated.
package wsgraphql

import (
	"github.com/eientei/wsgraphqlbc/apollows"
)

// WebsocketSubprotocolGraphqlWS websocket subprotocol expected by subscriptions-transport-ws implementations
const WebsocketSubprotocolGraphqlWS = apollows.WebsocketSubprotocolGraphqlWS

// WebsocketSubprotocolGraphqlTransportWS websocket subprotocol expected by graphql-ws implementations
const WebsocketSubprotocolGraphqlTransportWS = apollows.WebsocketSubprotocolGraphqlTransportWS
