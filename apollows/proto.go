// Package apollows provides implementation of GraphQL over WebSocket Protocol as defined by
// https://github.com/apollographql/subscriptions-transport-ws/blob/master/PROTOCOL.md  [GWS]
// https://github.com/enisdenjo/graphql-ws/blob/master/PROTOCOL.md [GTWS]
package apollows

// Protocol websocket subprotocol defining server behavior
type Protocol string

const (
	// WebsocketSubprotocolGraphqlWS websocket subprotocol expected by subscriptions-transport-ws implementations
	WebsocketSubprotocolGraphqlWS Protocol = "graphql-ws"

	// WebsocketSubprotocolGraphqlTransportWS websocket subprotocol expected by graphql-ws implementations
	WebsocketSubprotocolGraphqlTransportWS Protocol = "graphql-transport-ws"
)

// Legacy reports whether protocol is the subscriptions-transport-ws one
func (p Protocol) Legacy() bool {
	return p == WebsocketSubprotocolGraphqlWS
}

// Operation type is used to enumerate possible apollo message types
type Operation string

const (
	// OperationConnectionInit [GWS,GTWS]
	// is set by the connecting client to initialize the websocket state with connection params (if any)
	OperationConnectionInit Operation = "connection_init"

	// OperationStart [GWS]
	// client request initiates new operation, each operation may have 0-N OperationData responses before being
	// terminated by either OperationComplete or OperationError
	OperationStart Operation = "start"

	// OperationSubscribe [GTWS]
	// client request initiates new operation, each operation may have 0-N OperationNext responses before being
	// terminated by either OperationComplete or OperationError
	OperationSubscribe Operation = "subscribe"

	// OperationTerminate [GWS]
	// client request to gracefully close the connection, equivalent to closing the websocket
	OperationTerminate Operation = "connection_terminate"

	// OperationConnectionError [GWS]
	// server response to unsuccessful OperationConnectionInit attempt
	OperationConnectionError Operation = "connection_error"

	// OperationConnectionAck [GWS,GTWS]
	// server response to successful OperationConnectionInit attempt
	OperationConnectionAck Operation = "connection_ack"

	// OperationData [GWS]
	// server response to previously initiated operation with OperationStart
	OperationData Operation = "data"

	// OperationNext [GTWS]
	// server response to previously initiated operation with OperationSubscribe
	OperationNext Operation = "next"

	// OperationError [GWS,GTWS]
	// server response to previously initiated operation with OperationStart/OperationSubscribe
	OperationError Operation = "error"

	// OperationStop [GWS]
	// client request to stop previously initiated operation with OperationStart
	OperationStop Operation = "stop"

	// OperationComplete [GWS,GTWS]
	// GWS: server response indicating previously initiated operation is complete
	// GTWS: server response indicating previously initiated operation is complete
	// GTWS: client request to stop previously initiated operation with OperationSubscribe
	OperationComplete Operation = "complete"

	// OperationKeepAlive [GWS]
	// server response sent periodically to maintain websocket connection open
	OperationKeepAlive Operation = "ka"

	// OperationPing [GTWS]
	// server/client request for OperationPong response
	OperationPing Operation = "ping"

	// OperationPong [GTWS]
	// server/client response for OperationPing request
	// can be sent at any time (without prior OperationPing) to maintain websocket connection
	OperationPong Operation = "pong"
)

// Start returns the client message type initiating an operation under the protocol
func (p Protocol) Start() Operation {
	if p.Legacy() {
		return OperationStart
	}

	return OperationSubscribe
}

// Stop returns the client message type stopping an operation under the protocol
func (p Protocol) Stop() Operation {
	if p.Legacy() {
		return OperationStop
	}

	return OperationComplete
}

// Data returns the server message type carrying an operation result under the protocol
func (p Protocol) Data() Operation {
	if p.Legacy() {
		return OperationData
	}

	return OperationNext
}

// KeepAlive returns the server message type sent periodically under the protocol
func (p Protocol) KeepAlive() Operation {
	if p.Legacy() {
		return OperationKeepAlive
	}

	return OperationPong
}
