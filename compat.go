package wsgraphql

import "net/http"

// Upgrader interface used to upgrade HTTP request/response pair into a Conn
// signature based on github.com/gorilla/websocket.Upgrader, but decouples from specific implementation
type Upgrader interface {
	Upgrade(w http.ResponseWriter, r *http.Request, responseHeader http.Header) (Conn, error)
}

// Conn interface is used to abstract connection returned from Upgrader
type Conn interface {
	ReadJSON(v interface{}) error
	WriteJSON(v interface{}) error

	// Close sends close frame with provided code and message, then closes underlying connection
	Close(code int, message string) error

	// Subprotocol returns negotiated websocket subprotocol, empty if none
	Subprotocol() string
}
