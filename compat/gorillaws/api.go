// Package gorillaws provides compatibility for gorilla websocket upgrader
package gorillaws

import (
	"net/http"

	"github.com/eientei/wsgraphqlbc"
	"github.com/eientei/wsgraphqlbc/apollows"
	"github.com/gorilla/websocket"
)

// Wrapper for gorilla websocket upgrader
type Wrapper struct {
	*websocket.Upgrader
}

type conn struct {
	*websocket.Conn
}

func (conn conn) Close(code int, message string) error {
	origerr := conn.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, message))

	err := conn.Conn.Close()
	if err == nil {
		err = origerr
	}

	return err
}

// Upgrade implementation
func (g Wrapper) Upgrade(w http.ResponseWriter, r *http.Request, responseHeader http.Header) (wsgraphql.Conn, error) {
	c, err := g.Upgrader.Upgrade(w, r, responseHeader)
	if err != nil {
		return nil, err
	}

	return conn{
		Conn: c,
	}, nil
}

// Wrap gorilla upgrader into wsgraphql-compatible interface
func Wrap(upgrader *websocket.Upgrader) Wrapper {
	return Wrapper{
		Upgrader: upgrader,
	}
}

// New returns upgrader negotiating provided protocol only. Unless checkOrigin is set, requests from any origin are
// accepted.
func New(protocol apollows.Protocol, checkOrigin bool) Wrapper {
	upgrader := &websocket.Upgrader{
		Subprotocols: []string{string(protocol)},
	}

	if !checkOrigin {
		upgrader.CheckOrigin = func(r *http.Request) bool {
			return true
		}
	}

	return Wrap(upgrader)
}
