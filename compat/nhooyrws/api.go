// Package nhooyrws provides compatibility for nhooyr.io/websocket
package nhooyrws

import (
	"context"
	"net/http"

	"github.com/eientei/wsgraphqlbc"
	"github.com/eientei/wsgraphqlbc/apollows"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// Upgrader accepting websocket connections with nhooyr.io/websocket
type Upgrader struct {
	Options *websocket.AcceptOptions
}

type conn struct {
	ctx context.Context
	*websocket.Conn
}

func (conn conn) ReadJSON(v interface{}) error {
	return wsjson.Read(conn.ctx, conn.Conn, v)
}

func (conn conn) WriteJSON(v interface{}) error {
	return wsjson.Write(conn.ctx, conn.Conn, v)
}

func (conn conn) Close(code int, message string) error {
	return conn.Conn.Close(websocket.StatusCode(code), message)
}

// Upgrade implementation, connection is bound to the request context
func (u Upgrader) Upgrade(w http.ResponseWriter, r *http.Request, responseHeader http.Header) (wsgraphql.Conn, error) {
	for k, vs := range responseHeader {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}

	c, err := websocket.Accept(w, r, u.Options)
	if err != nil {
		return nil, err
	}

	return conn{
		ctx:  r.Context(),
		Conn: c,
	}, nil
}

// New returns upgrader negotiating provided protocol only. Unless checkOrigin is set, requests from any origin are
// accepted.
func New(protocol apollows.Protocol, checkOrigin bool) Upgrader {
	return Upgrader{
		Options: &websocket.AcceptOptions{
			Subprotocols:       []string{string(protocol)},
			InsecureSkipVerify: !checkOrigin,
		},
	}
}
