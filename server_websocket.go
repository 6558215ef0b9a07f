package wsgraphql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/eientei/wsgraphqlbc/apollows"
	"github.com/eientei/wsgraphqlbc/mutable"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
)

// websocket close frame payload is limited to 125 bytes, 2 of which are the code
const maxCloseReason = 123

type websocketRequest struct {
	ctx        mutable.Context
	outgoing   chan outgoingMessage
	acked      chan struct{}
	operations map[string]mutable.Context
	ws         Conn
	server     *serverImpl
	logger     *slog.Logger
	wg         sync.WaitGroup
	m          sync.Mutex

	// owned by reading goroutine
	initialized  bool
	acknowledged bool
}

type outgoingMessage struct {
	*apollows.Message
	apollows.Error
}

func (server *serverImpl) serveWebsocketRequest(
	reqctx mutable.Context,
	w http.ResponseWriter,
	r *http.Request,
) error {
	ws, err := server.upgrader.Upgrade(w, r, nil)

	// upgrader writes failure response by itself
	reqctx.Set(ContextKeyHTTPResponseStarted, true)

	if err != nil {
		return err
	}

	reqctx.Set(ContextKeyWebsocketConnection, ws)

	logger := server.logger.With(
		"connection", ContextConnectionID(reqctx),
		"protocol", string(server.protocol),
		"remote", r.RemoteAddr,
	)

	if ws.Subprotocol() != string(server.protocol) {
		logger.Debug(
			"websocket subprotocol not acceptable",
			"offered", r.Header.Values("sec-websocket-protocol"),
			"negotiated", ws.Subprotocol(),
		)

		code := apollows.EventSubprotocolNotAcceptable

		_ = ws.Close(int(code), code.Error())

		return nil
	}

	req := &websocketRequest{
		ctx:        reqctx,
		outgoing:   make(chan outgoingMessage),
		acked:      make(chan struct{}),
		operations: make(map[string]mutable.Context),
		ws:         ws,
		server:     server,
		logger:     logger,
	}

	logger.Debug("websocket connection established")

	go req.readWebsocket()

	req.writeWebsocket()

	logger.Debug("websocket connection closed")

	return nil
}

func closeReason(message string) string {
	if len(message) > maxCloseReason {
		return message[:maxCloseReason]
	}

	return message
}

// writeWebsocket is the only writer to the connection, returns once outgoing channel is closed
func (req *websocketRequest) writeWebsocket() {
	var (
		tickerch <-chan time.Time
		ackedch  <-chan struct{}
		ticker   *time.Ticker
	)

	if req.server.keepalive > 0 {
		ticker = time.NewTicker(req.server.keepalive)

		defer ticker.Stop()

		// graphql-ws clients expect ka only after connection_ack
		if req.server.protocol.Legacy() {
			ticker.Stop()

			ackedch = req.acked
		} else {
			tickerch = ticker.C
		}
	}

	keepalive := &apollows.Message{
		Type: req.server.protocol.KeepAlive(),
	}

	var closed bool

	for {
		var msg outgoingMessage

		select {
		case m, ok := <-req.outgoing:
			if !ok {
				if !closed {
					_ = req.ws.Close(int(apollows.EventCloseNormal), "")
				}

				return
			}

			msg = m
		case <-tickerch:
			msg.Message = keepalive
		case <-ackedch:
			ackedch = nil

			ticker.Reset(req.server.keepalive)

			tickerch = ticker.C

			continue
		}

		if closed {
			continue
		}

		switch {
		case msg.Message != nil:
			err := req.ws.WriteJSON(msg.Message)
			if err != nil {
				req.logger.Debug("websocket write failed", "error", err)

				_ = req.ws.Close(int(apollows.EventCloseError), closeReason(err.Error()))

				closed = true
			}
		case msg.Error != nil:
			code := msg.Error.EventMessageType()

			req.logger.Debug("closing websocket connection", "code", int(code), "reason", msg.Error.Error())

			_ = req.ws.Close(int(code), closeReason(msg.Error.Error()))

			closed = true
		}
	}
}

func (req *websocketRequest) closeWith(err apollows.Error) {
	select {
	case req.outgoing <- outgoingMessage{Error: err}:
	case <-req.ctx.Done():
	}
}

func (req *websocketRequest) writeMessage(ctx context.Context, t apollows.Operation, payload interface{}) {
	if t == apollows.OperationError {
		OperationContext(ctx).Set(ContextKeyOperationStopped, true)
	}

	select {
	case req.outgoing <- outgoingMessage{
		Message: &apollows.Message{
			ID:   ContextOperationID(ctx),
			Type: t,
			Payload: apollows.Data{
				Value: payload,
			},
		},
	}:
	case <-req.ctx.Done():
	}
}

func (req *websocketRequest) writeResult(ctx context.Context, result *graphql.Result) error {
	if ContextOperationStopped(ctx) && !req.server.protocol.Legacy() {
		return nil
	}

	req.writeMessage(ctx, req.server.protocol.Data(), result)

	return nil
}

func (req *websocketRequest) handleError(ctx context.Context, err error) {
	legacy := req.server.protocol.Legacy()

	var awerr apollows.Error

	if errors.As(err, &awerr) {
		if legacy && awerr.EventMessageType() != apollows.EventCloseNormal {
			req.writeMessage(req.ctx, apollows.OperationConnectionError, FormatError(awerr))
		}

		req.closeWith(awerr)

		return
	}

	var reserr ResultError

	if errors.As(err, &reserr) {
		if legacy {
			req.writeMessage(ctx, apollows.OperationError, combineErrors(reserr.Result.Errors))
		} else {
			req.writeMessage(ctx, apollows.OperationError, reserr.Result.Errors)
		}

		return
	}

	req.logger.Debug("operation failed", "id", ContextOperationID(ctx), "error", err)

	if legacy {
		req.writeMessage(ctx, apollows.OperationError, FormatError(err))
	} else {
		req.writeMessage(ctx, apollows.OperationError, []gqlerrors.FormattedError{FormatError(err)})
	}
}

// readError distinguishes malformed messages from disconnects, latter are not reported
func readError(err error) error {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)

	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return apollows.WrapError(err, apollows.EventInvalidMessage)
	}

	return nil
}

func (req *websocketRequest) readWebsocket() {
	var err error

	defer func() {
		if err != nil {
			req.handleError(req.ctx, err)
		}

		// cancel request context and consequently all pending operation contexts
		req.ctx.Cancel()

		// await for all operations to complete, so nothing will write to req.outgoing from this point
		req.wg.Wait()

		close(req.outgoing)
	}()

	if req.server.connectTimeout > 0 {
		req.wg.Add(1)

		go req.awaitInit()
	}

	for {
		var msg apollows.Message

		err = req.ws.ReadJSON(&msg)
		if err != nil {
			err = readError(err)

			return
		}

		err = req.dispatch(&msg)
		if err != nil {
			return
		}
	}
}

func (req *websocketRequest) awaitInit() {
	defer req.wg.Done()

	timer := time.NewTimer(req.server.connectTimeout)

	defer timer.Stop()

	select {
	case <-timer.C:
		req.closeWith(apollows.EventInitializationTimeout)
	case <-req.acked:
	case <-req.ctx.Done():
	}
}

func (req *websocketRequest) dispatch(msg *apollows.Message) error {
	protocol := req.server.protocol

	switch {
	case msg.Type == apollows.OperationConnectionInit:
		return req.readWebsocketInit(msg)
	case msg.Type == protocol.Start():
		return req.readWebsocketStart(msg)
	case msg.Type == protocol.Stop():
		return req.readWebsocketStop(msg)
	case protocol.Legacy() && msg.Type == apollows.OperationTerminate:
		req.ctx.Set(ContextKeyOperationStopped, true)

		return apollows.EventCloseNormal
	case !protocol.Legacy() && msg.Type == apollows.OperationPing:
		var payload interface{}

		if len(msg.Payload.RawMessage) > 0 {
			payload = msg.Payload.RawMessage
		}

		req.writeMessage(req.ctx, apollows.OperationPong, payload)

		return nil
	case !protocol.Legacy() && msg.Type == apollows.OperationPong:
		return nil
	case protocol.Legacy():
		opctx := mutable.NewMutableContext(req.ctx)

		defer opctx.Cancel()

		opctx.Set(ContextKeyOperationContext, opctx)
		opctx.Set(ContextKeyOperationID, msg.ID)

		req.writeMessage(opctx, apollows.OperationError, gqlerrors.NewFormattedError("Invalid message type!"))

		return nil
	default:
		return apollows.WrapError(
			fmt.Errorf("unexpected message type %q", msg.Type),
			apollows.EventInvalidMessage,
		)
	}
}

func (req *websocketRequest) acknowledge(ctx context.Context, _ apollows.PayloadInit) error {
	if req.acknowledged {
		return nil
	}

	req.acknowledged = true

	close(req.acked)

	req.writeMessage(req.ctx, apollows.OperationConnectionAck, nil)

	if req.server.protocol.Legacy() && req.server.keepalive > 0 {
		req.writeMessage(req.ctx, apollows.OperationKeepAlive, nil)
	}

	req.logger.Debug("websocket connection acknowledged")

	return nil
}

func (req *websocketRequest) readWebsocketInit(msg *apollows.Message) error {
	if req.initialized {
		return apollows.EventTooManyInitializationRequests
	}

	req.initialized = true

	init := make(apollows.PayloadInit)

	if len(msg.Payload.RawMessage) > 0 {
		err := json.Unmarshal(msg.Payload.RawMessage, &init)
		if err != nil {
			return apollows.WrapError(err, apollows.EventInvalidMessage)
		}
	}

	err := req.server.interceptors.Init(req.ctx, init, req.acknowledge)
	if err == nil {
		return nil
	}

	req.logger.Debug("websocket connection refused", "error", err)

	var awerr apollows.Error

	if errors.As(err, &awerr) {
		return awerr
	}

	return apollows.WrapError(err, apollows.EventInternalError)
}

func (req *websocketRequest) readWebsocketStart(msg *apollows.Message) error {
	if !req.acknowledged && !req.server.protocol.Legacy() {
		return apollows.EventUnauthorized
	}

	if msg.ID == "" {
		return apollows.WrapError(errors.New("missing operation id"), apollows.EventInvalidMessage)
	}

	req.m.Lock()

	if prev, ok := req.operations[msg.ID]; ok {
		if !req.server.protocol.Legacy() {
			req.m.Unlock()

			return apollows.NewSubscriberAlreadyExistsError(msg.ID)
		}

		// graphql-ws drops previous operation with the same id silently
		prev.Set(ContextKeyOperationStopped, true)
		prev.Cancel()
	}

	opctx := mutable.NewMutableContext(req.ctx)

	opctx.Set(ContextKeyOperationContext, opctx)
	opctx.Set(ContextKeyOperationID, msg.ID)

	req.operations[msg.ID] = opctx

	req.m.Unlock()

	req.wg.Add(1)

	go req.serveOperation(opctx, msg)

	return nil
}

func (req *websocketRequest) readWebsocketStop(msg *apollows.Message) error {
	if !req.acknowledged && !req.server.protocol.Legacy() {
		return apollows.EventUnauthorized
	}

	req.m.Lock()
	prev, ok := req.operations[msg.ID]
	req.m.Unlock()

	if ok {
		prev.Set(ContextKeyOperationStopped, true)
		prev.Cancel()
	}

	return nil
}

func (req *websocketRequest) serveOperation(opctx mutable.Context, msg *apollows.Message) {
	defer req.wg.Done()

	err := req.serveWebsocketOperation(opctx, msg)
	if err != nil {
		req.handleError(opctx, err)
	}

	stopped := ContextOperationStopped(opctx)

	opctx.Cancel()

	req.m.Lock()

	current, owned := req.operations[msg.ID]

	owned = owned && current == opctx

	if owned {
		delete(req.operations, msg.ID)
	}

	req.m.Unlock()

	// replaced operations complete without notice
	if !owned {
		return
	}

	if !stopped || req.server.protocol.Legacy() {
		req.writeMessage(opctx, apollows.OperationComplete, nil)
	}
}

func (req *websocketRequest) serveWebsocketOperation(opctx mutable.Context, msg *apollows.Message) error {
	var payload apollows.PayloadOperation

	err := json.Unmarshal(msg.Payload.RawMessage, &payload)
	if err != nil {
		if req.server.protocol.Legacy() {
			return err
		}

		return apollows.WrapError(err, apollows.EventInvalidMessage)
	}

	return req.server.interceptors.Operation(opctx, &payload, req.handleOperation)
}

func (req *websocketRequest) handleOperation(ctx context.Context, payload *apollows.PayloadOperation) error {
	cres, err := req.server.interceptors.OperationExecute(ctx, payload, req.server.executeOperation)
	if err != nil {
		return err
	}

	return req.server.processResults(ctx, cres, req.writeResult)
}
