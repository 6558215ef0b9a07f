package apollows

import "strings"

// Error providing MessageType to close websocket with
type Error interface {
	error
	EventMessageType() MessageType
}

type errorImpl struct {
	error
	message     string
	messageType MessageType
}

func (e errorImpl) EventMessageType() MessageType {
	return e.messageType
}

func (e errorImpl) Unwrap() error {
	return e.error
}

func (e errorImpl) Error() string {
	return e.message
}

// WrapError wraps provided error into Error, prefixing message with the description of messageType, if any
func WrapError(err error, messageType MessageType) Error {
	message := err.Error()

	if desc := messageType.Error(); desc != "" && !strings.HasPrefix(message, desc) {
		message = desc + ": " + message
	}

	return errorImpl{
		error:       err,
		message:     message,
		messageType: messageType,
	}
}

// NewSubscriberAlreadyExistsError constructs new Error using subscriber id as part of the message
func NewSubscriberAlreadyExistsError(id string) Error {
	return errorImpl{
		message:     "Subscriber for " + id + " already exists",
		messageType: EventSubscriberAlreadyExists,
	}
}

// MessageType websocket close codes used to indicate protocol-level events following closing the websocket
type MessageType int

const (
	// EventCloseNormal standard websocket close code
	EventCloseNormal MessageType = 1000

	// EventCloseError standard websocket close code
	EventCloseError MessageType = 1006

	// EventInvalidMessage indicates invalid protocol message
	EventInvalidMessage MessageType = 4400

	// EventUnauthorized indicates attempt to subscribe to an operation before receiving OperationConnectionAck
	EventUnauthorized MessageType = 4401

	// EventForbidden indicates connection was refused during initialization, e.g. by authorization check
	EventForbidden MessageType = 4403

	// EventSubprotocolNotAcceptable indicates client did not negotiate subprotocol supported by the server
	EventSubprotocolNotAcceptable MessageType = 4406

	// EventInitializationTimeout indicates timeout occurring before client sending OperationConnectionInit
	EventInitializationTimeout MessageType = 4408

	// EventSubscriberAlreadyExists indicates subscribed operation ID already being in use
	// (not yet terminated by either OperationComplete or OperationError)
	EventSubscriberAlreadyExists MessageType = 4409

	// EventTooManyInitializationRequests indicates receiving more than one OperationConnectionInit
	EventTooManyInitializationRequests MessageType = 4429

	// EventInternalError indicates unexpected server failure
	EventInternalError MessageType = 4500
)

var messageTypeDescriptions = map[MessageType]string{
	EventCloseNormal:                   "Termination requested",
	EventInvalidMessage:                "Invalid message",
	EventUnauthorized:                  "Unauthorized",
	EventForbidden:                     "Forbidden",
	EventSubprotocolNotAcceptable:      "Subprotocol not acceptable",
	EventInitializationTimeout:         "Connection initialisation timeout",
	EventTooManyInitializationRequests: "Too many initialisation requests",
	EventInternalError:                 "Internal server error",
}

// EventMessageType implementation
func (m MessageType) EventMessageType() MessageType {
	return m
}

// Error implementation
func (m MessageType) Error() string {
	return messageTypeDescriptions[m]
}
