package apollows

import (
	"encoding/json"
	"io"
)

// Data encapsulates both client and server json payload, combining json.RawMessage for decoding and
// arbitrary interface{} type for encoding
type Data struct {
	Value interface{}
	json.RawMessage
}

func (payload *Data) decode(v interface{}) error {
	if payload == nil || len(payload.RawMessage) == 0 {
		return io.ErrUnexpectedEOF
	}

	err := json.Unmarshal(payload.RawMessage, v)
	if err != nil {
		return err
	}

	return nil
}

// ReadPayloadData client-side method to parse server data/next response
func (payload *Data) ReadPayloadData() (*PayloadDataResponse, error) {
	var pd PayloadDataResponse

	if err := payload.decode(&pd); err != nil {
		return nil, err
	}

	payload.Value = pd

	return &pd, nil
}

// ReadPayloadError client-side method to parse single error, as sent by GWS servers
func (payload *Data) ReadPayloadError() (*PayloadError, error) {
	var pd PayloadError

	if err := payload.decode(&pd); err != nil {
		return nil, err
	}

	payload.Value = pd

	return &pd, nil
}

// ReadPayloadErrors client-side method to parse error list, as sent by GTWS servers
func (payload *Data) ReadPayloadErrors() ([]*PayloadError, error) {
	var pds []*PayloadError

	if err := payload.decode(&pds); err != nil {
		return nil, err
	}

	payload.Value = pds

	return pds, nil
}

// UnmarshalJSON stores provided json as a RawMessage, as well as initializing Value to same RawMessage
// to support both identity re-serialization and modification of Value after initialization
func (payload *Data) UnmarshalJSON(bs []byte) error {
	payload.RawMessage = append(payload.RawMessage[:0], bs...)
	payload.Value = payload.RawMessage

	return nil
}

// MarshalJSON marshals either provided or deserialized Value as json
func (payload Data) MarshalJSON() ([]byte, error) {
	return json.Marshal(payload.Value)
}

// PayloadInit provides connection params
type PayloadInit map[string]interface{}

// PayloadOperation provides description for client-side operation initiation
type PayloadOperation struct {
	Variables     map[string]interface{} `json:"variables"`
	Extensions    map[string]interface{} `json:"extensions"`
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
}

// PayloadErrorLocation error location in originating request
type PayloadErrorLocation struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// PayloadError client-side error representation
type PayloadError struct {
	Extensions map[string]interface{} `json:"extensions"`
	Message    string                 `json:"message"`
	Locations  []PayloadErrorLocation `json:"locations"`
	Path       []interface{}          `json:"path"`
}

// PayloadDataResponse provides client-side payload representation
type PayloadDataResponse struct {
	Data   map[string]interface{} `json:"data,omitempty"`
	Errors []PayloadError         `json:"errors,omitempty"`
}

// MessageRaw encapsulates every message within apollows protocol in both directions
type MessageRaw struct {
	ID      string    `json:"id,omitempty"`
	Type    Operation `json:"type"`
	Payload Data      `json:"payload"`
}

// Message type-alias for (de-)serialization
type Message MessageRaw

// MarshalJSON serializes Message to JSON, excluding empty id or payload from serialized fields.
func (message Message) MarshalJSON() ([]byte, error) {
	var payload *Data

	if message.Payload.Value != nil {
		payload = &message.Payload
	}

	return json.Marshal(struct {
		Payload *Data `json:"payload,omitempty"`
		MessageRaw
	}{
		MessageRaw: MessageRaw(message),
		Payload:    payload,
	})
}
