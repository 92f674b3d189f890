/*
Package chat contains the real-time presence and messaging layer.

This file defines the wire envelope exchanged over the WebSocket and the event names
understood by both sides.
*/
package chat

import (
	"encoding/json"
	"errors"

	"backbench/internal/pkg/errs"
)

// Event names carried in Frame.Event.
const (
	// EventAuthenticate is sent by a client with its account email.
	EventAuthenticate = "authenticate"

	// EventAuthFailed is sent to one connection whose authentication or submission was refused.
	EventAuthFailed = "authentication failed"

	// EventUserConnected carries the membership snapshot to every connection.
	EventUserConnected = "user connected"

	// EventChatMessage is a chat line: text inbound, ChatMessage outbound.
	EventChatMessage = "chat message"

	// EventMessageError reports a rejected frame to its sender.
	EventMessageError = "message error"
)

// MaxContentBytes is the largest accepted chat message text.
const MaxContentBytes = 5000

// Frame is the JSON envelope of every WebSocket message.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ChatMessage is the outbound payload of EventChatMessage.
type ChatMessage struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

// ErrorPayload is the payload of EventMessageError.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ErrorPayloadFrom converts err to the payload sent to clients.
// Errors that are not *errs.CustomError are reported as ErrUnknown.
func ErrorPayloadFrom(err error) ErrorPayload {
	var customErr *errs.CustomError
	if !errors.As(err, &customErr) {
		customErr = errs.NewError(errs.ErrUnknown, err)
	}
	return ErrorPayload{Code: customErr.Code, Message: customErr.Message}
}

// EncodeFrame marshals data into an envelope for event.
func EncodeFrame(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: event, Data: raw})
}

// DecodeFrame parses an inbound envelope.
func DecodeFrame(b []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(b, &f); err != nil {
		return Frame{}, err
	}
	if f.Event == "" {
		return Frame{}, errors.New("chat: frame has no event")
	}
	return f, nil
}
