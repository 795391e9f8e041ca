package protocol

import (
	"encoding/json"
	"fmt"
)

// DecodeInbound parses a client message. Types a client may not send are
// rejected with ErrUnknownType. The message is still returned so callers
// can answer the sender.
func DecodeInbound(data []byte) (InboundMessage, error) {
	var msg InboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return InboundMessage{}, fmt.Errorf("could not decode message: %w", err)
	}
	if !msg.Type.Inbound() {
		return msg, ErrFnUnknownType(msg.Type)
	}
	return msg, nil
}

// DecodeEnvelope parses a server message
func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("could not decode envelope: %w", err)
	}
	if !env.Type.Outbound() {
		return env, ErrFnUnknownType(env.Type)
	}
	return env, nil
}

// Encode serialises any message for the wire
func Encode(msg interface{}) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("could not encode message: %w", err)
	}
	return data, nil
}
