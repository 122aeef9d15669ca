package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec names
const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
)

var errEmptyPayload = errors.New("empty payload")

// Codec frames server link messages as a {type, payload} envelope.
type Codec interface {
	Name() string
	// FrameType is the websocket message type the codec writes.
	FrameType() int
	Encode(msgType string, payload any) ([]byte, error)
	// Decode splits an envelope into its type and still-encoded payload.
	Decode(data []byte) (msgType string, payload []byte, err error)
	// Unmarshal decodes a payload returned by Decode.
	Unmarshal(payload []byte, v any) error
}

// CodecByName returns the codec registered under name.
func CodecByName(name string) (Codec, error) {
	switch name {
	case CodecJSON:
		return jsonCodec{}, nil
	case CodecMsgpack:
		return msgpackCodec{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidCodec, name)
}

type jsonEnvelope struct {
	Type    string          `json:"t"`
	Payload json.RawMessage `json:"d,omitempty"`
}

type jsonCodec struct{}

func (jsonCodec) Name() string   { return CodecJSON }
func (jsonCodec) FrameType() int { return websocket.TextMessage }

func (jsonCodec) Encode(msgType string, payload any) ([]byte, error) {
	env := jsonEnvelope{Type: msgType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", msgType, err)
		}
		env.Payload = raw
	}
	return json.Marshal(env)
}

func (jsonCodec) Decode(data []byte) (string, []byte, error) {
	var env jsonEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", nil, fmt.Errorf("decode envelope: %w", err)
	}
	return env.Type, env.Payload, nil
}

func (jsonCodec) Unmarshal(payload []byte, v any) error {
	if len(payload) == 0 {
		return errEmptyPayload
	}
	return json.Unmarshal(payload, v)
}

// msgpack keeps the payload as a nested bin field so the envelope can be
// routed before the body is decoded.
type msgpackEnvelope struct {
	Type    string `msgpack:"t"`
	Payload []byte `msgpack:"d,omitempty"`
}

type msgpackCodec struct{}

func (msgpackCodec) Name() string   { return CodecMsgpack }
func (msgpackCodec) FrameType() int { return websocket.BinaryMessage }

func (msgpackCodec) Encode(msgType string, payload any) ([]byte, error) {
	env := msgpackEnvelope{Type: msgType}
	if payload != nil {
		raw, err := msgpack.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", msgType, err)
		}
		env.Payload = raw
	}
	return msgpack.Marshal(&env)
}

func (msgpackCodec) Decode(data []byte) (string, []byte, error) {
	var env msgpackEnvelope
	if err := msgpack.Unmarshal(data, &env); err != nil {
		return "", nil, fmt.Errorf("decode envelope: %w", err)
	}
	return env.Type, env.Payload, nil
}

func (msgpackCodec) Unmarshal(payload []byte, v any) error {
	if len(payload) == 0 {
		return errEmptyPayload
	}
	return msgpack.Unmarshal(payload, v)
}
