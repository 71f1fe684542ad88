package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

var (
	errEmptyType    = errors.New("envelope type is empty")
	errEmptyFrame   = errors.New("frame is empty")
	errEmptyPayload = errors.New("payload is empty")
)

// Frame is a decoded game envelope whose payload is still raw msgpack
type Frame struct {
	T string             `msgpack:"t"`
	D msgpack.RawMessage `msgpack:"d"`
}

// Encode builds a binary game frame
func Encode(t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, errEmptyType
	}
	if payload == nil {
		return nil, fmt.Errorf("encode %q: %w", t, errEmptyPayload)
	}
	return msgpack.Marshal(Envelope{T: t, Data: payload})
}

// DecodeFrame reads the envelope of a binary game frame
func DecodeFrame(b []byte) (Frame, error) {
	if len(b) == 0 {
		return Frame{}, errEmptyFrame
	}
	var f Frame
	if err := msgpack.Unmarshal(b, &f); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	if f.T == "" {
		return Frame{}, errEmptyType
	}
	return f, nil
}

// DecodePayload unmarshals a frame payload into T
func DecodePayload[T any](f Frame) (T, error) {
	var out T
	if len(f.D) == 0 {
		return out, fmt.Errorf("decode %q: %w", f.T, errEmptyPayload)
	}
	if err := msgpack.Unmarshal(f.D, &out); err != nil {
		return out, fmt.Errorf("decode %q: %w", f.T, err)
	}
	return out, nil
}

// EncodeControl builds a JSON relay control message
func EncodeControl(t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, errEmptyType
	}
	return json.Marshal(Envelope{T: t, Data: payload})
}

// DecodeControl reads the envelope of a relay control message
func DecodeControl(b []byte) (InEnvelope, error) {
	if len(b) == 0 {
		return InEnvelope{}, errEmptyFrame
	}
	var env InEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return InEnvelope{}, fmt.Errorf("decode control: %w", err)
	}
	return env, nil
}

// DecodeControlPayload unmarshals a control payload into T
func DecodeControlPayload[T any](env InEnvelope) (T, error) {
	var out T
	if len(env.D) == 0 {
		return out, fmt.Errorf("decode %q: %w", env.T, errEmptyPayload)
	}
	err := json.Unmarshal(env.D, &out)
	return out, err
}
