package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

var errMissingAction = errors.New("command has no action")

// Command is an operator request received on the command topic.
type Command struct {
	ID     string
	Action string
	Params map[string]any
}

// Codec encodes outbound payloads and decodes command envelopes.
type Codec interface {
	Marshal(v any) ([]byte, error)
	DecodeCommand(payload []byte) (Command, error)
}

// NewCodec returns the codec for "json" or "cbor".
func NewCodec(name string) (Codec, error) {
	switch name {
	case "", "json":
		return jsonCodec{}, nil
	case "cbor":
		dm, err := cbor.DecOptions{
			DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		}.DecMode()
		if err != nil {
			return nil, err
		}
		return cborCodec{dec: dm}, nil
	default:
		return nil, fmt.Errorf("unknown encoding %q", name)
	}
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) DecodeCommand(payload []byte) (Command, error) {
	var envelope structpb.Struct
	unmarshaler := protojson.UnmarshalOptions{DiscardUnknown: true}
	if err := unmarshaler.Unmarshal(payload, &envelope); err != nil {
		return Command{}, fmt.Errorf("proto unmarshal failed: %w", err)
	}
	return commandFromMap(envelope.AsMap())
}

type cborCodec struct {
	dec cbor.DecMode
}

func (cborCodec) Marshal(v any) ([]byte, error) { return cbor.Marshal(v) }

func (c cborCodec) DecodeCommand(payload []byte) (Command, error) {
	var envelope map[string]any
	if err := c.dec.Unmarshal(payload, &envelope); err != nil {
		return Command{}, fmt.Errorf("cbor unmarshal failed: %w", err)
	}
	return commandFromMap(envelope)
}

// commandFromMap reads {"id": ..., "action": ..., "params": {...}}.
func commandFromMap(m map[string]any) (Command, error) {
	var cmd Command
	if id, ok := m["id"].(string); ok {
		cmd.ID = id
	}
	name, ok := m["action"].(string)
	if !ok || name == "" {
		return cmd, errMissingAction
	}
	cmd.Action = name
	switch p := m["params"].(type) {
	case nil:
	case map[string]any:
		cmd.Params = p
	default:
		return cmd, fmt.Errorf("params must be an object, got %T", p)
	}
	return cmd, nil
}
