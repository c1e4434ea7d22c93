package codec

import (
	"encoding/json"
	"fmt"

	"github.com/dshills/topicbus/internal/bus"
)

// JSON encodes envelopes as JSON objects.
var JSON Codec = jsonCodec{}

type jsonCodec struct{}

func (jsonCodec) Name() string        { return "json" }
func (jsonCodec) ContentType() string { return "application/json" }

func (jsonCodec) Encode(env bus.Envelope) ([]byte, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode envelope %s: %w", env.ID, err)
	}
	return data, nil
}

func (jsonCodec) Decode(data []byte) (bus.Envelope, error) {
	var env bus.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return bus.Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}
