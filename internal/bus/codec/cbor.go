package codec

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/dshills/topicbus/internal/bus"
)

// CBOR encodes envelopes as CBOR maps with RFC 3339 timestamps.
var CBOR Codec = newCBORCodec()

type cborCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

func newCBORCodec() cborCodec {
	enc, err := cbor.EncOptions{
		Time: cbor.TimeRFC3339Nano,
		Sort: cbor.SortCanonical,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("codec: cbor encoder options: %v", err))
	}

	dec, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("codec: cbor decoder options: %v", err))
	}

	return cborCodec{enc: enc, dec: dec}
}

func (cborCodec) Name() string        { return "cbor" }
func (cborCodec) ContentType() string { return "application/cbor" }

func (c cborCodec) Encode(env bus.Envelope) ([]byte, error) {
	data, err := c.enc.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode envelope %s: %w", env.ID, err)
	}
	return data, nil
}

func (c cborCodec) Decode(data []byte) (bus.Envelope, error) {
	var env bus.Envelope
	if err := c.dec.Unmarshal(data, &env); err != nil {
		return bus.Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}
