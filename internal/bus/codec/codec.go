// Package codec converts envelopes to and from plain-data wire formats so
// they can cross a process, worker or socket boundary.
//
// Decoded Data holds generic values: maps become map[string]any and
// numbers take the format's natural Go type (float64 for JSON, uint64 or
// int64 for CBOR integers).
package codec

import (
	"errors"
	"fmt"

	"github.com/dshills/topicbus/internal/bus"
)

// ErrUnknownCodec is returned by ByName for an unsupported format.
var ErrUnknownCodec = errors.New("unknown codec")

// Codec encodes and decodes envelopes.
type Codec interface {
	// Name returns the short format name, e.g. "json".
	Name() string

	// ContentType returns the MIME type of encoded envelopes.
	ContentType() string

	// Encode serializes env. Data that the format cannot represent, such as
	// functions or channels, is an error.
	Encode(env bus.Envelope) ([]byte, error)

	// Decode parses an envelope produced by Encode.
	Decode(data []byte) (bus.Envelope, error)
}

// ByName returns the codec for name.
func ByName(name string) (Codec, error) {
	switch name {
	case "json":
		return JSON, nil
	case "cbor":
		return CBOR, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}

// Names lists the supported codec names.
func Names() []string {
	return []string{"json", "cbor"}
}
