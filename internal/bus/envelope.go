package bus

import (
	"reflect"
	"time"

	"github.com/dshills/topicbus/internal/bus/topic"
)

// Envelope is the message handed to every subscriber alongside its data.
//
// Handlers receive Envelope by value and must treat Data as read-only: the
// same Data value is shared by every subscriber of one publish. Data is
// expected to be plain data (no functions or channels) so the envelope can
// cross a worker or socket boundary; see WithStrictPayload.
type Envelope struct {
	// ID uniquely identifies this publish.
	ID string `json:"id" cbor:"id"`

	// Topic is the concrete published topic.
	Topic topic.Topic `json:"topic" cbor:"topic"`

	// Channel is the channel the topic was published on.
	Channel string `json:"channel" cbor:"channel"`

	// Timestamp is when the envelope was built.
	Timestamp time.Time `json:"timestamp" cbor:"timestamp"`

	// Sequence increases monotonically per bus and breaks timestamp ties.
	Sequence uint64 `json:"seq" cbor:"seq"`

	// Data is the published payload.
	Data any `json:"data,omitempty" cbor:"data,omitempty"`
}

// checkPlainData reports whether v can be represented without callables.
// Functions, channels and unsafe pointers are rejected anywhere in v, and so
// are cycles, which no codec can encode. Values shared without a cycle are
// accepted.
func checkPlainData(v any) bool {
	if v == nil {
		return true
	}
	return plainValue(reflect.ValueOf(v), make(map[refKey]bool))
}

// refKey identifies a pointer, map or slice on the current walk path. The
// type and length keep a struct and its first field, or a slice and its
// prefix, apart.
type refKey struct {
	ptr uintptr
	typ reflect.Type
	len int
}

func plainValue(v reflect.Value, path map[refKey]bool) bool {
	switch v.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return false
	case reflect.Pointer:
		if v.IsNil() {
			return true
		}
		return within(v, 0, path, func() bool { return plainValue(v.Elem(), path) })
	case reflect.Interface:
		if v.IsNil() {
			return true
		}
		return plainValue(v.Elem(), path)
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if !plainValue(v.Field(i), path) {
				return false
			}
		}
	case reflect.Slice:
		if v.IsNil() || scalarKind(v.Type().Elem().Kind()) {
			return true
		}
		return within(v, v.Len(), path, func() bool { return plainElems(v, path) })
	case reflect.Array:
		if scalarKind(v.Type().Elem().Kind()) {
			return true
		}
		return plainElems(v, path)
	case reflect.Map:
		if v.IsNil() {
			return true
		}
		return within(v, 0, path, func() bool {
			iter := v.MapRange()
			for iter.Next() {
				if !plainValue(iter.Key(), path) || !plainValue(iter.Value(), path) {
					return false
				}
			}
			return true
		})
	}
	return true
}

func plainElems(v reflect.Value, path map[refKey]bool) bool {
	for i := 0; i < v.Len(); i++ {
		if !plainValue(v.Index(i), path) {
			return false
		}
	}
	return true
}

// within runs walk with v on the path. Meeting v again below itself is a
// cycle.
func within(v reflect.Value, n int, path map[refKey]bool, walk func() bool) bool {
	key := refKey{ptr: v.Pointer(), typ: v.Type(), len: n}
	if path[key] {
		return false
	}
	path[key] = true
	defer delete(path, key)
	return walk()
}

func scalarKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}
