package api

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Shape records which response layout an Envelope was decoded from.
type Shape int

const (
	// ShapeEmpty means the body was empty or null.
	ShapeEmpty Shape = iota
	// ShapeWrapped means the value came from {"data": ...}.
	ShapeWrapped
	// ShapeField means the value came from a named field such as {"jobs": [...]}.
	ShapeField
	// ShapeBare means the body itself was the value.
	ShapeBare
	// ShapeMismatch means no layout matched and Data is the zero value.
	ShapeMismatch
)

// Envelope is a decoded API response. Data is the zero value when the body
// did not match any accepted layout.
type Envelope[T any] struct {
	Data  T
	Err   error
	Shape Shape
}

var errNoLayout = errors.New("response matches no known layout")

// Unwrap decodes body as {"data": {field: T}}, {"data": T}, {field: T} and
// finally a bare T, in that order. A body that carries "data" but fails to
// decode is a mismatch rather than a bare value.
func Unwrap[T any](body []byte, field string) Envelope[T] {
	var env Envelope[T]

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		env.Shape = ShapeEmpty
		return env
	}

	var obj map[string]json.RawMessage
	if trimmed[0] == '{' && json.Unmarshal(trimmed, &obj) == nil {
		var dataErr error
		if raw, ok := obj["data"]; ok && !isNull(raw) {
			if field != "" {
				var inner map[string]json.RawMessage
				if json.Unmarshal(raw, &inner) == nil {
					if nested, ok := inner[field]; ok && isComposite(nested) {
						if dataErr = decodeInto(nested, &env.Data); dataErr == nil {
							env.Shape = ShapeField
							return env
						}
					}
				}
			}
			if dataErr == nil {
				if dataErr = decodeInto(raw, &env.Data); dataErr == nil {
					env.Shape = ShapeWrapped
					return env
				}
			}
		}
		if field != "" {
			if raw, ok := obj[field]; ok && !isNull(raw) {
				err := decodeInto(raw, &env.Data)
				if err == nil {
					env.Shape = ShapeField
					return env
				}
				dataErr = errors.Join(dataErr, err)
			}
		}
		if dataErr != nil {
			env.Shape = ShapeMismatch
			env.Err = errors.Join(errNoLayout, dataErr)
			return env
		}
	}

	if err := decodeInto(trimmed, &env.Data); err != nil {
		env.Shape = ShapeMismatch
		env.Err = errors.Join(errNoLayout, err)
		return env
	}
	env.Shape = ShapeBare
	return env
}

// decodeInto leaves dst untouched when raw does not decode.
func decodeInto[T any](raw []byte, dst *T) error {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	*dst = v
	return nil
}

func isComposite(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && (raw[0] == '{' || raw[0] == '[')
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
