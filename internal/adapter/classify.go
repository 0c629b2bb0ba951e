// Package adapter turns image-like handles into canonical pixel buffers.
package adapter

import (
	"image"
	"imagediff/internal/pixel"
	"imagediff/internal/surface"
	"reflect"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindPicture
	KindSurface
	KindContext
	KindBuffer
)

func (k Kind) String() string {
	switch k {
	case KindPicture:
		return "picture"
	case KindSurface:
		return "surface"
	case KindContext:
		return "context"
	case KindBuffer:
		return "buffer"
	default:
		return "unknown"
	}
}

// RawPixels is anything exposing a width, a height and RGBA bytes.
type RawPixels interface {
	Dimensions() (int, int)
	Pixels() []byte
}

// Source is a classified handle. Only the field matching Kind is set.
type Source struct {
	Kind  Kind
	Value any

	picture image.Image
	surface surface.Surface
	context surface.Context
	buffer  *pixel.Buffer
}

// Classify matches handle against picture, surface, context and raw buffer,
// in that order. The first match wins.
func Classify(handle any) Source {
	unknown := Source{Kind: KindUnknown, Value: handle}
	if isNil(handle) {
		return unknown
	}

	if p, ok := handle.(image.Image); ok {
		return Source{Kind: KindPicture, Value: handle, picture: p}
	}

	if s, ok := handle.(surface.Surface); ok {
		return Source{Kind: KindSurface, Value: handle, surface: s}
	}

	if c, ok := handle.(surface.Context); ok {
		if isNil(c.Surface()) {
			return unknown
		}
		return Source{Kind: KindContext, Value: handle, context: c}
	}

	if r, ok := handle.(RawPixels); ok {
		width, height := r.Dimensions()
		data := r.Pixels()
		if data == nil {
			return unknown
		}
		b, err := pixel.FromBytes(width, height, data)
		if err != nil {
			return unknown
		}
		return Source{Kind: KindBuffer, Value: handle, buffer: b}
	}

	return unknown
}

func IsImageLike(handle any) bool {
	return Classify(handle).Kind != KindUnknown
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
