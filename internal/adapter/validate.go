package adapter

import (
	"errors"
	"fmt"
)

var ErrNotAnImage = errors.New("submitted object was not an image")

type NotAnImageError struct {
	// Index is the position of the rejected argument.
	Index int
	Value any
}

func (e *NotAnImageError) Error() string {
	return fmt.Sprintf("%s: argument %d is %s", ErrNotAnImage, e.Index, describe(e.Value))
}

func (e *NotAnImageError) Is(target error) bool {
	return target == ErrNotAnImage
}

func describe(v any) string {
	if v == nil {
		return "<nil>"
	}
	if isNil(v) {
		return fmt.Sprintf("nil %T", v)
	}
	return fmt.Sprintf("%T", v)
}

// CheckType rejects the first handle that is not image-like.
func CheckType(handles ...any) error {
	for i, h := range handles {
		if !IsImageLike(h) {
			return &NotAnImageError{
				Index: i,
				Value: h,
			}
		}
	}
	return nil
}
