package gate

import (
	"context"
	"errors"
	"io/fs"
	"os"
)

// Error categories. Only the category of a predicate error is ever logged
// or returned; the message may carry paths, tokens or response bodies.
const (
	CategoryPanic      = "panic"
	CategoryNotExist   = "not_exist"
	CategoryPermission = "permission"
	CategoryTimeout    = "timeout"
	CategoryCanceled   = "canceled"
	CategoryUnknown    = "error"
)

// CategorizedError attaches an explicit category to an error.
type CategorizedError struct {
	Category string
	Err      error
}

func (e *CategorizedError) Error() string {
	return e.Category + ": " + e.Err.Error()
}

func (e *CategorizedError) Unwrap() error {
	return e.Err
}

// WithCategory wraps err with an explicit category. A nil err stays nil.
func WithCategory(category string, err error) error {
	if err == nil {
		return nil
	}
	return &CategorizedError{Category: category, Err: err}
}

// Category returns a short, message-free label for err.
func Category(err error) string {
	if err == nil {
		return ""
	}
	var ce *CategorizedError
	if errors.As(err, &ce) && ce.Category != "" {
		return ce.Category
	}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return CategoryNotExist
	case errors.Is(err, fs.ErrPermission):
		return CategoryPermission
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, os.ErrDeadlineExceeded):
		return CategoryTimeout
	case errors.Is(err, context.Canceled):
		return CategoryCanceled
	default:
		return CategoryUnknown
	}
}
