package tabular

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSource = errors.New("invalid csv source")
	ErrIO            = errors.New("i/o failure")
	ErrUnknownKey    = errors.New("unknown key")
	ErrPrecondition  = errors.New("precondition violation")
	ErrTypeMismatch  = errors.New("type mismatch")
)

var (
	ErrSourceUnreadable = func(cause error) error { return fmt.Errorf("%w: cannot read stream: %w", ErrInvalidSource, cause) }
	ErrUnknownEncoding  = func(name string, cause error) error {
		return fmt.Errorf("%w: unknown encoding %q: %w", ErrInvalidSource, name, cause)
	}
	ErrRead           = func(cause error) error { return fmt.Errorf("%w: read: %w", ErrIO, cause) }
	ErrWrite          = func(cause error) error { return fmt.Errorf("%w: write: %w", ErrIO, cause) }
	ErrColumnNotFound = func(col string) error { return fmt.Errorf("%w: column %s", ErrUnknownKey, col) }
	ErrTableNotFound  = func(name string) error { return fmt.Errorf("%w: table %s", ErrUnknownKey, name) }
	ErrCsvNotFound    = func(name string) error { return fmt.Errorf("%w: csv directives %s", ErrUnknownKey, name) }
	ErrPropNotFound   = func(name string) error { return fmt.Errorf("%w: property %s", ErrUnknownKey, name) }
	ErrPropType       = func(name string, got, want any) error {
		return fmt.Errorf("%w: property %s is %T, not %T", ErrTypeMismatch, name, got, want)
	}
	ErrMissingArgument = func(arg string) error { return fmt.Errorf("%w: %s is required", ErrPrecondition, arg) }
	ErrBadDirective    = func(reason string) error { return fmt.Errorf("%w: csv directives: %s", ErrPrecondition, reason) }
	ErrCannotMarshal   = func(v any) error { return fmt.Errorf("cannot marshal value '%v' of type %T", v, v) }
	ErrCannotUnmarshal = func(v any) error { return fmt.Errorf("cannot unmarshal into value of type %T", v) }
)
