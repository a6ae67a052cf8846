// Package tokenerr defines the failure kinds a wallet workflow can end with.
//
// Every constructor captures a stack trace (cockroachdb/errors), so a caught
// error printed with %+v keeps the full detail for the diagnostic log while
// Error() stays short enough for the display.
package tokenerr

import (
	"github.com/cockroachdb/errors"
)

type Kind string

const (
	KindPrecondition  Kind = "PreconditionError"
	KindValidation    Kind = "ValidationError"
	KindConversion    Kind = "ConversionError"
	KindAssetNotFound Kind = "AssetNotFoundError"
	KindProvider      Kind = "ProviderError"
	KindConnection    Kind = "ConnectionError"
)

type Error struct {
	Kind  Kind
	Msg   string
	cause error
}

func (e *Error) Error() string {
	switch {
	case e.cause == nil:
		return e.Msg
	case e.Msg == "":
		return e.cause.Error()
	default:
		return e.Msg + ": " + e.cause.Error()
	}
}

func (e *Error) Unwrap() error { return e.cause }

func newError(kind Kind, msg string, cause error) error {
	return errors.WithStackDepth(&Error{Kind: kind, Msg: msg, cause: cause}, 2)
}

func Precondition(msg string) error {
	return newError(KindPrecondition, msg, nil)
}

func Validation(msg string) error {
	return newError(KindValidation, msg, nil)
}

func Conversion(format string, args ...any) error {
	return newError(KindConversion, errors.Newf(format, args...).Error(), nil)
}

func AssetNotFound(name string) error {
	return newError(KindAssetNotFound, "abi asset "+quote(name)+" not found", nil)
}

// Provider wraps a wallet, network or contract failure. The caller's message
// is optional; an empty msg surfaces the cause text as is.
func Provider(cause error, msg string) error {
	if cause == nil {
		cause = errors.New("unknown provider failure")
	}
	return newError(KindProvider, msg, cause)
}

func Connection(cause error, msg string) error {
	if cause == nil {
		cause = errors.New("connection rejected")
	}
	return newError(KindConnection, msg, cause)
}

// KindOf reports the kind of the first *Error in err's chain. Errors that did
// not come from this package are treated as provider failures.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindProvider
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func quote(s string) string {
	return `"` + s + `"`
}
