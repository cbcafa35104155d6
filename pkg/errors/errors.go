package errors

import "errors"

// Kind classifies a failure so callers can decide whether to retry, degrade or surface it.
type Kind int

const (
	KindInternal Kind = iota
	// KindValidation marks malformed caller input. Never retried.
	KindValidation
	// KindTransport marks network, timeout and non-2xx failures. Retried.
	KindTransport
	// KindUpstreamLogic marks a well-formed rejection from an upstream. Never retried.
	KindUpstreamLogic
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindTransport:
		return "transport"
	case KindUpstreamLogic:
		return "upstream_logic"
	default:
		return "internal"
	}
}

// AppError encodes domain specific error details.
type AppError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New produces an AppError with an explicit kind.
func New(kind Kind, code, message string, err error) error {
	return &AppError{Kind: kind, Code: code, Message: message, Err: err}
}

// Wrap produces a new AppError instance. The kind is inherited from the
// wrapped error when it carries one.
func Wrap(code, message string, err error) error {
	if err == nil {
		return &AppError{Code: code, Message: message}
	}
	return &AppError{Kind: KindOf(err), Code: code, Message: message, Err: err}
}

// Validation is shorthand for a KindValidation error without a cause.
func Validation(code, message string) error {
	return &AppError{Kind: KindValidation, Code: code, Message: message}
}

// Transport is shorthand for a KindTransport error.
func Transport(message string, err error) error {
	return &AppError{Kind: KindTransport, Code: "transport_error", Message: message, Err: err}
}

// UpstreamLogic is shorthand for a KindUpstreamLogic error.
func UpstreamLogic(message string, err error) error {
	return &AppError{Kind: KindUpstreamLogic, Code: "upstream_error", Message: message, Err: err}
}

// IsCode helps handler differentiate failures.
func IsCode(err error, code string) bool {
	var appErr *AppError
	for err != nil {
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Err
	}
	return false
}

// KindOf reports the kind of the outermost AppError in the chain.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
