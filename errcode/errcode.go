package errcode

// Code is a stable, driver-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK      Code = "ok"
	Busy    Code = "busy"
	Timeout Code = "timeout"

	InvalidParams  Code = "invalid_params"
	UnknownDevice  Code = "unknown_device"
	UnknownChannel Code = "unknown_channel"
	Configuration  Code = "configuration"
	Frequency      Code = "frequency"
	BaudRate       Code = "baudrate"
	NotSupported   Code = "not_supported"

	NotReady           Code = "not_ready"
	InvalidAddress     Code = "invalid_address"
	NoDevice           Code = "no_device"
	BadData            Code = "bad_data"
	Sleeping           Code = "sleeping"
	ReceiveError       Code = "receive_error"
	PeripheralNotValid Code = "peripheral_not_valid"

	Error Code = "error" // generic fallback
)

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return string(e.C) + ": " + e.Msg
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}
