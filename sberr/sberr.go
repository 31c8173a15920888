// Package sberr defines the error taxonomy shared by the sandbox core and
// its OpenGL driver. Every fault raised by the parser, the module system or
// the compiler carries one of the stable codes below plus whatever
// structured context is known at the raise site. The core never recovers;
// errors propagate untouched to the driver's error callback.
package sberr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Code identifies the failure class. Codes are stable and part of the
// public contract consumed by error callbacks.
type Code string

const (
	// CodeContext reports an unusable GL context: GLFW or OpenGL
	// initialization failed, or the binary was built without cgo.
	CodeContext Code = "CONTEXT_ERROR"
	// CodeShader reports a fault in user shader text: import syntax,
	// reserved imports (main, default), duplicate aliases, missing
	// functions or uniform type conflicts. An import naming an unknown
	// module or function is reported as CodeModule.
	CodeShader Code = "SHADER_ERROR"
	// CodeModule reports a fault on a module operation: unresolved name,
	// method not found, forbidden module name or redefinition.
	CodeModule Code = "MODULE_ERROR"
	// CodeValidation reports a vertex/fragment shader version mismatch.
	CodeValidation Code = "VALIDATION_ERROR"
	// CodeProgram reports a GL program compile or link failure.
	CodeProgram Code = "PROGRAM_ERROR"
	// CodeUnknown wraps an exception escaping a user hook or load callback.
	CodeUnknown Code = "UNKNOWN_ERROR"
)

// Error is a tagged fault. Only Code and Message are always set; the
// remaining fields carry structured context where the raise site knows it.
type Error struct {
	Code    Code
	Message string

	// Module names the GLSL module involved, if any.
	Module string
	// Function names the GLSL function involved, if any.
	Function string
	// Line is the 1-based source line of the fault, 0 if unknown.
	Line int
	// Expected and Actual describe a type conflict.
	Expected string
	Actual   string

	wrapped error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Code))
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	var ctx []string
	if e.Module != "" {
		ctx = append(ctx, "module "+strconv.Quote(e.Module))
	}
	if e.Function != "" {
		ctx = append(ctx, "function "+strconv.Quote(e.Function))
	}
	if e.Line > 0 {
		ctx = append(ctx, "line "+strconv.Itoa(e.Line))
	}
	if e.Expected != "" || e.Actual != "" {
		ctx = append(ctx, "expected "+e.Expected+", got "+e.Actual)
	}
	if len(ctx) > 0 {
		sb.WriteString(" (")
		sb.WriteString(strings.Join(ctx, ", "))
		sb.WriteByte(')')
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.wrapped }

// New returns a tagged error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap tags an existing error. The cause remains reachable via Unwrap.
func Wrap(code Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), wrapped: err}
}

// WithModule returns e with the module context set.
func (e *Error) WithModule(name string) *Error {
	e.Module = name
	return e
}

// WithFunction returns e with the function context set.
func (e *Error) WithFunction(name string) *Error {
	e.Function = name
	return e
}

// WithLine returns e with the source line set.
func (e *Error) WithLine(line int) *Error {
	e.Line = line
	return e
}

// WithTypes returns e annotated with a type conflict.
func (e *Error) WithTypes(expected, actual string) *Error {
	e.Expected = expected
	e.Actual = actual
	return e
}

// IsCode reports whether err or any error it wraps carries code.
func IsCode(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// CodeOf returns the code of err, or CodeUnknown when err carries none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}
