/*
   Copyright 2025 The DIRPX Authors

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package errbit

import (
	"fmt"

	"dirpx.dev/errbit/code"
	"dirpx.dev/errbit/reason"
)

// Error is the canonical reportable error type.
//
// It carries:
//   - Code: high-level, normalized error code (required);
//   - Reason: optional, more specific machine-friendly cause;
//   - Message: human-oriented description (what went wrong);
//   - Details: arbitrary key/value payload, sent as report params;
//   - Cause: wrapped underlying error for errors.Is / errors.As.
//
// Whether an Error is reported through the plain or the structured path is
// fixed when it is built: E produces a plain error, Wrap and WithTrace capture
// a Trace and produce a structured one. The middleware never has to guess.
//
// All mutation helpers (WithX) return a shallow copy, so Error instances
// can be safely shared between the request path and a background reporter.
type Error struct {
	// Code is the primary classification of the error, e.g. "internal",
	// "unavailable". Must be a normalized code from errbit/code.
	Code code.Code

	// Reason refines the Code, e.g. "storage.pg.connect_timeout".
	// May be empty.
	Reason reason.Reason

	// Message is a human-readable explanation.
	Message string

	// Details is an optional, shallow map of extra fields. The map is treated
	// as immutable: WithDetail/WithDetails always copy it.
	Details map[string]any

	// Cause holds the wrapped underlying error (if any).
	Cause error

	// trace is the structured diagnostic captured at construction time.
	// A nil trace means the error is reported as plain text.
	trace *Trace
}

// type check
var _ Reportable = (*Error)(nil)

// E is a convenience constructor for a plain Error.
//
// Usage:
//
//	return errbit.E(code.Unavailable, "storage is down",
//	    errbit.WithReasonOption("storage.pg.connect_timeout"),
//	    errbit.WithDetailOption("host", "db:5432"),
//	)
//
// It always returns a *new* Error and applies all provided options in order.
func E(c code.Code, msg string, opts ...Option) *Error {
	e := &Error{Code: c, Message: msg}
	for _, opt := range opts {
		e = opt(e)
	}
	return e
}

// Wrap builds a structured Error around err. The returned error keeps err as
// its Cause and captures a Trace (unwrap chain plus the caller's stack), so it
// is reported through the structured path.
//
// Wrap returns nil when err is nil.
func Wrap(err error, c code.Code, msg string, opts ...Option) *Error {
	if err == nil {
		return nil
	}
	e := &Error{Code: c, Message: msg, Cause: err}
	for _, opt := range opts {
		e = opt(e)
	}
	cp := *e
	cp.trace = newTrace(&cp, 1)
	return &cp
}

// Error implements the built-in error interface.
//
// The format is:
//
//	<code>: <message>
//
// or, when Reason is present:
//
//	<code>:<reason>: <message>
//
// A wrapped Cause is appended as ": <cause>".
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var s string
	if e.Reason != "" {
		s = fmt.Sprintf("%s:%s: %s", e.Code, e.Reason, e.Message)
	} else {
		s = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

// Unwrap returns the underlying cause, enabling errors.Is / errors.As chains.
func (e *Error) Unwrap() error { return e.Cause }

// StructuredCause implements Reportable. It returns nil for plain errors.
func (e *Error) StructuredCause() *Trace {
	if e == nil {
		return nil
	}
	return e.trace
}

// Kind reports which notification path the error takes.
func (e *Error) Kind() Kind {
	if e.StructuredCause() != nil {
		return KindStructured
	}
	return KindPlain
}

// WithTrace returns a shallow copy of e carrying a Trace captured at the
// caller. An Error that already has a trace is returned unchanged.
func (e *Error) WithTrace() *Error {
	if e.trace != nil {
		return e
	}
	cp := *e
	cp.trace = newTrace(&cp, 1)
	return &cp
}

// WithReason returns a shallow copy of e with the given Reason set.
func (e *Error) WithReason(r reason.Reason) *Error {
	cp := *e
	cp.Reason = r
	cp.retrace()
	return &cp
}

// WithMessage returns a shallow copy of e with a replaced human message.
func (e *Error) WithMessage(msg string) *Error {
	cp := *e
	cp.Message = msg
	cp.retrace()
	return &cp
}

// WithDetail returns a shallow copy of e with one extra key/value in Details.
func (e *Error) WithDetail(k string, v any) *Error {
	cp := *e
	if len(cp.Details) == 0 {
		cp.Details = map[string]any{k: v}
		cp.retrace()
		return &cp
	}
	m := make(map[string]any, len(cp.Details)+1)
	for k0, v0 := range cp.Details {
		m[k0] = v0
	}
	m[k] = v
	cp.Details = m
	cp.retrace()
	return &cp
}

// WithDetails returns a shallow copy of e with all provided kv merged into
// Details, kv taking precedence on key conflicts.
func (e *Error) WithDetails(kv map[string]any) *Error {
	if len(kv) == 0 {
		return e
	}
	cp := *e
	m := make(map[string]any, len(cp.Details)+len(kv))
	for k0, v0 := range cp.Details {
		m[k0] = v0
	}
	for k, v := range kv {
		m[k] = v
	}
	cp.Details = m
	cp.retrace()
	return &cp
}

// WithCause returns a shallow copy of e with the given underlying cause
// attached. If err is nil, the original error is returned unchanged.
//
// Attaching a cause does not change the notification path; use Wrap or
// WithTrace for that. On a structured error the trace follows the new cause.
func (e *Error) WithCause(err error) *Error {
	if err == nil {
		return e
	}
	cp := *e
	cp.Cause = err
	cp.retrace()
	return &cp
}

// retrace keeps an existing trace in step with the fields it mirrors. The
// captured stack is kept.
func (e *Error) retrace() {
	if e.trace == nil {
		return
	}
	t := *e.trace
	t.Code, t.Reason, t.Message, t.Details, t.Err = e.Code, e.Reason, e.Message, e.Details, e.Cause
	e.trace = &t
}
