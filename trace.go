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
	"errors"
	"fmt"
	"runtime"
	"strings"

	"dirpx.dev/errbit/code"
	"dirpx.dev/errbit/reason"
)

// maxStackDepth bounds the number of frames captured for a Trace.
const maxStackDepth = 32

// Frame is a single call site in a captured stack.
type Frame struct {
	Function string `json:"function"`
	File     string `json:"file"`
	Line     int    `json:"line"`
}

// Link is one element of an error chain, outermost first.
type Link struct {
	// Type is the Go type of the error at this link, or "code[:reason]" for
	// errbit errors and the context link of a Trace.
	Type string `json:"type"`

	// Message is the link's own message, with the text of the inner links
	// stripped when they are formatted as "<outer>: <inner>".
	Message string `json:"message"`
}

// Trace is the structured cause of an Error: the context message it was
// captured with, the underlying error chain and the stack of the capture site.
//
// Code, Reason, Message and Details mirror the Error that owns the trace and
// follow its WithX copies; the stack stays the one captured at construction.
//
// A Trace is immutable once built and can be read from any goroutine.
type Trace struct {
	Code    code.Code
	Reason  reason.Reason
	Message string
	Details map[string]any
	Err     error
	Stack   []Frame
}

func newTrace(e *Error, skip int) *Trace {
	return &Trace{
		Code:    e.Code,
		Reason:  e.Reason,
		Message: e.Message,
		Details: e.Details,
		Err:     e.Cause,
		Stack:   captureStack(skip),
	}
}

// Label is "code" or "code:reason".
func (t *Trace) Label() string { return label(t.Code, t.Reason) }

func label(c code.Code, r reason.Reason) string {
	if r == reason.Empty {
		return string(c)
	}
	return string(c) + ":" + string(r)
}

// Error renders the trace as "<message>: <cause>".
func (t *Trace) Error() string {
	switch {
	case t.Err == nil:
		return t.Message
	case t.Message == "":
		return t.Err.Error()
	default:
		return t.Message + ": " + t.Err.Error()
	}
}

// Unwrap returns the underlying error.
func (t *Trace) Unwrap() error { return t.Err }

// Chain flattens the trace into links, starting with the context message and
// followed by every error reachable through Unwrap. Joined errors are walked
// depth-first in order.
func (t *Trace) Chain() []Link {
	links := []Link{{Type: t.Label(), Message: t.Message}}
	if t.Message == "" && t.Err != nil {
		links = links[:0]
	}
	return appendChain(links, t.Err)
}

func appendChain(links []Link, err error) []Link {
	for err != nil {
		switch u := err.(type) {
		case interface{ Unwrap() []error }:
			links = append(links, Link{Type: typeName(err), Message: err.Error()})
			for _, inner := range u.Unwrap() {
				links = appendChain(links, inner)
			}
			return links
		default:
			inner := errors.Unwrap(err)
			links = append(links, Link{Type: typeName(err), Message: ownMessage(err, inner)})
			err = inner
		}
	}
	return links
}

// ownMessage strips the conventional ": <inner>" suffix that fmt.Errorf("%w")
// style wrappers append.
func ownMessage(err, inner error) string {
	msg := err.Error()
	if inner == nil {
		return msg
	}
	if trimmed, ok := strings.CutSuffix(msg, ": "+inner.Error()); ok && trimmed != "" {
		return trimmed
	}
	return msg
}

func typeName(err error) string {
	if e, ok := err.(*Error); ok && e.Code != "" {
		return label(e.Code, e.Reason)
	}
	return fmt.Sprintf("%T", err)
}

// captureStack records up to maxStackDepth frames above its caller's caller,
// plus skip extra frames. Runtime internals are dropped.
func captureStack(skip int) []Frame {
	// +3 skips runtime.Callers, captureStack and newTrace.
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(skip+3, pcs)
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	out := make([]Frame, 0, n)
	for {
		f, more := frames.Next()
		if !strings.HasPrefix(f.Function, "runtime.") {
			out = append(out, Frame{Function: f.Function, File: f.File, Line: f.Line})
		}
		if !more {
			break
		}
	}
	return out
}
