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

import "errors"

// Kind tells which notification path a failure takes.
type Kind uint8

const (
	// KindPlain failures are reported through their display text only.
	KindPlain Kind = iota
	// KindStructured failures carry a Trace that is reported instead.
	KindStructured
)

// String returns "plain" or "structured".
func (k Kind) String() string {
	if k == KindStructured {
		return "structured"
	}
	return "plain"
}

// Reportable is the capability of an error value to expose a richer,
// structured cause for diagnostics. StructuredCause may return nil, in which
// case the error is reported as plain text.
//
// *Error implements Reportable. Application error types may implement it too;
// Classify finds it anywhere in the unwrap chain.
type Reportable interface {
	error

	// StructuredCause returns the captured trace, or nil.
	StructuredCause() *Trace
}

// Classified is the result of Classify. It is a closed set: the only
// implementations are Plain and Structured.
type Classified interface {
	error

	// Kind returns the variant tag.
	Kind() Kind

	// Unwrap returns the original failure value.
	Unwrap() error

	sealed()
}

// Plain is a failure without a structured cause. Its display text is the
// display text of the original error.
type Plain struct {
	Err error
}

func (p Plain) Error() string { return p.Err.Error() }
func (p Plain) Kind() Kind    { return KindPlain }
func (p Plain) Unwrap() error { return p.Err }
func (Plain) sealed()         {}

// Structured is a failure whose Reportable capability exposed a Trace.
type Structured struct {
	Err   error
	Trace *Trace
}

func (s Structured) Error() string { return s.Err.Error() }
func (s Structured) Kind() Kind    { return KindStructured }
func (s Structured) Unwrap() error { return s.Err }
func (Structured) sealed()         {}

// Classify maps any failure value to exactly one reporting variant.
//
// The lookup has two levels: first whether err (or anything it wraps)
// implements Reportable, then whether that value exposes a Trace. A "no" at
// either level yields Plain, so foreign error types are still reported.
// Classify returns nil only for a nil err.
func Classify(err error) Classified {
	if err == nil {
		return nil
	}
	if c, ok := err.(Classified); ok {
		return c
	}
	var r Reportable
	if !errors.As(err, &r) {
		return Plain{Err: err}
	}
	if t := r.StructuredCause(); t != nil {
		return Structured{Err: err, Trace: t}
	}
	return Plain{Err: err}
}
