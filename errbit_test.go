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
	"strings"
	"testing"

	"dirpx.dev/errbit/code"
	"dirpx.dev/errbit/reason"
)

func mustReason(t *testing.T, s string) reason.Reason {
	t.Helper()
	r, err := reason.Parse(s)
	if err != nil {
		t.Fatalf("parse reason: %v", err)
	}
	return r
}

func TestError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"code only", E(code.Internal, "boom"), "internal: boom"},
		{
			"with reason",
			E(code.Unavailable, "db is down", WithReasonOption(mustReason(t, "storage.pg.connect_timeout"))),
			"unavailable:storage.pg.connect_timeout: db is down",
		},
		{"with cause", E(code.Invalid, "bad input").WithCause(errors.New("EOF")), "invalid: bad input: EOF"},
		{"nil", nil, "<nil>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Fatalf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_Immutability_CopyOnWrite(t *testing.T) {
	e1 := E(code.Invalid, "bad").WithDetail("k1", 1)
	e2 := e1.WithDetail("k2", 2)
	e3 := e2.WithReason("input.page").WithMessage("worse")

	if len(e1.Details) != 1 || len(e2.Details) != 2 {
		t.Fatal("details size mismatch")
	}
	if _, ok := e1.Details["k2"]; ok {
		t.Fatal("original mutated")
	}
	if e2.Reason != "" || e2.Message != "bad" {
		t.Fatal("WithReason/WithMessage mutated the receiver")
	}
	if e3.Reason != "input.page" || e3.Message != "worse" {
		t.Fatalf("copy = %+v", e3)
	}
}

func TestError_WithDetails_Merge(t *testing.T) {
	e := E(code.Invalid, "x").WithDetails(map[string]any{"a": 1})
	e2 := e.WithDetails(map[string]any{"b": 2, "a": 3})
	if e.Details["a"] != 1 {
		t.Fatal("original mutated")
	}
	if e2.Details["a"] != 3 || e2.Details["b"] != 2 {
		t.Fatal("merge failed")
	}
	if e2.WithDetails(nil) != e2 {
		t.Fatal("empty merge must return the receiver")
	}
}

func TestError_WithCause_Unwrap(t *testing.T) {
	root := errors.New("root")
	e := E(code.Internal, "x").WithCause(root)
	if !errors.Is(e, root) {
		t.Fatal("errors.Is failed")
	}
	if errors.Unwrap(e) != root {
		t.Fatal("Unwrap failed")
	}
	if e.Kind() != KindPlain {
		t.Fatal("attaching a cause must not make the error structured")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, code.Internal, "x") != nil {
		t.Fatal("Wrap(nil) must be nil")
	}

	root := errors.New("connection refused")
	e := Wrap(root, code.Unavailable, "load account", WithDetailOption("id", 7))

	if !errors.Is(e, root) {
		t.Fatal("errors.Is failed")
	}
	if e.Kind() != KindStructured {
		t.Fatalf("Kind() = %v, want structured", e.Kind())
	}
	tr := e.StructuredCause()
	if tr.Error() != "load account: connection refused" {
		t.Fatalf("trace = %q", tr.Error())
	}
	if len(tr.Stack) == 0 {
		t.Fatal("no stack captured")
	}
	if !strings.Contains(tr.Stack[0].Function, "TestWrap") {
		t.Fatalf("first frame = %s, want the caller of Wrap", tr.Stack[0].Function)
	}
}

func TestWithTrace(t *testing.T) {
	plain := E(code.DataLoss, "checksum mismatch")
	structured := plain.WithTrace()

	if plain.Kind() != KindPlain {
		t.Fatal("WithTrace mutated the receiver")
	}
	if structured.Kind() != KindStructured {
		t.Fatal("WithTrace must capture a trace")
	}
	if structured.WithTrace() != structured {
		t.Fatal("second WithTrace must be a no-op")
	}
	if got := structured.StructuredCause().Error(); got != "checksum mismatch" {
		t.Fatalf("trace = %q", got)
	}

	viaOption := E(code.DataLoss, "checksum mismatch", WithTraceOption())
	if viaOption.Kind() != KindStructured {
		t.Fatal("WithTraceOption must capture a trace")
	}
}

type customReportable struct{ trace *Trace }

func (c customReportable) Error() string            { return "custom" }
func (c customReportable) StructuredCause() *Trace { return c.trace }

func TestClassify(t *testing.T) {
	if Classify(nil) != nil {
		t.Fatal("Classify(nil) must be nil")
	}

	foreign := errors.New("boom")
	plainDomain := E(code.Internal, "boom")
	structured := Wrap(errors.New("unexpected EOF"), code.Invalid, "parse failure")
	wrappedStructured := fmt.Errorf("handler: %w", structured)
	customTrace := &Trace{Message: "custom trace"}

	tests := []struct {
		name      string
		err       error
		wantKind  Kind
		wantTrace *Trace
	}{
		{"foreign", foreign, KindPlain, nil},
		{"plain domain", plainDomain, KindPlain, nil},
		{"structured", structured, KindStructured, structured.StructuredCause()},
		{"wrapped structured", wrappedStructured, KindStructured, structured.StructuredCause()},
		{"custom without trace", customReportable{}, KindPlain, nil},
		{"custom with trace", customReportable{trace: customTrace}, KindStructured, customTrace},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.err)
			if c.Kind() != tt.wantKind {
				t.Fatalf("Kind() = %v, want %v", c.Kind(), tt.wantKind)
			}
			if c.Error() != tt.err.Error() {
				t.Fatalf("Error() = %q, want %q", c.Error(), tt.err.Error())
			}
			if c.Unwrap() != tt.err {
				t.Fatal("Classify must keep the original error")
			}
			switch v := c.(type) {
			case Structured:
				if v.Trace != tt.wantTrace {
					t.Fatal("wrong trace")
				}
			case Plain:
				if tt.wantTrace != nil {
					t.Fatal("expected structured variant")
				}
			}
		})
	}

	c := Classify(structured)
	if Classify(c) != c {
		t.Fatal("an already classified value must pass through")
	}
}

func TestTrace_Chain(t *testing.T) {
	root := errors.New("unexpected EOF")
	mid := fmt.Errorf("read header: %w", root)
	e := Wrap(mid, code.Invalid, "parse failure")

	got := e.StructuredCause().Chain()
	want := []Link{
		{Type: "invalid", Message: "parse failure"},
		{Type: "*fmt.wrapError", Message: "read header"},
		{Type: "*errors.errorString", Message: "unexpected EOF"},
	}
	if len(got) != len(want) {
		t.Fatalf("Chain() = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Chain()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestTrace_ChainNestedDomainErrorAndJoin(t *testing.T) {
	inner := E(code.NotFound, "user missing")
	joined := errors.Join(errors.New("a"), errors.New("b"))
	e := Wrap(inner.WithCause(joined), code.DependencyFailed, "")

	got := e.StructuredCause().Chain()
	if len(got) != 4 {
		t.Fatalf("Chain() = %+v", got)
	}
	if got[0].Type != "not_found" || got[0].Message != "not_found: user missing" {
		t.Fatalf("first link = %+v", got[0])
	}
	if got[1].Type != "*errors.joinError" {
		t.Fatalf("join link = %+v", got[1])
	}
	if got[2].Message != "a" || got[3].Message != "b" {
		t.Fatalf("joined links = %+v", got[2:])
	}
}

func TestTrace_FollowsCopies(t *testing.T) {
	base := Wrap(errors.New("dial tcp: refused"), code.Unavailable, "fetch user",
		WithReasonOption(mustReason(t, "storage.pg.connect")),
		WithDetailOption("node", "pg-2"),
	)
	tr := base.StructuredCause()
	if tr.Reason != "storage.pg.connect" || tr.Details["node"] != "pg-2" {
		t.Fatalf("trace did not capture reason/details: %+v", tr)
	}
	if tr.Label() != "unavailable:storage.pg.connect" {
		t.Fatalf("Label() = %q", tr.Label())
	}
	if got := tr.Chain()[0].Type; got != "unavailable:storage.pg.connect" {
		t.Fatalf("first link type = %q", got)
	}

	derived := base.WithDetail("attempt", 2).WithMessage("fetch user again")
	dt := derived.StructuredCause()
	if dt == tr {
		t.Fatal("WithX must not share a mutated trace")
	}
	if dt.Details["attempt"] != 2 || dt.Message != "fetch user again" {
		t.Fatalf("derived trace = %+v", dt)
	}
	if _, ok := tr.Details["attempt"]; ok || tr.Message != "fetch user" {
		t.Fatal("original trace mutated")
	}
	if &dt.Stack[0] != &tr.Stack[0] {
		t.Fatal("derived trace must keep the captured stack")
	}

	if E(code.Internal, "x").WithDetail("k", 1).StructuredCause() != nil {
		t.Fatal("WithX must not make a plain error structured")
	}
}
