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

package code

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trim spaces", "  internal  ", "internal"},
		{"to lower", "UnAvAiLaBlE", "unavailable"},
		{"dash to underscore", "dependency-failed", "dependency_failed"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Code
		wantErr bool
	}{
		{"simple", "internal", Internal, false},
		{"upper with dash", " DATA-LOSS ", DataLoss, false},
		{"min length", "abc", Code("abc"), false},
		{"empty", "", Empty, true},
		{"too short", "ab", Empty, true},
		{"starts with digit", "5xx", Empty, true},
		{"too long", "a" + strings.Repeat("b", MaxLength), Empty, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMustParse_PanicsOnInvalid(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustParse should panic on invalid input")
		}
	}()
	_ = MustParse("NOT A CODE ??")
}

func TestOrInternal(t *testing.T) {
	if got := OrInternal(Unavailable); got != Unavailable {
		t.Fatalf("OrInternal(valid) = %q", got)
	}
	if got := OrInternal(Code("Bad-Code")); got != Internal {
		t.Fatalf("OrInternal(invalid) = %q, want internal", got)
	}
	if got := OrInternal(Empty); got != Internal {
		t.Fatalf("OrInternal(empty) = %q, want internal", got)
	}
}

func TestCode_TextRoundTrip(t *testing.T) {
	var c Code
	if err := c.UnmarshalText([]byte("  DEPENDENCY-FAILED ")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if c != DependencyFailed {
		t.Fatalf("UnmarshalText = %q", c)
	}
	text, err := c.MarshalText()
	if err != nil || string(text) != "dependency_failed" {
		t.Fatalf("MarshalText = %q, %v", text, err)
	}
	if _, err := Code("Nope!").MarshalText(); err == nil {
		t.Fatalf("MarshalText on invalid code must fail")
	}
}

func TestDeclaredCodesAreValid(t *testing.T) {
	all := []Code{
		Internal, Unavailable, DependencyFailed, Timeout, Overloaded, Unimplemented, DataLoss,
		Invalid, Missing, NotFound, AlreadyExists, Conflict, Unauthenticated, PermissionDenied,
		RateLimited, Canceled,
	}
	for _, c := range all {
		if err := Validate(c); err != nil {
			t.Fatalf("declared code %q is invalid: %v", c, err)
		}
	}
}

func TestValidate_DocumentedExamples(t *testing.T) {
	for _, s := range []string{"invalid", "not_found", "already_exists", "internal", "too_many_attempts"} {
		if err := Validate(Code(s)); err != nil {
			t.Fatalf("Validate(%q) = %v, want nil", s, err)
		}
	}
	for _, s := range []string{"Invalid", "not-found", "x", "x1", "1notvalid", ""} {
		if err := Validate(Code(s)); err != ErrCodeInvalid {
			t.Fatalf("Validate(%q) = %v, want ErrCodeInvalid", s, err)
		}
	}
	if !strings.HasPrefix(codeFmt, "^[a-z]") || codeRe.String() != codeFmt {
		t.Fatalf("codeRe is not compiled from codeFmt")
	}
}
