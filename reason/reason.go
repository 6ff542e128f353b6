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

package reason

import (
	"bytes"
	"encoding"
	"errors"
	"regexp"
	"strings"
)

// Reason is the canonical, validated representation of an error reason.
//
// Reasons are dot-separated hierarchical identifiers with a small, fixed depth.
// Each segment names a module, component, or operation inside the system.
//
// Example valid reasons:
//
//   - "apimachinery.schema.gvk.parse"
//   - "apimachinery.schema.types.validate"
//   - "storage.pg.connect"
//   - "auth.jwt.verify"
//   - "network.dns.resolve"
//
// The first segment is reported as the Errbit component and the rest as the
// action (see Component and Action).
type Reason string

// MinLength and MaxLength define the allowed length range for a canonical
// reason string.
//
// Reasons may be a bit longer than codes, because they often contain
// multiple segments (module.component.operation).
const (
	// MinLength is the minimum length for a non-empty reason.
	// It is 3 so that trivial values like "x" are not considered meaningful
	// reasons. The empty string is still allowed and means "no reason provided".
	MinLength = 3

	// MaxLength is the maximum length for a valid reason.
	// 128 characters is enough even for 4 segments with descriptive names.
	MaxLength = 128
)

const (
	// reasonFmt is the canonical regular expression used to validate reasons.
	//
	// It accepts 1 to 4 segments, dot-separated, each segment:
	//
	//   - starts with a lowercase ASCII letter [a-z]
	//   - continues with lowercase letters, digits, or underscore [a-z0-9_]*
	//
	// Examples that match:
	//
	//	"apimachinery.schema.gvk.parse"
	//	"storage.pg.connect"
	//	"auth.jwt.verify"
	//	"network.dns"
	//
	// Examples that DO NOT match:
	//
	//	"ApiMachinery..."  (uppercase)
	//	"apimachinery/schema" (slash)
	//	"apimachinery..schema" (empty segment)
	//	"1schema.parse" (digit first)
	//
	// NOTE: empty string ("") is treated separately as "optional reason" and does
	// not go through this regexp.
	reasonFmt = `^[a-z][a-z0-9_]*(\.[a-z][a-z0-9_]*){0,3}$`
)

var (
	// reasonRe is the compiled regexp for the above pattern.
	reasonRe = regexp.MustCompile(reasonFmt)
)

var (
	// ErrReasonInvalidFormat is returned when a reason does not conform to
	// the expected format.
	ErrReasonInvalidFormat = errors.New("errbit: invalid reason format")
	// ErrReasonInvalidLength is returned when a reason is too short or too long.
	ErrReasonInvalidLength = errors.New("errbit: invalid reason length")
)

// Ensure Reason implements encoding.TextMarshaler / encoding.TextUnmarshaler.
var (
	_ encoding.TextMarshaler   = (*Reason)(nil)
	_ encoding.TextUnmarshaler = (*Reason)(nil)
)

// Empty is the zero-value reason. It is considered "not provided" and is valid
// to store in error structs. Callers that require a non-empty, canonical reason
// should explicitly call Validate.
var Empty Reason = ""

// Normalize takes an arbitrary string and tries to bring it closer to the
// canonical reason form.
//
// Only conservative transformations are applied:
//
//   - trim spaces
//   - lower-case
//   - convert "/" to "." (callers may build paths with slashes)
//   - replace "-" with "_" (to align with code-style identifiers)
//
// It does NOT guarantee validity. Callers should still call Parse/Validate.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "/", ".")
	return strings.ReplaceAll(s, "-", "_")
}

// Parse takes a user-provided string, normalizes it and validates it.
// On success it returns a canonical Reason value.
//
// Parse also accepts the empty string and returns reason.Empty without error.
// This is what makes Reason an "optional" part of the error model.
func Parse(s string) (Reason, error) {
	s = Normalize(s)
	if s == "" {
		return Empty, nil
	}
	if err := validate(s); err != nil {
		return Empty, err
	}
	return Reason(s), nil
}

// MustParse is the panic-on-error variant of Parse. It is useful for
// declaring package-level reasons in var blocks.
//
// NOTE: unlike Parse, MustParse does NOT allow the empty string. Passing
// an empty string here is almost always a programmer error.
func MustParse(s string) Reason {
	r, err := Parse(s)
	if err != nil {
		panic(err)
	}
	if r == Empty {
		panic("errbit: empty reason in MustParse")
	}
	return r
}

// Validate checks whether the provided Reason is in canonical form.
//
// The empty reason ("") is considered valid here, because the whole point of
// this type is to be optional. If you need to enforce "must be non-empty",
// add that check at call site.
func Validate(r Reason) error {
	if r == Empty {
		return nil
	}
	return validate(string(r))
}

// Component returns the first segment, e.g. "storage" for "storage.pg.connect".
func (r Reason) Component() string {
	c, _, _ := strings.Cut(string(r), ".")
	return c
}

// Action returns everything after the first segment, e.g. "pg.connect".
func (r Reason) Action() string {
	_, a, _ := strings.Cut(string(r), ".")
	return a
}

// String returns the canonical string representation of the reason.
func (r Reason) String() string {
	return string(r)
}

// MarshalText implements encoding.TextMarshaler.
//
// The empty reason marshals as an empty slice so JSON/TOML encoders that
// rely on TextMarshaler keep working.
func (r Reason) MarshalText() ([]byte, error) {
	if err := Validate(r); err != nil {
		return nil, err
	}
	if r == Empty {
		return []byte{}, nil
	}
	return []byte(r), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
//
// It normalizes and validates the provided text before assigning.
// An empty or whitespace-only input will produce reason.Empty.
func (r *Reason) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(bytes.TrimSpace(text)))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// validate checks length and format.
func validate(s string) error {
	if len(s) < MinLength || len(s) > MaxLength {
		return ErrReasonInvalidLength
	}
	if !reasonRe.MatchString(s) {
		return ErrReasonInvalidFormat
	}
	return nil
}
