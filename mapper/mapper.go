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

package mapper

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"dirpx.dev/errbit/apis"
	"dirpx.dev/errbit/code"
	"dirpx.dev/errbit/reason"
	"google.golang.org/grpc/codes"
)

// New builds an immutable Mapper from the library defaults and opts.
// It fails when a reason rule prefix is not a valid reason.
func New(opts ...Option) (apis.Mapper, error) {
	b := newBuilder()
	for _, opt := range opts {
		opt(b)
	}

	httpReasons, err := freezeRules(b.httpReasons)
	if err != nil {
		return nil, fmt.Errorf("mapper: HTTP %w", err)
	}
	grpcReasons, err := freezeRules(b.grpcReasons)
	if err != nil {
		return nil, fmt.Errorf("mapper: gRPC %w", err)
	}

	return &mapper{
		httpDefault:  copyMap(b.httpDefaults),
		grpcDefault:  copyMap(b.grpcDefaults),
		httpOverride: copyMap(b.httpOverride),
		grpcOverride: copyMap(b.grpcOverride),
		httpReasons:  httpReasons,
		grpcReasons:  grpcReasons,
		fallbackHTTP: b.fallbackHTTP,
		fallbackGRPC: int(b.fallbackGRPC),
	}, nil
}

// Default returns the shared Mapper with the library defaults only.
func Default() apis.Mapper { return defaultMapper() }

var defaultMapper = sync.OnceValue(func() apis.Mapper {
	m, err := New()
	if err != nil {
		panic(err)
	}
	return m
})

type mapper struct {
	httpDefault  map[code.Code]int
	grpcDefault  map[code.Code]int
	httpOverride map[code.Code]int
	grpcOverride map[code.Code]int

	// Rules per code, sorted by descending segment count.
	httpReasons map[code.Code][]reasonRule
	grpcReasons map[code.Code][]reasonRule

	fallbackHTTP int
	fallbackGRPC int
}

func (m *mapper) HTTPStatus(c code.Code, r reason.Reason) int {
	v, _, _ := resolve(c, r, m.httpOverride, m.httpReasons, m.httpDefault, m.fallbackHTTP)
	return v
}

func (m *mapper) GRPCStatus(c code.Code, r reason.Reason) codes.Code {
	v, _, _ := resolve(c, r, m.grpcOverride, m.grpcReasons, m.grpcDefault, m.fallbackGRPC)
	return codes.Code(v)
}

func (m *mapper) Status(c code.Code, r reason.Reason) apis.Status {
	return apis.Status{
		HTTP: m.HTTPStatus(c, r),
		GRPC: m.GRPCStatus(c, r),
	}
}

func (m *mapper) Explain(c code.Code, r reason.Reason) string {
	var b strings.Builder
	_, _ = fmt.Fprintf(&b, "code=%q reason=%q\n", c, r)

	v, src, pat := resolve(c, r, m.httpOverride, m.httpReasons, m.httpDefault, m.fallbackHTTP)
	_, _ = fmt.Fprintf(&b, "http: source=%s%s -> %d\n", src, pattern(pat), v)

	v, src, pat = resolve(c, r, m.grpcOverride, m.grpcReasons, m.grpcDefault, m.fallbackGRPC)
	g := codes.Code(v)
	_, _ = fmt.Fprintf(&b, "grpc: source=%s%s -> %s(%d)", src, pattern(pat), strings.ToUpper(g.String()), v)

	return b.String()
}

func pattern(p string) string {
	if p == "" {
		return ""
	}
	return fmt.Sprintf(" pattern=%q", p)
}

// resolve walks override, reason rules, default and fallback in that order
// and reports which tier answered.
func resolve(c code.Code, r reason.Reason, override map[code.Code]int, rules map[code.Code][]reasonRule,
	def map[code.Code]int, fallback int) (val int, source, pat string) {
	if v, ok := override[c]; ok {
		return v, "override", ""
	}
	if r != reason.Empty {
		for _, rule := range rules[c] {
			if segmentPrefix(string(r), rule.prefix) {
				return rule.val, "reason", rule.prefix
			}
		}
	}
	if v, ok := def[c]; ok {
		return v, "default", ""
	}
	return fallback, "fallback", ""
}

func segmentPrefix(s, prefix string) bool {
	if !strings.HasPrefix(s, prefix) {
		return false
	}
	return len(s) == len(prefix) || s[len(prefix)] == '.'
}

func freezeRules(src map[code.Code][]reasonRule) (map[code.Code][]reasonRule, error) {
	dst := make(map[code.Code][]reasonRule, len(src))
	for c, rules := range src {
		out := make([]reasonRule, 0, len(rules))
		for _, rule := range rules {
			p, err := reason.Parse(rule.prefix)
			if err != nil || p == reason.Empty {
				return nil, fmt.Errorf("invalid reason prefix %q for code %q: %w", rule.prefix, c, reasonErr(err))
			}
			out = append(out, reasonRule{prefix: string(p), val: rule.val})
		}
		sort.SliceStable(out, func(i, j int) bool {
			return strings.Count(out[i].prefix, ".") > strings.Count(out[j].prefix, ".")
		})
		dst[c] = out
	}
	return dst, nil
}

func reasonErr(err error) error {
	if err == nil {
		return reason.ErrReasonInvalidLength
	}
	return err
}

func copyMap(src map[code.Code]int) map[code.Code]int {
	dst := make(map[code.Code]int, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
