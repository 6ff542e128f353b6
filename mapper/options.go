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
	"net/http"

	"dirpx.dev/errbit/code"
	"google.golang.org/grpc/codes"
)

type reasonRule struct {
	prefix string
	val    int
}

type builder struct {
	httpDefaults map[code.Code]int
	grpcDefaults map[code.Code]int

	httpOverride map[code.Code]int
	grpcOverride map[code.Code]int

	httpReasons map[code.Code][]reasonRule
	grpcReasons map[code.Code][]reasonRule

	fallbackHTTP int
	fallbackGRPC codes.Code
}

func newBuilder() *builder {
	b := &builder{
		httpDefaults: make(map[code.Code]int, len(defaultHTTP)),
		grpcDefaults: make(map[code.Code]int, len(defaultGRPC)),
		httpOverride: make(map[code.Code]int),
		grpcOverride: make(map[code.Code]int),
		httpReasons:  make(map[code.Code][]reasonRule),
		grpcReasons:  make(map[code.Code][]reasonRule),
		fallbackHTTP: http.StatusInternalServerError,
		fallbackGRPC: codes.Internal,
	}
	for k, v := range defaultHTTP {
		b.httpDefaults[k] = v
	}
	for k, v := range defaultGRPC {
		b.grpcDefaults[k] = int(v)
	}
	return b
}

// Option adjusts a Mapper under construction.
type Option func(*builder)

// WithHTTPDefault replaces the library default HTTP status for c.
func WithHTTPDefault(c code.Code, status int) Option {
	return func(b *builder) { b.httpDefaults[c] = status }
}

// WithGRPCDefault replaces the library default gRPC code for c.
func WithGRPCDefault(c code.Code, grpc codes.Code) Option {
	return func(b *builder) { b.grpcDefaults[c] = int(grpc) }
}

// WithHTTPOverride forces the HTTP status for c regardless of reason.
func WithHTTPOverride(c code.Code, status int) Option {
	return func(b *builder) { b.httpOverride[c] = status }
}

// WithGRPCOverride forces the gRPC code for c regardless of reason.
func WithGRPCOverride(c code.Code, grpc codes.Code) Option {
	return func(b *builder) { b.grpcOverride[c] = int(grpc) }
}

// WithHTTPReason maps reasons of c starting with prefix to status.
func WithHTTPReason(c code.Code, prefix string, status int) Option {
	return func(b *builder) { b.httpReasons[c] = append(b.httpReasons[c], reasonRule{prefix, status}) }
}

// WithGRPCReason maps reasons of c starting with prefix to grpc.
func WithGRPCReason(c code.Code, prefix string, grpc codes.Code) Option {
	return func(b *builder) { b.grpcReasons[c] = append(b.grpcReasons[c], reasonRule{prefix, int(grpc)}) }
}

// WithFallback sets the statuses used for unknown codes.
func WithFallback(status int, grpc codes.Code) Option {
	return func(b *builder) {
		b.fallbackHTTP = status
		b.fallbackGRPC = grpc
	}
}
