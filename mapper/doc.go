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

// Package mapper resolves errbit error codes (and optional reasons) into
// HTTP and gRPC statuses.
//
// The middleware uses the HTTP side to decide whether a rendered error is a
// server error (5xx) and therefore worth reporting; httpx.Writer and the grpcx
// status interceptor use it to render failures.
//
// # Resolution model
//
// A Mapper resolves statuses in the following order:
//
//  1. exact override for the Code;
//  2. per-Code reason rule, longest matching segment prefix first;
//  3. per-Code default (library or user-adjusted);
//  4. global fallback (500 / codes.Internal).
//
// Reason rules match whole segments: "storage.pg" matches
// "storage.pg.connect" but not "storage.pgbouncer".
//
//	m, err := mapper.New(
//	    mapper.WithHTTPOverride(code.Canceled, 499),
//	    mapper.WithHTTPReason(code.Unavailable, "storage.pg", http.StatusBadGateway),
//	)
//
// A Mapper is immutable after New and safe to share across goroutines.
package mapper
