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

// Package httpx reports failed net/http requests to Errbit.
//
// A Middleware wraps handlers and reports two kinds of failure:
//
//   - propagated: a HandlerFunc returned an error, or the handler panicked;
//   - error response: the response ended with a 5xx status and an error was
//     attached to it with Attach (Writer attaches automatically).
//
// Everything else, including a 5xx with nothing attached, is left alone.
// Responses are never modified.
//
// Typical wiring:
//
//	rep := report.MustDefault()
//	mw := httpx.New(rep)
//
//	mux := http.NewServeMux()
//	mux.Handle("GET /users/{id}", mw.Handler(httpx.Adapt(getUser, nil)))
//	mux.Handle("POST /import", httpx.Adapt(mw.Wrap(importData), nil))
package httpx
