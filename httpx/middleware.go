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

package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"dirpx.dev/errbit"
	"dirpx.dev/errbit/apis"
	"dirpx.dev/errbit/code"
	"dirpx.dev/errbit/report"
)

// HandlerFunc is an HTTP handler that can fail.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Middleware reports failed requests to a Reporter. It only observes:
// status, headers, body and returned errors pass through untouched.
//
// A request fails when the handler returns an error or panics
// (apis.OutcomePropagated), or when it completes with a 5xx status and an
// error attached with Attach (apis.OutcomeErrorResponse). A 5xx without an
// attached error and any status below 500 are not reported. Nested
// Middlewares share one recorder, so a request is reported at most once.
type Middleware struct {
	rep *report.Reporter
}

// New returns a Middleware reporting to rep. rep is shared; build it once.
func New(rep *report.Reporter) *Middleware {
	if rep == nil {
		panic("httpx: nil reporter")
	}
	return &Middleware{rep: rep}
}

// Wrap returns next with failure reporting. The returned function yields
// exactly the error next returned.
func (m *Middleware) Wrap(next HandlerFunc) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		return m.serve(w, r, next)
	}
}

// Handler returns next with failure reporting. A panic in next is reported
// and then re-panicked with the same value; http.ErrAbortHandler is not
// reported.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = m.serve(w, r, func(w http.ResponseWriter, r *http.Request) error {
			next.ServeHTTP(w, r)
			return nil
		})
	})
}

func (m *Middleware) serve(w http.ResponseWriter, r *http.Request, next HandlerFunc) (err error) {
	rec := findRecorder(w)
	if rec == nil {
		rec, w = newRecorder(w)
	}

	defer func() {
		if v := recover(); v != nil {
			if !isAbort(v) {
				m.report(r, rec, apis.OutcomePropagated, panicError(v))
			}
			panic(v)
		}
		switch {
		case err != nil:
			m.report(r, rec, apis.OutcomePropagated, err)
		case rec.status() >= http.StatusInternalServerError && rec.err != nil:
			m.report(r, rec, apis.OutcomeErrorResponse, rec.err)
		}
	}()

	return next(w, r)
}

func (m *Middleware) report(r *http.Request, rec *recorder, outcome apis.Outcome, err error) {
	if rec.reported {
		return
	}
	rec.reported = true
	m.rep.Report(requestContext(r), outcome, err)
}

// requestContext is built at report time so a route matched by an inner
// mux (r.Pattern) is included.
func requestContext(r *http.Request) context.Context {
	ctx := r.Context()
	if _, ok := apis.RequestFrom(ctx); ok {
		return ctx
	}
	return apis.WithRequest(ctx, describe(r))
}

// describe returns the report view of r. The query string is not reported.
func describe(r *http.Request) apis.Request {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	u := url.URL{Scheme: scheme, Host: r.Host}
	if r.URL != nil {
		u.Path = r.URL.Path
	}
	return apis.Request{
		Method:     r.Method,
		URL:        u.String(),
		Route:      r.Pattern,
		UserAgent:  r.UserAgent(),
		RemoteAddr: r.RemoteAddr,
	}
}

func isAbort(v any) bool {
	err, ok := v.(error)
	return ok && errors.Is(err, http.ErrAbortHandler)
}

// panicError turns a recovered value into a structured error whose trace
// points at the panic site.
func panicError(v any) error {
	cause, ok := v.(error)
	if !ok {
		cause = fmt.Errorf("%v", v)
	}
	return errbit.Wrap(cause, code.Internal, "panic recovered")
}
