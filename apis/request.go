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

package apis

import "context"

// Request is the request context attached to a report. All fields are
// optional.
type Request struct {
	// Method is the HTTP method, or "GRPC" for gRPC calls.
	Method string

	// URL is the request URL, or the full gRPC method name.
	URL string

	// Route is the matched route pattern when the router exposes one.
	Route string

	UserAgent  string
	RemoteAddr string
}

type requestKey struct{}

// WithRequest returns a copy of ctx carrying req.
func WithRequest(ctx context.Context, req Request) context.Context {
	return context.WithValue(ctx, requestKey{}, req)
}

// RequestFrom returns the Request stored in ctx, if any.
func RequestFrom(ctx context.Context) (Request, bool) {
	req, ok := ctx.Value(requestKey{}).(Request)
	return req, ok
}

type reportIDKey struct{}

// WithReportID returns a copy of ctx carrying the id of the report being
// sent. Notifiers forward it to the backend so a Sink log line can be matched
// with the notice.
func WithReportID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, reportIDKey{}, id)
}

// ReportIDFrom returns the id stored by WithReportID.
func ReportIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(reportIDKey{}).(string)
	return id, ok && id != ""
}
