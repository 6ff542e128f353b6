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
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"dirpx.dev/errbit"
	"dirpx.dev/errbit/adapter"
	"dirpx.dev/errbit/apis"
	"dirpx.dev/errbit/code"
	"dirpx.dev/errbit/mapper"
)

// RetryAfterDetail is the Details key Writer turns into a Retry-After
// header. The value must be a time.Duration or a number of seconds.
const RetryAfterDetail = "retry_after"

// ErrorHandler renders a failed request.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Writer turns an error into a JSON apis.ErrorView response. The status of
// an errbit.Error comes from Mapper; any other error is a 500.
//
// No automatic redaction or filtering is performed: whatever is present in
// the error is exposed as-is.
type Writer struct {
	Mapper apis.Mapper
}

// Write renders err and attaches it to the response, so a Middleware
// reports it when the status is 5xx. A nil err writes nothing.
func (wr Writer) Write(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	m := wr.Mapper
	if m == nil {
		m = mapper.Default()
	}

	status := http.StatusInternalServerError
	view := apis.ErrorView{
		Code:    string(code.Internal),
		Message: http.StatusText(http.StatusInternalServerError),
	}
	var e *errbit.Error
	if errors.As(err, &e) {
		status = m.HTTPStatus(e.Code, e.Reason)
		view = adapter.ToView(e)
		if s, ok := retryAfter(e.Details[RetryAfterDetail]); ok {
			w.Header().Set("Retry-After", s)
		}
	}

	Attach(w, err)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if r != nil && r.Method == http.MethodHead {
		return
	}
	_ = json.NewEncoder(w).Encode(view)
}

func retryAfter(v any) (string, bool) {
	var secs int64
	switch v := v.(type) {
	case time.Duration:
		secs = int64((v + time.Second - 1) / time.Second)
	case int:
		secs = int64(v)
	case int64:
		secs = v
	case float64:
		secs = int64(v)
	default:
		return "", false
	}
	if secs <= 0 {
		return "", false
	}
	return strconv.FormatInt(secs, 10), true
}

// Adapt turns h into an http.Handler. A returned error is rendered by onErr,
// or by Writer with the default mapper when onErr is nil.
//
// Put a Middleware around the result to report 5xx responses:
//
//	mux.Handle("/users", mw.Handler(httpx.Adapt(getUser, nil)))
func Adapt(h HandlerFunc, onErr ErrorHandler) http.Handler {
	if onErr == nil {
		onErr = Writer{}.Write
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			onErr(w, r, err)
		}
	})
}
