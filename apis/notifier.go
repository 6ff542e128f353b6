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

import (
	"context"

	"dirpx.dev/errbit"
)

// Notifier ships failure reports to an error-tracking backend.
//
// Both methods may block on I/O and may fail; a failure is reported to a
// Sink and never reaches the request path. Implementations must be safe for
// concurrent use: a single Notifier is shared by every in-flight request.
type Notifier interface {
	// NotifyPlain reports err through its display text.
	NotifyPlain(ctx context.Context, err error) error

	// NotifyStructured reports a structured cause (context message, error
	// chain and captured stack).
	NotifyStructured(ctx context.Context, t *errbit.Trace) error
}

// Sink observes notifications that could not be delivered. It is the only
// place a notification failure ends up.
//
// Report must not block for long and must not panic.
type Sink interface {
	Report(ctx context.Context, f Failure)
}

// SinkFunc adapts a plain function to Sink.
type SinkFunc func(ctx context.Context, f Failure)

// Report calls fn(ctx, f).
func (fn SinkFunc) Report(ctx context.Context, f Failure) { fn(ctx, f) }

// Failure describes one notification that did not make it.
type Failure struct {
	// ID identifies the report attempt. It is also sent to the backend as a
	// param, so a log line can be matched with a partially received notice.
	ID string

	// Outcome is the request outcome that triggered the report.
	Outcome Outcome

	// Report is the classified request failure that was being reported.
	Report errbit.Classified

	// Err is why the notification failed.
	Err error
}
