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

// Package sink provides apis.Sink implementations for notification
// failures: structured logs (slog or zap), Prometheus counters, a discard
// sink and a fan-out.
package sink

import (
	"context"
	"log/slog"

	"dirpx.dev/errbit/apis"
)

type discard struct{}

func (discard) Report(context.Context, apis.Failure) {}

// Discard drops every failure.
func Discard() apis.Sink { return discard{} }

// Multi reports each failure to every non-nil sink, in order.
func Multi(sinks ...apis.Sink) apis.Sink {
	out := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

type multi []apis.Sink

func (m multi) Report(ctx context.Context, f apis.Failure) {
	for _, s := range m {
		s.Report(ctx, f)
	}
}

// Log writes each failure as one error record. A nil logger means
// slog.Default().
func Log(l *slog.Logger) apis.Sink {
	if l == nil {
		l = slog.Default()
	}
	return logSink{l: l}
}

type logSink struct{ l *slog.Logger }

func (s logSink) Report(ctx context.Context, f apis.Failure) {
	s.l.LogAttrs(ctx, slog.LevelError, "errbit: notification failed", attrs(f)...)
}

func attrs(f apis.Failure) []slog.Attr {
	out := []slog.Attr{
		slog.String("report_id", f.ID),
		slog.String("outcome", f.Outcome.String()),
	}
	if f.Report != nil {
		out = append(out,
			slog.String("kind", f.Report.Kind().String()),
			slog.String("report", f.Report.Error()),
		)
	}
	if f.Err != nil {
		out = append(out, slog.String("error", f.Err.Error()))
	}
	return out
}
