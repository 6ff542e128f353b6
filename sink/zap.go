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

package sink

import (
	"context"

	"dirpx.dev/errbit/apis"
	"go.uber.org/zap"
)

// Zap writes each failure as one error entry on l. A nil logger is a no-op.
func Zap(l *zap.Logger) apis.Sink {
	if l == nil {
		l = zap.NewNop()
	}
	return zapSink{l: l}
}

type zapSink struct{ l *zap.Logger }

func (s zapSink) Report(_ context.Context, f apis.Failure) {
	fields := []zap.Field{
		zap.String("report_id", f.ID),
		zap.Stringer("outcome", f.Outcome),
	}
	if f.Report != nil {
		fields = append(fields,
			zap.Stringer("kind", f.Report.Kind()),
			zap.String("report", f.Report.Error()),
		)
	}
	if f.Err != nil {
		fields = append(fields, zap.Error(f.Err))
	}
	s.l.Error("errbit: notification failed", fields...)
}
