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

package adapter

import (
	"net/http"
	"reflect"
	"testing"

	"dirpx.dev/errbit"
	"dirpx.dev/errbit/apis"
	"dirpx.dev/errbit/code"
	"google.golang.org/grpc/codes"
)

func TestToView(t *testing.T) {
	if got := ToView(nil); !reflect.DeepEqual(got, apis.ErrorView{}) {
		t.Fatalf("ToView(nil) = %+v, want zero", got)
	}

	e := errbit.E(code.Conflict, "version mismatch",
		errbit.WithReasonOption("orders.update"),
		errbit.WithDetailOption("expected", 3),
	)
	want := apis.ErrorView{
		Code:    "conflict",
		Reason:  "orders.update",
		Message: "version mismatch",
		Details: map[string]any{"expected": 3},
	}
	if got := ToView(e); !reflect.DeepEqual(got, want) {
		t.Fatalf("ToView() = %+v, want %+v", got, want)
	}
}

func TestToErrorInfo(t *testing.T) {
	if ToErrorInfo(nil, "d", apis.Status{}) != nil {
		t.Fatal("ToErrorInfo(nil) must be nil")
	}

	tests := []struct {
		name string
		err  *errbit.Error
		st   apis.Status
		want map[string]string
	}{
		{
			name: "code only",
			err:  errbit.E(code.PermissionDenied, "nope"),
			st:   apis.Status{HTTP: http.StatusForbidden, GRPC: codes.PermissionDenied},
			want: map[string]string{"http_status": "403"},
		},
		{
			name: "reason and details",
			err: errbit.E(code.DependencyFailed, "billing down").
				WithReason("billing.charge").
				WithDetail("attempt", 2),
			st:   apis.Status{HTTP: http.StatusBadGateway},
			want: map[string]string{"reason": "billing.charge", "http_status": "502", "attempt": "2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ToErrorInfo(tt.err, "example.com", tt.st)
			if info.GetReason() != upper(tt.err.Code) {
				t.Fatalf("Reason = %q", info.GetReason())
			}
			if info.GetDomain() != "example.com" {
				t.Fatalf("Domain = %q", info.GetDomain())
			}
			if !reflect.DeepEqual(info.GetMetadata(), tt.want) {
				t.Fatalf("Metadata = %v, want %v", info.GetMetadata(), tt.want)
			}
		})
	}
}

func upper(c code.Code) string {
	switch c {
	case code.PermissionDenied:
		return "PERMISSION_DENIED"
	case code.DependencyFailed:
		return "DEPENDENCY_FAILED"
	}
	return ""
}
