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
	"fmt"
	"strconv"
	"strings"

	"dirpx.dev/errbit"
	"dirpx.dev/errbit/apis"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
)

// ToView converts a domain-level error into a public ErrorView. This
// function performs no automatic redaction or filtering; it exposes exactly
// what the error instance contains.
func ToView(e *errbit.Error) apis.ErrorView {
	if e == nil {
		return apis.ErrorView{}
	}
	v := apis.ErrorView{
		Code:    string(e.Code),
		Reason:  string(e.Reason),
		Message: e.Message,
	}
	if len(e.Details) > 0 {
		v.Details = e.Details
	}
	return v
}

// ToErrorInfo converts a domain-level error together with its resolved
// status into a google.rpc.ErrorInfo for gRPC status details.
//
// ErrorInfo.Reason is the code in UPPER_SNAKE_CASE; the errbit reason, the
// HTTP projection and every detail (formatted with %v) go to Metadata.
func ToErrorInfo(e *errbit.Error, domain string, st apis.Status) *errdetails.ErrorInfo {
	if e == nil {
		return nil
	}
	md := make(map[string]string, len(e.Details)+2)
	for k, v := range e.Details {
		md[k] = fmt.Sprint(v)
	}
	if e.Reason != "" {
		md["reason"] = string(e.Reason)
	}
	if st.HTTP != 0 {
		md["http_status"] = strconv.Itoa(st.HTTP)
	}
	return &errdetails.ErrorInfo{
		Reason:   strings.ToUpper(string(e.Code)),
		Domain:   domain,
		Metadata: md,
	}
}
