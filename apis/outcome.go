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

// Outcome is the result class of a single request.
type Outcome uint8

const (
	// OutcomeSuccess is a response below 500, or a 5xx without an attached
	// error. It is never reported.
	OutcomeSuccess Outcome = iota

	// OutcomeErrorResponse is a 5xx response carrying an attached error.
	OutcomeErrorResponse

	// OutcomePropagated is a failure returned (or panicked) by the handler.
	OutcomePropagated
)

// String returns a short label usable as a metric label value.
func (o Outcome) String() string {
	switch o {
	case OutcomeErrorResponse:
		return "error_response"
	case OutcomePropagated:
		return "propagated"
	default:
		return "success"
	}
}
