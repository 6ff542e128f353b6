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

// Package errbit reports failed HTTP and gRPC requests to an Errbit
// (Airbrake v3 compatible) error-tracking backend.
//
// The root package holds the error model. Every error that reaches the
// reporting middleware is classified into one of two variants:
//
//   - Plain: reported through its display text only;
//   - Structured: carries a Trace (context message, unwrap chain and the
//     stack of the capture site) that is reported instead.
//
// The variant of an *Error is decided where the error is built:
//
//	errbit.E(code.Unavailable, "storage is down")              // plain
//	errbit.Wrap(err, code.Internal, "failed to parse payload")  // structured
//
// Errors of any other type are classified as Plain, so no failure is ever
// dropped. See Classify.
//
// Interception lives in the transport adapters (httpx, grpcx), the shared
// notifier handle in report, and the Errbit client in notifier.
package errbit
