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

// Package code provides the canonical error codes carried by errbit.Error.
//
// A code is the top-level, machine-readable classification of a failure,
// such as "internal", "unavailable" or "invalid". It becomes the error type
// shown by the error tracker and drives the HTTP/gRPC status a failure is
// rendered with (see package mapper). Codes are lowercase, underscore
// separated and 3..64 characters long.
package code
