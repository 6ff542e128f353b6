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

package code

// Server-side failures. These map to 5xx statuses and are what the
// reporting middleware normally sees.
const (
	// Internal is the fallback for unexpected, non-classified failures.
	Internal Code = "internal"

	// Unavailable means the service or a required dependency is temporarily
	// unreachable.
	Unavailable Code = "unavailable"

	// DependencyFailed means an upstream dependency answered with a failure.
	DependencyFailed Code = "dependency_failed"

	// Timeout means the operation exceeded its time budget.
	Timeout Code = "timeout"

	// Overloaded means the service is shedding load.
	Overloaded Code = "overloaded"

	// Unimplemented means the operation exists but is not implemented.
	Unimplemented Code = "unimplemented"

	// DataLoss means unrecoverable data loss or corruption.
	DataLoss Code = "data_loss"
)

// Client-side failures. These map to 4xx statuses and are not reported
// when they come back as error responses.
const (
	Invalid          Code = "invalid"
	Missing          Code = "missing"
	NotFound         Code = "not_found"
	AlreadyExists    Code = "already_exists"
	Conflict         Code = "conflict"
	Unauthenticated  Code = "unauthenticated"
	PermissionDenied Code = "permission_denied"
	RateLimited      Code = "rate_limited"
	Canceled         Code = "canceled"
)
