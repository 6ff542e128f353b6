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

// Package apis defines the small public contracts shared by the errbit
// packages: the notifier the middleware reports to, the sink that observes
// notification failures, the request context attached to a report, and the
// status mapper used to render errors.
//
// Transport adapters (httpx, grpcx) and the reporter (report) depend on these
// interfaces, never on the concrete notifier, so the Errbit client can be
// replaced by anything that implements Notifier.
package apis
