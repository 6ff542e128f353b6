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

// Package reason defines an optional, dot-separated refinement of an error
// code, e.g. "storage.pg.connect" or "auth.jwt.verify".
//
// The first segment names the component that failed and the rest names the
// action; the notifier sends them as the report's component/action context.
// The zero value ("") means no refinement.
package reason
