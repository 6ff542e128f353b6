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

package notifier

// Airbrake v3 notice payload, as accepted by Errbit.

type notice struct {
	Notifier    noticeNotifier `json:"notifier"`
	Errors      []noticeError  `json:"errors"`
	Context     noticeContext  `json:"context"`
	Environment map[string]any `json:"environment"`
	Session     map[string]any `json:"session"`
	Params      map[string]any `json:"params"`
}

type noticeNotifier struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	URL     string `json:"url"`
}

type noticeError struct {
	Type      string        `json:"type"`
	Message   string        `json:"message"`
	Backtrace []noticeFrame `json:"backtrace"`
}

type noticeFrame struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Function string `json:"function"`
}

type noticeContext struct {
	Environment   string `json:"environment,omitempty"`
	Hostname      string `json:"hostname,omitempty"`
	RootDirectory string `json:"rootDirectory,omitempty"`
	Severity      string `json:"severity,omitempty"`
	Language      string `json:"language,omitempty"`
	Time          string `json:"time,omitempty"`

	URL        string `json:"url,omitempty"`
	HTTPMethod string `json:"httpMethod,omitempty"`
	Route      string `json:"route,omitempty"`
	UserAgent  string `json:"userAgent,omitempty"`
	RemoteAddr string `json:"userAddr,omitempty"`
	Component  string `json:"component,omitempty"`
	Action     string `json:"action,omitempty"`
}
