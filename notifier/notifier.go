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

// Package notifier is an Errbit client implementing apis.Notifier.
//
// Notices are posted to the Airbrake v3 API that Errbit serves:
//
//	POST {host}/api/v3/projects/{project_id}/notices?key={project_key}
//
// A token bucket limits how many notices leave the process; notices over the
// limit fail with ErrRateLimited without touching the network. Retries are
// not attempted: reporting is best-effort.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"dirpx.dev/errbit"
	"dirpx.dev/errbit/apis"
	"dirpx.dev/errbit/code"
	"dirpx.dev/errbit/config"
	"dirpx.dev/errbit/reason"
	"golang.org/x/time/rate"
)

// Version is sent as the notifier version in every notice.
const Version = "0.3.0"

const (
	notifierName = "dirpx-errbit"
	notifierURL  = "https://dirpx.dev/errbit"

	reportIDParam = "report_id"

	// maxErrorBody bounds how much of a rejected response is kept.
	maxErrorBody = 1 << 10
)

// ErrRateLimited is returned when the token bucket is empty.
var ErrRateLimited = errors.New("notifier: rate limited")

// StatusError is returned when Errbit answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("notifier: errbit responded %d", e.StatusCode)
	}
	return fmt.Sprintf("notifier: errbit responded %d: %s", e.StatusCode, e.Body)
}

// Notifier posts notices to one Errbit project. It is safe for concurrent use.
type Notifier struct {
	endpoint    string
	environment string
	hostname    string
	rootDir     string
	client      *http.Client
	limiter     *rate.Limiter
}

// type check
var _ apis.Notifier = (*Notifier)(nil)

// Option customizes a Notifier.
type Option func(*Notifier)

// WithHTTPClient replaces the default client (timeout = config Timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(n *Notifier) { n.client = c }
}

// WithLimiter replaces the limiter built from RateLimit/Burst. A nil limiter
// disables rate limiting.
func WithLimiter(l *rate.Limiter) Option {
	return func(n *Notifier) { n.limiter = l }
}

// New validates cfg and returns a Notifier for it.
func New(cfg config.Config, opts ...Option) (*Notifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base, err := url.Parse(cfg.Host)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidHost, err)
	}
	endpoint := base.JoinPath("api", "v3", "projects", cfg.ProjectID, "notices")
	endpoint.RawQuery = url.Values{"key": {cfg.ProjectKey}}.Encode()

	hostname, _ := os.Hostname()
	rootDir, _ := os.Getwd()

	n := &Notifier{
		endpoint:    endpoint.String(),
		environment: cfg.Environment,
		hostname:    hostname,
		rootDir:     rootDir,
		client:      &http.Client{Timeout: cfg.Timeout.Std()},
		limiter:     rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// NotifyPlain sends a notice with a single error entry built from err.
func (n *Notifier) NotifyPlain(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	nt := n.newNotice(ctx)
	nt.Errors = []noticeError{{Type: errorType(err), Message: err.Error(), Backtrace: backtrace(nil)}}
	addDetails(&nt, err)
	return n.send(ctx, nt)
}

// NotifyStructured sends a notice with one error entry per chain link; the
// first entry carries the captured backtrace. Details and reason of the
// trace go to params and the component/action context, on top of those of
// errbit errors further down the chain.
func (n *Notifier) NotifyStructured(ctx context.Context, t *errbit.Trace) error {
	if t == nil {
		return nil
	}
	nt := n.newNotice(ctx)
	for i, link := range t.Chain() {
		ne := noticeError{Type: link.Type, Message: link.Message, Backtrace: backtrace(nil)}
		if i == 0 {
			ne.Backtrace = backtrace(t.Stack)
		}
		nt.Errors = append(nt.Errors, ne)
	}
	if t.Err != nil {
		addDetails(&nt, t.Err)
	}
	addMeta(&nt, t.Reason, t.Details)
	return n.send(ctx, nt)
}

func (n *Notifier) send(ctx context.Context, nt notice) error {
	if n.limiter != nil && !n.limiter.Allow() {
		return ErrRateLimited
	}

	body, err := json.Marshal(nt)
	if err != nil {
		return fmt.Errorf("notifier: encode notice: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notifier: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", notifierName+"/"+Version)

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("notifier: post notice: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(b))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (n *Notifier) newNotice(ctx context.Context) notice {
	nt := notice{
		Notifier: noticeNotifier{Name: notifierName, Version: Version, URL: notifierURL},
		Context: noticeContext{
			Environment:   n.environment,
			Hostname:      n.hostname,
			RootDirectory: n.rootDir,
			Severity:      "error",
			Language:      "go",
		},
		Environment: map[string]any{},
		Session:     map[string]any{},
		Params:      map[string]any{},
	}
	if req, ok := apis.RequestFrom(ctx); ok {
		nt.Context.URL = req.URL
		nt.Context.UserAgent = req.UserAgent
		nt.Context.RemoteAddr = req.RemoteAddr
		nt.Context.Route = req.Route
		nt.Context.HTTPMethod = req.Method
	}
	if id, ok := apis.ReportIDFrom(ctx); ok {
		nt.Params[reportIDParam] = id
	}
	nt.Context.Time = time.Now().UTC().Format(time.RFC3339)
	return nt
}

// errorType names the error for the tracker: "code" or "code:reason" for
// errbit errors, the Go type otherwise.
func errorType(err error) string {
	var e *errbit.Error
	if errors.As(err, &e) {
		c := code.OrInternal(e.Code)
		if e.Reason != "" {
			return fmt.Sprintf("%s:%s", c, e.Reason)
		}
		return string(c)
	}
	return fmt.Sprintf("%T", err)
}

// addDetails copies errbit details into params and the reason into the
// component/action context.
func addDetails(nt *notice, err error) {
	var e *errbit.Error
	if errors.As(err, &e) {
		addMeta(nt, e.Reason, e.Details)
	}
}

// addMeta never overwrites the report id.
func addMeta(nt *notice, r reason.Reason, details map[string]any) {
	for k, v := range details {
		if k == reportIDParam {
			continue
		}
		nt.Params[k] = v
	}
	if r != reason.Empty {
		nt.Context.Component = r.Component()
		nt.Context.Action = r.Action()
	}
}

func backtrace(stack []errbit.Frame) []noticeFrame {
	out := make([]noticeFrame, len(stack))
	for i, f := range stack {
		out[i] = noticeFrame{File: f.File, Line: f.Line, Function: f.Function}
	}
	return out
}
