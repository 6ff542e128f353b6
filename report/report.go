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

// Package report holds the process-wide Reporter shared by every request
// the middleware intercepts.
//
// A Reporter is built once, at setup, from a config.Config (or from any
// apis.Notifier) and is immutable afterwards. Each call to Report classifies
// one failure, sends at most one notification and routes a failed
// notification to the configured apis.Sink. Report never returns an error and
// never panics: a reporting problem cannot reach the request path.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"dirpx.dev/errbit"
	"dirpx.dev/errbit/apis"
	"dirpx.dev/errbit/config"
	"dirpx.dev/errbit/notifier"
	"dirpx.dev/errbit/sink"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrDropped is passed to the Sink when a detached report finds
	// MaxInFlight notifications already running.
	ErrDropped = errors.New("report: dropped, too many notifications in flight")

	// ErrClosed is passed to the Sink for detached reports made after Close.
	ErrClosed = errors.New("report: reporter closed")
)

// Reporter classifies failures and dispatches them to a Notifier.
// It is safe for concurrent use and holds no per-request state.
type Reporter struct {
	notifier    apis.Notifier
	sink        apis.Sink
	logger      *slog.Logger
	dispatch    config.Dispatch
	timeout     time.Duration
	maxInFlight int

	group *errgroup.Group

	// mu orders detached TryGo calls before the Wait in Close.
	mu     sync.RWMutex
	closed bool
}

// Option customizes a Reporter at construction.
type Option func(*Reporter)

// WithSink sets where notification failures go. Defaults to sink.Log over
// the reporter's logger.
func WithSink(s apis.Sink) Option {
	return func(r *Reporter) { r.sink = s }
}

// WithLogger sets the logger for debug output and for the default sink.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reporter) { r.logger = l }
}

// WithDispatch selects await or detached dispatch.
func WithDispatch(d config.Dispatch) Option {
	return func(r *Reporter) { r.dispatch = d }
}

// WithTimeout bounds a single notification.
func WithTimeout(d time.Duration) Option {
	return func(r *Reporter) { r.timeout = d }
}

// WithMaxInFlight bounds concurrent detached notifications.
func WithMaxInFlight(n int) Option {
	return func(r *Reporter) { r.maxInFlight = n }
}

// New validates cfg, connects an Errbit notifier and returns the Reporter.
// Configuration errors are returned here and never surface per request.
func New(cfg config.Config, opts ...Option) (*Reporter, error) {
	n, err := notifier.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	base := []Option{
		WithDispatch(cfg.Dispatch),
		WithTimeout(cfg.Timeout.Std()),
		WithMaxInFlight(cfg.MaxInFlight),
	}
	return NewWithNotifier(n, append(base, opts...)...), nil
}

// NewWithNotifier returns a Reporter around an existing Notifier.
func NewWithNotifier(n apis.Notifier, opts ...Option) *Reporter {
	r := &Reporter{
		notifier:    n,
		dispatch:    config.DispatchAwait,
		timeout:     config.DefaultTimeout,
		maxInFlight: config.DefaultMaxInFlight,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.sink == nil {
		r.sink = sink.Log(r.logger)
	}
	if r.timeout <= 0 {
		r.timeout = config.DefaultTimeout
	}
	if r.maxInFlight <= 0 {
		r.maxInFlight = config.DefaultMaxInFlight
	}
	r.group = new(errgroup.Group)
	r.group.SetLimit(r.maxInFlight)
	return r
}

// Default builds a Reporter from the ERRBIT_* environment.
func Default() (*Reporter, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	return New(cfg)
}

// MustDefault is Default for program startup: an invalid environment is
// fatal and panics.
func MustDefault() *Reporter {
	r, err := Default()
	if err != nil {
		panic(fmt.Sprintf("errbit: the errbit endpoint configuration is not valid: %v", err))
	}
	return r
}

// Dispatch returns the dispatch mode.
func (r *Reporter) Dispatch() config.Dispatch { return r.dispatch }

// Report sends a notification for err if outcome is a failing one.
//
// It returns the report id, or "" when nothing was reported (nil err or
// OutcomeSuccess). In await mode the notification has been attempted when
// Report returns; in detached mode it runs in the background.
//
// The notification uses a context detached from ctx's cancellation but
// keeping its values, bounded by the reporter timeout.
func (r *Reporter) Report(ctx context.Context, outcome apis.Outcome, err error) string {
	if outcome == apis.OutcomeSuccess {
		return ""
	}
	c := errbit.Classify(err)
	if c == nil {
		return ""
	}

	id := uuid.NewString()
	ctx = apis.WithReportID(context.WithoutCancel(ctx), id)

	if r.dispatch != config.DispatchDetached {
		r.notify(ctx, id, outcome, c)
		return id
	}

	if err := r.detach(ctx, id, outcome, c); err != nil {
		r.fail(ctx, id, outcome, c, err)
	}
	return id
}

// detach starts the notification on the group. It returns ErrClosed after
// Close and ErrDropped when the group is full.
func (r *Reporter) detach(ctx context.Context, id string, outcome apis.Outcome, c errbit.Classified) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrClosed
	}
	started := r.group.TryGo(func() error {
		r.notify(ctx, id, outcome, c)
		return nil
	})
	if !started {
		return ErrDropped
	}
	return nil
}

// Close stops accepting detached reports and waits for the running ones,
// or for ctx. Every detached Report either started before Close, and is
// waited for, or fails with ErrClosed. Close may be called more than once.
func (r *Reporter) Close(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		_ = r.group.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Reporter) notify(ctx context.Context, id string, outcome apis.Outcome, c errbit.Classified) {
	nctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.call(nctx, c); err != nil {
		r.fail(ctx, id, outcome, c, err)
		return
	}
	r.logger.DebugContext(ctx, "errbit: report sent",
		slog.String("report_id", id),
		slog.String("outcome", outcome.String()),
		slog.String("kind", c.Kind().String()),
	)
}

// call invokes the notifier path matching the variant. A panicking notifier
// is turned into an error.
func (r *Reporter) call(ctx context.Context, c errbit.Classified) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("report: notifier panicked: %v", v)
		}
	}()
	switch c := c.(type) {
	case errbit.Structured:
		return r.notifier.NotifyStructured(ctx, c.Trace)
	default:
		return r.notifier.NotifyPlain(ctx, c.Unwrap())
	}
}

func (r *Reporter) fail(ctx context.Context, id string, outcome apis.Outcome, c errbit.Classified, err error) {
	defer func() {
		if v := recover(); v != nil {
			r.logger.ErrorContext(ctx, "errbit: sink panicked", slog.String("report_id", id), slog.Any("panic", v))
		}
	}()
	r.sink.Report(ctx, apis.Failure{ID: id, Outcome: outcome, Report: c, Err: err})
}
