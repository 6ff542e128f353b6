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

// Package config holds the settings for the Errbit notifier and for how the
// reporter dispatches notifications.
//
// A Config is built from defaults, an optional TOML file and ERRBIT_*
// environment overrides, and is validated before any notifier is created,
// so a bad endpoint or missing credentials fail at startup, never per request.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Dispatch selects how a notification relates to the request that caused it.
type Dispatch string

const (
	// DispatchAwait sends the notification before the middleware returns.
	// Notification latency is on the request's critical path, but a report is
	// always attempted before the response completes.
	DispatchAwait Dispatch = "await"

	// DispatchDetached sends the notification from a bounded background
	// goroutine. Reports still in flight at process exit may be lost unless
	// the reporter is closed first.
	DispatchDetached Dispatch = "detached"
)

// Defaults applied by Default.
const (
	DefaultEnvironment = "development"
	DefaultTimeout     = 5 * time.Second
	DefaultRateLimit   = 10
	DefaultBurst       = 20
	DefaultMaxInFlight = 64
)

var (
	ErrInvalidHost        = errors.New("config: invalid errbit host")
	ErrMissingProjectID   = errors.New("config: missing errbit project id")
	ErrMissingProjectKey  = errors.New("config: missing errbit project key")
	ErrInvalidDispatch    = errors.New("config: invalid dispatch mode")
	ErrInvalidLimit       = errors.New("config: invalid limit")
	ErrInvalidEnvironment = errors.New("config: invalid environment value")
)

// Config is the notifier and dispatch configuration.
type Config struct {
	// Host is the Errbit base URL, e.g. "https://errbit.example.com".
	Host string `toml:"host"`

	// ProjectID and ProjectKey identify the Errbit app.
	ProjectID  string `toml:"project_id"`
	ProjectKey string `toml:"project_key"`

	// Environment tags every notice, e.g. "production".
	Environment string `toml:"environment"`

	// Dispatch is "await" or "detached".
	Dispatch Dispatch `toml:"dispatch"`

	// Timeout bounds a single notification, including the HTTP round trip.
	Timeout Duration `toml:"timeout"`

	// RateLimit is the number of notices per second the notifier sends;
	// Burst is the bucket size. Notices over the limit are dropped.
	RateLimit float64 `toml:"rate_limit"`
	Burst     int     `toml:"burst"`

	// MaxInFlight bounds concurrent detached notifications.
	MaxInFlight int `toml:"max_in_flight"`
}

// Default returns a Config with every optional field set. Host and the
// project credentials are left empty.
func Default() Config {
	return Config{
		Environment: DefaultEnvironment,
		Dispatch:    DispatchAwait,
		Timeout:     Duration(DefaultTimeout),
		RateLimit:   DefaultRateLimit,
		Burst:       DefaultBurst,
		MaxInFlight: DefaultMaxInFlight,
	}
}

// FromEnv returns Default overridden by ERRBIT_* environment variables.
// The result is not validated.
func FromEnv() (Config, error) {
	cfg := Default()
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads a TOML file on top of Default, applies environment overrides
// and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every problem with c, joined.
func (c Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.Host)
	switch {
	case c.Host == "":
		errs = append(errs, fmt.Errorf("%w: empty", ErrInvalidHost))
	case err != nil:
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidHost, err))
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidHost, u.Scheme))
	case u.Host == "":
		errs = append(errs, fmt.Errorf("%w: no host in %q", ErrInvalidHost, c.Host))
	}

	if strings.TrimSpace(c.ProjectID) == "" {
		errs = append(errs, ErrMissingProjectID)
	}
	if strings.TrimSpace(c.ProjectKey) == "" {
		errs = append(errs, ErrMissingProjectKey)
	}

	switch c.Dispatch {
	case DispatchAwait, DispatchDetached:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidDispatch, c.Dispatch))
	}

	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: timeout must be positive", ErrInvalidLimit))
	}
	if c.RateLimit <= 0 || c.Burst <= 0 {
		errs = append(errs, fmt.Errorf("%w: rate_limit and burst must be positive", ErrInvalidLimit))
	}
	if c.MaxInFlight <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_in_flight must be positive", ErrInvalidLimit))
	}

	return errors.Join(errs...)
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("ERRBIT_HOST", &cfg.Host)
	str("ERRBIT_PROJECT_ID", &cfg.ProjectID)
	str("ERRBIT_PROJECT_KEY", &cfg.ProjectKey)
	str("ERRBIT_ENVIRONMENT", &cfg.Environment)

	if v, ok := lookup("ERRBIT_DISPATCH"); ok && v != "" {
		cfg.Dispatch = Dispatch(strings.ToLower(strings.TrimSpace(v)))
	}
	if v, ok := lookup("ERRBIT_TIMEOUT"); ok && v != "" {
		if err := cfg.Timeout.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("%w: ERRBIT_TIMEOUT: %v", ErrInvalidEnvironment, err)
		}
	}
	if v, ok := lookup("ERRBIT_RATE_LIMIT"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: ERRBIT_RATE_LIMIT: %v", ErrInvalidEnvironment, err)
		}
		cfg.RateLimit = f
	}
	for key, dst := range map[string]*int{
		"ERRBIT_BURST":         &cfg.Burst,
		"ERRBIT_MAX_IN_FLIGHT": &cfg.MaxInFlight,
	} {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalidEnvironment, key, err)
			}
			*dst = n
		}
	}
	return nil
}
