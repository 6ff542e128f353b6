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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := Default()
	cfg.Host = "https://errbit.example.com"
	cfg.ProjectID = "1"
	cfg.ProjectKey = "secret"
	return cfg
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DispatchAwait, cfg.Dispatch)
	assert.Equal(t, DefaultTimeout, cfg.Timeout.Std())
	assert.Equal(t, DefaultEnvironment, cfg.Environment)
	assert.Error(t, cfg.Validate(), "default config has no endpoint and must not validate")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid", func(*Config) {}, nil},
		{"empty host", func(c *Config) { c.Host = "" }, ErrInvalidHost},
		{"bad scheme", func(c *Config) { c.Host = "ftp://errbit.example.com" }, ErrInvalidHost},
		{"no host", func(c *Config) { c.Host = "https://" }, ErrInvalidHost},
		{"unparsable host", func(c *Config) { c.Host = "http://[::1" }, ErrInvalidHost},
		{"missing project id", func(c *Config) { c.ProjectID = " " }, ErrMissingProjectID},
		{"missing project key", func(c *Config) { c.ProjectKey = "" }, ErrMissingProjectKey},
		{"bad dispatch", func(c *Config) { c.Dispatch = "later" }, ErrInvalidDispatch},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, ErrInvalidLimit},
		{"zero burst", func(c *Config) { c.Burst = 0 }, ErrInvalidLimit},
		{"zero in flight", func(c *Config) { c.MaxInFlight = 0 }, ErrInvalidLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidate_JoinsAllProblems(t *testing.T) {
	err := Default().Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidHost)
	assert.ErrorIs(t, err, ErrMissingProjectID)
	assert.ErrorIs(t, err, ErrMissingProjectKey)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("ERRBIT_HOST", "https://errbit.internal")
	t.Setenv("ERRBIT_PROJECT_ID", "42")
	t.Setenv("ERRBIT_PROJECT_KEY", "k")
	t.Setenv("ERRBIT_ENVIRONMENT", "staging")
	t.Setenv("ERRBIT_DISPATCH", " Detached ")
	t.Setenv("ERRBIT_TIMEOUT", "750ms")
	t.Setenv("ERRBIT_RATE_LIMIT", "2.5")
	t.Setenv("ERRBIT_BURST", "3")
	t.Setenv("ERRBIT_MAX_IN_FLIGHT", "8")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://errbit.internal", cfg.Host)
	assert.Equal(t, "42", cfg.ProjectID)
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, DispatchDetached, cfg.Dispatch)
	assert.Equal(t, 750*time.Millisecond, cfg.Timeout.Std())
	assert.Equal(t, 2.5, cfg.RateLimit)
	assert.Equal(t, 3, cfg.Burst)
	assert.Equal(t, 8, cfg.MaxInFlight)
}

func TestFromEnv_BadNumber(t *testing.T) {
	t.Setenv("ERRBIT_BURST", "many")
	_, err := FromEnv()
	require.ErrorIs(t, err, ErrInvalidEnvironment)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errbit.toml")
	data := `
host = "https://errbit.example.com"
project_id = "7"
project_key = "abc"
environment = "production"
dispatch = "detached"
timeout = "2s"
max_in_flight = 4
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, DispatchDetached, cfg.Dispatch)
	assert.Equal(t, 2*time.Second, cfg.Timeout.Std())
	assert.Equal(t, 4, cfg.MaxInFlight)
	assert.Equal(t, float64(DefaultRateLimit), cfg.RateLimit, "unset keys keep defaults")
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte(`host = "https://errbit.example.com"`), 0o600))
	_, err = Load(path)
	require.ErrorIs(t, err, ErrMissingProjectID)
}
