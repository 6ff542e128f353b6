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

package sink

import (
	"context"
	"errors"

	"dirpx.dev/errbit/apis"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts notification failures by classified kind and request
// outcome.
type Metrics struct {
	failures *prometheus.CounterVec
}

// NewMetrics registers errbit_notification_failures_total on reg. A nil reg
// means prometheus.DefaultRegisterer. Registering twice on the same registry
// reuses the existing collector.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "errbit",
		Name:      "notification_failures_total",
		Help:      "Errbit notifications that could not be delivered.",
	}, []string{"kind", "outcome"})

	if err := reg.Register(vec); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, err
		}
		vec = existing
	}
	return &Metrics{failures: vec}, nil
}

// Report implements apis.Sink.
func (m *Metrics) Report(_ context.Context, f apis.Failure) {
	kind := "unknown"
	if f.Report != nil {
		kind = f.Report.Kind().String()
	}
	m.failures.WithLabelValues(kind, f.Outcome.String()).Inc()
}

// Collector exposes the underlying counter, mostly for tests.
func (m *Metrics) Collector() *prometheus.CounterVec { return m.failures }
