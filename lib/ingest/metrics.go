// Copyright 2020 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingest

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	runSucceeded  = "success"
	runFailedLoad = "load_error"
	runFailedSave = "save_error"
)

// Metrics holds the run counters exported by an Ingestor.
type Metrics struct {
	runs         *prometheus.CounterVec
	records      prometheus.Counter
	saveDuration prometheus.Histogram
	lastSuccess  prometheus.Gauge
}

// NewMetrics creates the ingestion metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chess_ingest_runs_total",
			Help: "Ingestion runs by outcome.",
		}, []string{"outcome"}),
		records: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chess_ingest_records_total",
			Help: "Records saved to the destination.",
		}),
		saveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "chess_ingest_save_duration_seconds",
			Help:    "Time spent in Destination.Save.",
			Buckets: prometheus.DefBuckets,
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chess_ingest_last_success_timestamp_seconds",
			Help: "Extraction time of the last successful run.",
		}),
	}
	for _, c := range []prometheus.Collector{m.runs, m.records, m.saveDuration, m.lastSuccess} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeRun(outcome string, records int, saveTime time.Duration, extractedAt time.Time) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
	if outcome == runFailedLoad {
		return
	}
	m.saveDuration.Observe(saveTime.Seconds())
	if outcome == runSucceeded {
		m.records.Add(float64(records))
		m.lastSuccess.Set(float64(extractedAt.Unix()))
	}
}
