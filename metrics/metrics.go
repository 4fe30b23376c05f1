// SPDX-License-Identifier: GPL-2.0-or-later

// Package metrics holds the process wide collectors of map loading and
// collision queries.
package metrics

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

var (
	loadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "q2map_load_duration_seconds",
		Help:    "Time spent parsing and validating a map",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
	})

	loadErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "q2map_load_errors_total",
		Help: "Maps that failed to load",
	}, []string{"kind"}) // structural, referential, decompression, io

	traces = promauto.NewCounter(prometheus.CounterOpts{
		Name: "q2map_traces_total",
		Help: "Box traces run against loaded maps",
	})

	pointContents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "q2map_point_contents_total",
		Help: "Point contents queries run against loaded maps",
	})
)

func ObserveLoad(d time.Duration) {
	loadDuration.Observe(d.Seconds())
}

func LoadFailed(kind string) {
	loadErrors.WithLabelValues(kind).Inc()
}

func TraceDone() {
	traces.Inc()
}

func PointContentsDone() {
	pointContents.Inc()
}

// WriteText writes every metric of the default registry in the text
// exposition format.
func WriteText(w io.Writer) error {
	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range mfs {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
