// Package metrics wraps the receiver core's prometheus counters and
// histograms, grounded on the promauto.NewGaugeVec/NewCounterVec idiom
// in the teacher's root-level prometheus.go (PrometheusMetrics /
// NewPrometheusMetrics), generalized from that file's one hardcoded
// global registerer into a constructor that registers against a
// caller-supplied *prometheus.Registry, since this package is a
// library component embedded by other programs rather than the
// teacher's single long-running server binary.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors exported by one decode pipeline.
type Metrics struct {
	CandidatesFound   prometheus.Counter
	DecodesAttempted  prometheus.Counter
	DecodesSucceeded  prometheus.Counter
	DecodesCRCFailed  prometheus.Counter
	BPIterations      prometheus.Histogram
	WaterfallBuildSec prometheus.Histogram
	DecodeBatchSec    prometheus.Histogram
}

// New registers and returns a Metrics bound to reg. Passing a fresh
// *prometheus.Registry per pipeline instance avoids the teacher's
// reliance on the global default registerer.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CandidatesFound: factory.NewCounter(prometheus.CounterOpts{
			Name: "ft8core_candidates_found_total",
			Help: "Coarse sync candidates returned by sync8.Search.",
		}),
		DecodesAttempted: factory.NewCounter(prometheus.CounterOpts{
			Name: "ft8core_decodes_attempted_total",
			Help: "Candidates passed to decode8.Candidate.",
		}),
		DecodesSucceeded: factory.NewCounter(prometheus.CounterOpts{
			Name: "ft8core_decodes_succeeded_total",
			Help: "Decodes that produced a zero-error, CRC-valid codeword.",
		}),
		DecodesCRCFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "ft8core_decodes_crc_failed_total",
			Help: "Decodes that reached zero parity errors but failed the CRC-14 gate.",
		}),
		BPIterations: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ft8core_bp_iterations",
			Help:    "Belief propagation iterations used per successful decode.",
			Buckets: prometheus.LinearBuckets(0, 5, 8),
		}),
		WaterfallBuildSec: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ft8core_waterfall_build_seconds",
			Help:    "Time spent building one waterfall.",
			Buckets: prometheus.DefBuckets,
		}),
		DecodeBatchSec: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ft8core_decode_batch_seconds",
			Help:    "Time spent decoding all candidates of one waterfall.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
