package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Set holds the client-side counters for backend traffic. A nil *Set is
// valid and records nothing.
type Set struct {
	Requests  *prometheus.CounterVec
	Latency   *prometheus.HistogramVec
	Answers   *prometheus.CounterVec
	PollTicks prometheus.Counter
	Skipped   prometheus.Counter
}

// New creates the metric set and registers it with reg when reg is non-nil.
func New(reg prometheus.Registerer) *Set {
	s := &Set{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "coderush",
				Name:      "backend_requests_total",
				Help:      "Total number of backend requests by operation and outcome",
			},
			[]string{"op", "status"},
		),
		Latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "coderush",
				Name:      "backend_request_duration_seconds",
				Help:      "Duration of backend requests",
				Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"op"},
		),
		Answers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "coderush",
				Name:      "answers_total",
				Help:      "Submitted answers by server verdict",
			},
			[]string{"verdict"},
		),
		PollTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coderush",
			Name:      "generation_poll_ticks_total",
			Help:      "Polling timer fires while waiting for a generated problem set",
		}),
		Skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coderush",
			Name:      "malformed_problems_total",
			Help:      "Problem set elements dropped by the normalizer",
		}),
	}
	if reg != nil {
		reg.MustRegister(s.Requests, s.Latency, s.Answers, s.PollTicks, s.Skipped)
	}
	return s
}

// ObserveRequest records one backend request.
func (s *Set) ObserveRequest(op, status string, d time.Duration) {
	if s == nil {
		return
	}
	s.Requests.WithLabelValues(op, status).Inc()
	s.Latency.WithLabelValues(op).Observe(d.Seconds())
}

// ObserveAnswer records a server verdict.
func (s *Set) ObserveAnswer(correct bool) {
	if s == nil {
		return
	}
	verdict := "incorrect"
	if correct {
		verdict = "correct"
	}
	s.Answers.WithLabelValues(verdict).Inc()
}

// ObservePollTick records one polling timer fire.
func (s *Set) ObservePollTick() {
	if s == nil {
		return
	}
	s.PollTicks.Inc()
}

// ObserveSkipped records dropped problem set elements.
func (s *Set) ObserveSkipped(n int) {
	if s == nil || n <= 0 {
		return
	}
	s.Skipped.Add(float64(n))
}
