package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var latencyBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

// Metrics holds every Prometheus collector of the service. Each instance owns
// its registry so tests can build as many as they need. All methods are safe
// on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	VotersRegistered prometheus.Counter
	ElectionsCreated prometheus.Counter
	CandidatesAdded  prometheus.Counter
	VotesCast        prometheus.Counter
	Rejections       *prometheus.CounterVec
	PersistFailures  prometheus.Counter
	PersistDuration  prometheus.Histogram
	DispatchDuration *prometheus.HistogramVec
	AsyncDropped     *prometheus.CounterVec
	SSESubscribers   prometheus.Gauge
}

// New creates a registry with process collectors and all ledger metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		VotersRegistered: f.NewCounter(prometheus.CounterOpts{
			Name: "voteledger_voters_registered_total",
			Help: "Total number of voters registered",
		}),
		ElectionsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "voteledger_elections_created_total",
			Help: "Total number of elections created",
		}),
		CandidatesAdded: f.NewCounter(prometheus.CounterOpts{
			Name: "voteledger_candidates_added_total",
			Help: "Total number of candidates added",
		}),
		VotesCast: f.NewCounter(prometheus.CounterOpts{
			Name: "voteledger_votes_cast_total",
			Help: "Total number of votes appended to the ledger",
		}),
		Rejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "voteledger_rejections_total",
			Help: "Rejected ledger operations by action and error code",
		}, []string{"action", "code"}),
		PersistFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "voteledger_persist_failures_total",
			Help: "Snapshot flushes that failed",
		}),
		PersistDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "voteledger_persist_duration_seconds",
			Help:    "Duration of snapshot flushes",
			Buckets: latencyBuckets,
		}),
		DispatchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "voteledger_dispatch_duration_seconds",
			Help:    "Duration of dispatched actions",
			Buckets: latencyBuckets,
		}, []string{"action"}),
		AsyncDropped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "voteledger_async_dropped_total",
			Help: "Events dropped because an async queue was full",
		}, []string{"queue"}),
		SSESubscribers: f.NewGauge(prometheus.GaugeOpts{
			Name: "voteledger_sse_subscribers",
			Help: "Currently connected event stream subscribers",
		}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) IncrementVotersRegistered() {
	if m != nil {
		m.VotersRegistered.Inc()
	}
}

func (m *Metrics) IncrementElectionsCreated() {
	if m != nil {
		m.ElectionsCreated.Inc()
	}
}

func (m *Metrics) IncrementCandidatesAdded() {
	if m != nil {
		m.CandidatesAdded.Inc()
	}
}

func (m *Metrics) IncrementVotesCast() {
	if m != nil {
		m.VotesCast.Inc()
	}
}

// IncrementRejection counts a failed operation.
func (m *Metrics) IncrementRejection(action, code string) {
	if m != nil {
		m.Rejections.WithLabelValues(action, code).Inc()
	}
}

// ObservePersist records a flush. Call with time.Now() at the start of the flush.
func (m *Metrics) ObservePersist(start time.Time, err error) {
	if m == nil {
		return
	}
	m.PersistDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		m.PersistFailures.Inc()
	}
}

// ObserveDispatch records the duration of one dispatched action.
func (m *Metrics) ObserveDispatch(action string, start time.Time) {
	if m != nil {
		m.DispatchDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())
	}
}

// IncrementDropped counts an event dropped by a full queue.
func (m *Metrics) IncrementDropped(queue string) {
	if m != nil {
		m.AsyncDropped.WithLabelValues(queue).Inc()
	}
}

// AddSSESubscribers moves the subscriber gauge by delta.
func (m *Metrics) AddSSESubscribers(delta float64) {
	if m != nil {
		m.SSESubscribers.Add(delta)
	}
}
