package metrics

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "turfbook_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "turfbook_http_request_duration_seconds",
			Help:    "Histogram of response durations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	// PushDeliveries counts push attempts by transport and result (sent, gone, failed).
	PushDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "turfbook_push_deliveries_total",
			Help: "Push delivery attempts by transport and result",
		},
		[]string{"kind", "result"},
	)

	PushSubscriptionsPruned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "turfbook_push_subscriptions_pruned_total",
			Help: "Push subscriptions removed after a terminal delivery failure",
		},
	)

	BookingsSwept = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "turfbook_bookings_swept_total",
			Help: "Expired bookings deleted by the sweeper",
		},
	)

	SweepDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "turfbook_booking_sweep_duration_seconds",
			Help:    "Duration of booking expiry sweeps",
			Buckets: prometheus.DefBuckets,
		},
	)

	RealtimeSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "turfbook_realtime_subscribers",
			Help: "Open realtime change feed subscriptions",
		},
	)

	RealtimeDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "turfbook_realtime_events_dropped_total",
			Help: "Change events dropped because a subscriber was too slow",
		},
	)
)

var once sync.Once

// Init registers all collectors with the default registry. Safe to call more than once.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			HTTPRequests,
			RequestDuration,
			PushDeliveries,
			PushSubscriptionsPruned,
			BookingsSwept,
			SweepDuration,
			RealtimeSubscribers,
			RealtimeDropped,
		)
	})
}

// Handler exposes the default registry for scraping.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
