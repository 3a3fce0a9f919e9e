package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storynest",
		Name:      "http_requests_total",
		Help:      "HTTP requests by service, route and status.",
	}, []string{"service", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storynest",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by service and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"service", "route"})

	RealtimePublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storynest",
		Name:      "realtime_changes_published_total",
		Help:      "Row changes published to the realtime broker by table.",
	}, []string{"table"})

	RealtimeDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storynest",
		Name:      "realtime_changes_delivered_total",
		Help:      "Row changes delivered to subscribers by table.",
	}, []string{"table"})

	RealtimeSubscriptions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "storynest",
		Name:      "realtime_active_subscriptions",
		Help:      "Currently open realtime subscriptions.",
	})

	QueueTasks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storynest",
		Name:      "queue_tasks_total",
		Help:      "Notification tasks by type and outcome.",
	}, []string{"type", "outcome"})
)

// Middleware records request counts and latency for service.
func Middleware(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(service, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(service, route).Observe(time.Since(start).Seconds())
	}
}

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
