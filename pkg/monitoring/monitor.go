package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// 面试会话状态迁移次数
	SessionTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_session_transitions_total",
			Help: "Interview session transitions by kind",
		},
		[]string{"transition"},
	)

	CandidateSyncs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_candidate_syncs_total",
			Help: "Candidate directory sync effects by kind and result",
		},
		[]string{"kind", "result"},
	)

	GatewayFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_gateway_fallbacks_total",
			Help: "Gateway calls answered by the local fallback",
		},
		[]string{"endpoint"},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(SessionTransitions)
		prometheus.MustRegister(CandidateSyncs)
		prometheus.MustRegister(GatewayFallbacks)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
