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
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// ScormLaunches 按是否续学统计 launch
	ScormLaunches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scorm_launches_total",
			Help: "Total number of SCORM launches",
		},
		[]string{"kind"},
	)

	// ScormCommits 按内容版本与结果统计 CMI 提交
	ScormCommits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scorm_commits_total",
			Help: "Total number of SCORM runtime commits",
		},
		[]string{"version", "result"},
	)

	ScormCompletions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scorm_attempts_completed_total",
			Help: "Attempts that transitioned into the completed state",
		},
		[]string{"source"},
	)
)

const (
	LaunchNew    = "new"
	LaunchResume = "resume"

	ResultSaved     = "saved"
	ResultNotFound  = "not_found"
	ResultMalformed = "malformed"
	ResultError     = "error"

	SourceCommit = "commit"
	SourceFinish = "finish"
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(ScormLaunches)
		prometheus.MustRegister(ScormCommits)
		prometheus.MustRegister(ScormCompletions)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
