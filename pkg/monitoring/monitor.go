package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Assessment lifecycle events counted by AssessmentEvents.
const (
	EventStarted          = "started"
	EventResumed          = "resumed"
	EventAlreadyCompleted = "already_completed"
	EventAnswerRecorded   = "answer_recorded"
	EventCompleted        = "completed"
	EventExpired          = "expired"
	EventReviewed         = "reviewed"
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

	AssessmentEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_events_total",
			Help: "Assessment attempt lifecycle events",
		},
		[]string{"event"},
	)

	AssessmentScore = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assessment_score_ratio",
			Help:    "Score divided by max score for completed attempts",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
		[]string{"template"},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(AssessmentEvents)
		prometheus.MustRegister(AssessmentScore)
	})
}

func RecordEvent(event string) {
	AssessmentEvents.WithLabelValues(event).Inc()
}

func ObserveScore(templateID uint, score, maxScore int) {
	if maxScore <= 0 {
		return
	}
	AssessmentScore.WithLabelValues(strconv.FormatUint(uint64(templateID), 10)).
		Observe(float64(score) / float64(maxScore))
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
