package service

import (
	"time"

	"github.com/maheshrc27/autopost/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess   = "success"
	outcomeSimulated = "simulated"
	outcomeFailed    = "failed"
	outcomeTimeout   = "timeout"
)

type PublishMetrics struct {
	Attempts *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

func NewPublishMetrics(reg prometheus.Registerer) *PublishMetrics {
	factory := promauto.With(reg)
	return &PublishMetrics{
		Attempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "autopost",
				Name:      "publish_attempts_total",
				Help:      "Publish attempts per platform and outcome",
			},
			[]string{"platform", "outcome"}, // success, simulated, failed, timeout
		),
		Duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "autopost",
				Name:      "publish_duration_seconds",
				Help:      "Duration of one platform publish in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
			},
			[]string{"platform"},
		),
	}
}

func (m *PublishMetrics) observe(result models.PublishResult, elapsed time.Duration) {
	if m == nil {
		return
	}

	outcome := outcomeFailed
	switch {
	case result.Simulated:
		outcome = outcomeSimulated
	case result.Success:
		outcome = outcomeSuccess
	case result.Error == errTimeout:
		outcome = outcomeTimeout
	}

	m.Attempts.WithLabelValues(string(result.Platform), outcome).Inc()
	m.Duration.WithLabelValues(string(result.Platform)).Observe(elapsed.Seconds())
}
