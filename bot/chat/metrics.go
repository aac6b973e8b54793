package chat

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	turnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "genie_turns_total",
		Help: "Total number of processed turns by channel and resulting dialog status",
	}, []string{"channel", "status"})

	turnDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "genie_turn_duration_seconds",
		Help:    "Duration of turn processing by channel",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"channel"})
)
