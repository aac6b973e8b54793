package reputation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var lookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "genie_reputation_lookups_total",
	Help: "Total number of URL reputation lookups by outcome",
}, []string{"outcome"})
