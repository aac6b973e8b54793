package dialog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	promptRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "genie_dialog_prompt_retries_total",
		Help: "Total number of rejected prompt inputs by dialog and prompt",
	}, []string{"dialog", "prompt"})

	startOvers = promauto.NewCounter(prometheus.CounterOpts{
		Name: "genie_dialog_start_overs_total",
		Help: "Total number of dialog frames dropped because they no longer matched their definition",
	})
)
