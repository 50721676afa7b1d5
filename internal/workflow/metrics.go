package workflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fastgraph_runs_started_total",
		Help: "Total runs accepted for execution",
	})

	runsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fastgraph_runs_finished_total",
		Help: "Total runs reaching a terminal status",
	}, []string{"status"})
)
