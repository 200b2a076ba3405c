package web

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	callsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sara_calls_started_total",
		Help: "Number of voice calls started.",
	})

	callsEnded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sara_calls_ended_total",
		Help: "Number of voice calls that reached the ended state.",
	})

	transcriptLines = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sara_transcript_lines_total",
		Help: "Transcript lines appended, by speaker.",
	}, []string{"speaker"})

	callNotices = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sara_call_notices_total",
		Help: "User-facing failure notices emitted during calls.",
	})
)
