package election

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	authAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ballotd_auth_attempts_total",
		Help: "Authentication attempts by outcome.",
	}, []string{"result"})

	ballotsCast = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ballotd_ballots_cast_total",
		Help: "Vote casting attempts by outcome.",
	}, []string{"result"})
)
