package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	refreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deckd_refresh_total",
		Help: "The total number of key refreshes",
	}, []string{"action"})

	fetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deckd_fetch_failures_total",
		Help: "The total number of failed status fetches",
	}, []string{"platform"})

	perf = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "deckd_perf",
		Help: "Performance of functions",
	}, []string{"function"})
)
