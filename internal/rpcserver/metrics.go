package rpcserver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics instruments the worker loop at the same points it already
// touches: dispatch start, dispatch end, disconnect. Recording never
// changes control flow.
var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chrpc_requests_total",
			Help: "RPC requests dispatched, by endpoint name and response status.",
		},
		[]string{"endpoint", "status"})

	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chrpc_errors_total",
			Help: "Non-success RPC responses, by status.",
		},
		[]string{"status"})

	activeChannels = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chrpc_active_channels",
			Help: "Channels currently admitted to the server.",
		})

	dispatchLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chrpc_dispatch_latency_seconds",
			Help:    "Time spent inside an endpoint handler.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"})

	disconnectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chrpc_disconnects_total",
			Help: "Channels torn down, by reason.",
		},
		[]string{"reason"})
)
