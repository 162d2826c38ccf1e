package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScanSessionsStartedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scan_sessions_started_total",
		Help: "Total number of scan workflow sessions started",
	}, []string{"kind"})

	ScanDecodesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scan_decodes_total",
		Help: "Total number of decoded scan payloads consumed by workflows",
	}, []string{"kind"})

	ScanFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scan_failures_total",
		Help: "Total number of scan sessions ending in a terminal failure",
	}, []string{"reason"})

	ScanCommitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scan_commits_total",
		Help: "Total number of committed scan workflows",
	}, []string{"kind"})

	ScanCommitsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scan_commits_failed_total",
		Help: "Total number of failed commit attempts",
	}, []string{"reason"})

	ScanCommitLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scan_commit_latency_seconds",
		Help:    "Latency of scan workflow commits",
		Buckets: prometheus.DefBuckets,
	})

	ItemsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "items_created_total",
		Help: "Total number of items added to the catalog",
	})

	StockOutUnitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_out_units_total",
		Help: "Total units removed from stock via stock-out commits",
	})

	AlertsRaisedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_alerts_raised_total",
		Help: "Total number of stock alerts raised by commits",
	}, []string{"severity"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
