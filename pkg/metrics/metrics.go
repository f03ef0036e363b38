package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Define global variables for metrics.
// We use 'promauto' which automatically registers metrics without complex initialization.

var (
	// 1. HTTP Requests Total (Counter)
	// Counts how many requests arrive, labeled by method, path, and status code.
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stradadb_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"}, // Labels
	)

	// 2. HTTP Request Duration (Histogram)
	// Measures server response time, from snapped lookups to full searches.
	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "stradadb_http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
			// Custom buckets covering nearest lookups (sub-ms) up to long
			// cross-network route searches
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// 3. Routes Served (Counter)
	RoutesServed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stradadb_routes_served_total",
			Help: "Total number of successful viaroute answers",
		},
	)

	// 4. No-Route Outcomes (Counter)
	// A spike here usually means a broken dataset, not broken queries.
	NoRouteTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stradadb_no_route_total",
			Help: "Total number of viaroute queries with no connecting path",
		},
	)

	// 5. Network Size (Gauges)
	// Set once at startup from the loaded dataset.
	NetworkNodes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stradadb_network_nodes",
			Help: "Number of nodes in the loaded road network",
		},
	)
	NetworkEdges = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stradadb_network_edges",
			Help: "Number of directed edges in the loaded road network",
		},
	)
)
