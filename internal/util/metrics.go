package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CartMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_mutations_total",
		Help: "Total number of cart mutations",
	}, []string{"op"})

	OrdersComposedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_orders_composed_total",
		Help: "Total number of orders handed off to the messaging link",
	}, []string{"language"})

	CheckoutRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_checkout_rejected_total",
		Help: "Total number of checkouts refused before composition",
	}, []string{"reason"})

	EventsRecordedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_events_recorded_total",
		Help: "Total number of analytics events appended",
	}, []string{"type"})

	EventsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_events_failed_total",
		Help: "Total number of analytics events lost",
	}, []string{"type"})

	CatalogRefreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_catalog_refreshes_total",
		Help: "Catalog snapshot refreshes by outcome",
	}, []string{"outcome"})

	AdminMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_admin_mutations_total",
		Help: "Admin create/update/delete operations",
	}, []string{"collection", "action"})

	AdminLoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_admin_logins_total",
		Help: "Admin sign-in attempts by outcome",
	}, []string{"outcome"})

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
