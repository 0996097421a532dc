package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts HTTP requests by method, path and status
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gocart_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPDuration observes HTTP request latency by method and path
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gocart_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// ProductSubmissions counts products submitted or resubmitted for review
	ProductSubmissions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gocart_product_submissions_total",
		Help: "Total number of products submitted for review",
	})

	// ProductReviews counts review decisions by resulting status
	ProductReviews = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gocart_product_reviews_total",
		Help: "Total number of product review decisions",
	}, []string{"status"})

	// CouponValidations counts coupon validation attempts by outcome
	CouponValidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gocart_coupon_validations_total",
		Help: "Total number of coupon validation attempts",
	}, []string{"result"})

	// CouponRedemptions counts coupons burned at order creation
	CouponRedemptions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gocart_coupon_redemptions_total",
		Help: "Total number of coupons redeemed on orders",
	})

	// OrdersCreated counts successfully created orders
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gocart_orders_created_total",
		Help: "Total number of orders created",
	})

	// OrderRevenue accumulates order totals after discounts
	OrderRevenue = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gocart_order_revenue_total",
		Help: "Total revenue across all orders",
	})

	// CatalogInvalidations counts catalog change notices pushed to clients
	CatalogInvalidations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gocart_catalog_invalidations_total",
		Help: "Total number of catalog invalidation broadcasts",
	})
)
