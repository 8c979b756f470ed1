package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProductsCreated is a Prometheus counter for tracking the total number of products created.
	ProductsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_created_total",
		Help: "The total number of products created",
	})

	// ProductsUpdated is a Prometheus counter for tracking the total number of product updates.
	ProductsUpdated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_updated_total",
		Help: "The total number of products updated",
	})

	// ProductsDeleted is a Prometheus counter for tracking the total number of products deleted.
	ProductsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_deleted_total",
		Help: "The total number of products deleted",
	})

	// ValidationFailures counts rejected create/update payloads by field.
	ValidationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "product_validation_failures_total",
		Help: "The total number of product field validation failures",
	}, []string{"field"})

	// EventPublishFailures counts product events that could not be delivered.
	EventPublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "product_event_publish_failures_total",
		Help: "The total number of product events that failed to publish",
	})
)
