package telemetry

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// InitMeterProvider wires the Prometheus exporter into the global
// MeterProvider and returns the /metrics handler plus a shutdown function.
func InitMeterProvider(serviceName, serviceVersion string) (http.Handler, func(context.Context) error, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, err
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(serviceVersion),
	)

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	return promhttp.Handler(), mp.Shutdown, nil
}

// OrderMetrics counts order admission outcomes and lifecycle changes.
type OrderMetrics struct {
	OrdersCreated  metric.Int64Counter
	OrdersRejected metric.Int64Counter
	StatusUpdates  metric.Int64Counter
}

func NewOrderMetrics() (*OrderMetrics, error) {
	meter := otel.Meter("wholesale/orders")

	created, err := meter.Int64Counter("orders_created_total",
		metric.WithDescription("Orders admitted and committed"))
	if err != nil {
		return nil, err
	}

	rejected, err := meter.Int64Counter("orders_rejected_total",
		metric.WithDescription("Order submissions rejected before commit"))
	if err != nil {
		return nil, err
	}

	updates, err := meter.Int64Counter("order_status_updates_total",
		metric.WithDescription("Applied order status transitions"))
	if err != nil {
		return nil, err
	}

	return &OrderMetrics{
		OrdersCreated:  created,
		OrdersRejected: rejected,
		StatusUpdates:  updates,
	}, nil
}
