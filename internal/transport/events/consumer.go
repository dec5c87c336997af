package events

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/strogmv/claimcomms/internal/domain"
	"github.com/strogmv/claimcomms/internal/pkg/logger"
	"github.com/strogmv/claimcomms/internal/port"
	"github.com/strogmv/claimcomms/internal/service"
)

var (
	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "claimcomms_events_total",
		Help: "Inbound events by type and disposition.",
	}, []string{"event_type", "disposition"})

	eventDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "claimcomms_event_duration_seconds",
		Help:    "Time spent routing one inbound event.",
		Buckets: prometheus.DefBuckets,
	}, []string{"event_type"})
)

// Consumer adapts the event router to a transport delivery callback.
type Consumer struct {
	router port.EventRouter
	tracer trace.Tracer
}

func NewConsumer(router port.EventRouter) *Consumer {
	return &Consumer{router: router, tracer: otel.Tracer("claimcomms/events")}
}

// Handle routes one delivery and chooses its disposition. Errors that a
// redelivery cannot fix reject the message; everything else is retried.
func (c *Consumer) Handle(ctx context.Context, msg port.InboundMessage) port.Disposition {
	eventType := service.EventType(msg.Attributes)

	carrier := propagation.HeaderCarrier{}
	for k, v := range msg.Attributes {
		carrier.Set(k, v)
	}
	ctx = otel.GetTextMapPropagator().Extract(ctx, carrier)
	ctx, span := c.tracer.Start(ctx, "route "+eventType,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(attribute.String("messaging.event_type", eventType)),
	)
	defer span.End()

	ctx = logger.With(ctx, "eventType", eventType)
	start := time.Now()
	err := c.router.Route(ctx, msg.Attributes, msg.Payload)
	eventDuration.WithLabelValues(eventType).Observe(time.Since(start).Seconds())

	disposition := Disposition(err)
	eventsTotal.WithLabelValues(eventType, dispositionLabel(disposition)).Inc()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log := logger.From(ctx)
		switch {
		case errors.Is(err, domain.ErrKeyBusy):
			log.Info("event is already being processed elsewhere, retrying later")
		case disposition == port.Reject:
			log.Error("rejecting event", slog.String("error", err.Error()),
				logger.Event("exception", "category", "failed-validation"))
		default:
			log.Error("event processing failed", slog.String("error", err.Error()),
				slog.String("deliveryCount", msg.Attributes["deliveryCount"]))
		}
	}
	return disposition
}

// Disposition maps a routing outcome onto a transport acknowledgement.
func Disposition(err error) port.Disposition {
	switch {
	case err == nil:
		return port.Ack
	case domain.IsFatal(err):
		return port.Reject
	default:
		return port.Retry
	}
}

func dispositionLabel(d port.Disposition) string {
	switch d {
	case port.Ack:
		return "ack"
	case port.Reject:
		return "reject"
	default:
		return "retry"
	}
}
