package notifications

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/strogmv/claimcomms/internal/domain"
	"github.com/strogmv/claimcomms/internal/port"
)

// DefaultEventType is the attribute value placed on outbound comms requests.
const DefaultEventType = "uk.gov.ffc.ahwr.submit.sfd.message.request"

var notificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "claimcomms_notifications_total",
	Help: "Outbound notification requests by address kind and outcome.",
}, []string{"kind", "outcome"})

// Dispatcher validates notification requests and publishes them on a comms channel.
type Dispatcher struct {
	channel   port.CommsChannel
	validate  *validator.Validate
	eventType string
	now       func() time.Time
	newID     func() string
}

// NewDispatcher wraps an already connected channel.
func NewDispatcher(channel port.CommsChannel, eventType string) *Dispatcher {
	if eventType == "" {
		eventType = DefaultEventType
	}
	return &Dispatcher{
		channel:   channel,
		validate:  domain.NewValidator(),
		eventType: eventType,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (d *Dispatcher) Send(ctx context.Context, req domain.NotificationRequest) error {
	msg := port.OutboundMessage{
		CRN:                req.CRN,
		SBI:                req.SBI,
		AgreementReference: req.AgreementReference,
		ClaimReference:     req.ClaimReference,
		NotifyTemplateID:   req.TemplateID,
		EmailReplyToID:     req.ReplyToID,
		EmailAddress:       req.RecipientAddress,
		CustomParams:       req.TemplateParams,
		DateTime:           d.now().UTC(),
	}

	if err := domain.ViolationsFrom(d.validate.Struct(msg)); err != nil {
		notificationsTotal.WithLabelValues(string(req.AddressKind), "rejected").Inc()
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return &domain.OutboundValidationError{Kind: req.AddressKind, Err: verr}
		}
		return err
	}

	attrs := port.MessageAttributes{EventType: d.eventType, MessageID: d.newID()}
	if err := d.channel.Publish(ctx, msg, attrs); err != nil {
		notificationsTotal.WithLabelValues(string(req.AddressKind), "failed").Inc()
		return &domain.SendError{Kind: req.AddressKind, Err: err}
	}
	notificationsTotal.WithLabelValues(string(req.AddressKind), "sent").Inc()
	return nil
}
