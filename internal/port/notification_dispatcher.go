package port

import (
	"context"
	"time"

	"github.com/strogmv/claimcomms/internal/domain"
)

// OutboundMessage is the comms request published for one recipient.
type OutboundMessage struct {
	CRN                string         `json:"crn,omitempty" validate:"omitempty,numeric,len=10"`
	SBI                string         `json:"sbi" validate:"required,numeric,len=9"`
	AgreementReference string         `json:"agreementReference" validate:"required"`
	ClaimReference     string         `json:"claimReference,omitempty" validate:"omitempty,max=14"`
	NotifyTemplateID   string         `json:"notifyTemplateId" validate:"required,uuid4"`
	EmailReplyToID     string         `json:"emailReplyToId,omitempty" validate:"omitempty,uuid4"`
	EmailAddress       string         `json:"emailAddress" validate:"required,email"`
	CustomParams       map[string]any `json:"customParams" validate:"required,min=1"`
	DateTime           time.Time      `json:"dateTime" validate:"required"`
}

// MessageAttributes travel next to an outbound payload.
type MessageAttributes struct {
	EventType string
	MessageID string
}

// CommsChannel publishes outbound comms requests.
type CommsChannel interface {
	Publish(ctx context.Context, msg OutboundMessage, attrs MessageAttributes) error
}

// NotificationDispatcher validates and sends one notification request.
type NotificationDispatcher interface {
	Send(ctx context.Context, req domain.NotificationRequest) error
}
