package port

import (
	"context"

	"github.com/strogmv/claimcomms/internal/domain"
)

// InboundMessage is one delivery from the event transport.
type InboundMessage struct {
	Attributes map[string]string
	Payload    []byte
}

// Disposition tells the transport what to do with a delivery.
type Disposition int

const (
	// Ack removes the message.
	Ack Disposition = iota
	// Retry asks for redelivery.
	Retry
	// Reject drops the message without redelivery.
	Reject
)

// InboundHandler processes one delivery.
type InboundHandler func(ctx context.Context, msg InboundMessage) Disposition

// EventRouter turns an inbound delivery into processor calls.
type EventRouter interface {
	Route(ctx context.Context, attrs map[string]string, payload []byte) error
}

// Processors invoked by the router.
type AgreementCreatedProcessor interface {
	ProcessAgreementCreated(ctx context.Context, e domain.AgreementCreated) error
}

type ClaimCreatedProcessor interface {
	ProcessClaimCreated(ctx context.Context, e domain.StatusUpdate) error
}

type EvidenceRequiredProcessor interface {
	ProcessEvidenceRequired(ctx context.Context, e domain.StatusUpdate) error
}

type ReminderProcessor interface {
	ProcessReminder(ctx context.Context, e domain.ReminderRequest) error
}
