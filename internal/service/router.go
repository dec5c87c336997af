package service

import (
	"context"
	"fmt"

	"github.com/strogmv/claimcomms/internal/domain"
	"github.com/strogmv/claimcomms/internal/pkg/logger"
	"github.com/strogmv/claimcomms/internal/port"
)

// Attribute names carrying the event type next to a payload.
const (
	AttrEventType   = "eventType"
	AttrMessageType = "messageType"
)

// EventTypes maps the configured type strings onto event kinds.
type EventTypes struct {
	AgreementCreated string
	StatusUpdate     string
	ReminderRequest  string
}

func (t EventTypes) kinds() map[string]domain.EventKind {
	out := make(map[string]domain.EventKind, 3)
	for typ, kind := range map[string]domain.EventKind{
		t.AgreementCreated: domain.KindAgreementCreated,
		t.StatusUpdate:     domain.KindStatusUpdate,
		t.ReminderRequest:  domain.KindReminderRequest,
	} {
		if typ != "" {
			out[typ] = kind
		}
	}
	return out
}

// Router classifies inbound events and hands them to processors.
type Router struct {
	kinds     map[string]domain.EventKind
	agreement port.AgreementCreatedProcessor
	claim     port.ClaimCreatedProcessor
	evidence  port.EvidenceRequiredProcessor
	reminder  port.ReminderProcessor
}

func NewRouter(
	types EventTypes,
	agreement port.AgreementCreatedProcessor,
	claim port.ClaimCreatedProcessor,
	evidence port.EvidenceRequiredProcessor,
	reminder port.ReminderProcessor,
) *Router {
	return &Router{
		kinds:     types.kinds(),
		agreement: agreement,
		claim:     claim,
		evidence:  evidence,
		reminder:  reminder,
	}
}

// EventType reads the declared type, preferring eventType over messageType.
func EventType(attrs map[string]string) string {
	if t := attrs[AttrEventType]; t != "" {
		return t
	}
	return attrs[AttrMessageType]
}

// Decode classifies, decodes and validates a payload without dispatching it.
func (r *Router) Decode(attrs map[string]string, payload []byte) (domain.Event, error) {
	eventType := EventType(attrs)
	kind, ok := r.kinds[eventType]
	if !ok {
		return nil, &domain.UnsupportedEventTypeError{EventType: eventType}
	}
	ev, err := domain.ParseEvent(kind, payload)
	if err != nil {
		return nil, &domain.InvalidEventError{EventType: eventType, Err: err}
	}
	return ev, nil
}

func (r *Router) Route(ctx context.Context, attrs map[string]string, payload []byte) error {
	ev, err := r.Decode(attrs, payload)
	if err != nil {
		return err
	}
	ctx = logger.With(ctx, "eventType", EventType(attrs))

	switch e := ev.(type) {
	case domain.AgreementCreated:
		return r.agreement.ProcessAgreementCreated(ctx, e)
	case domain.StatusUpdate:
		return r.routeStatus(ctx, e)
	case domain.ReminderRequest:
		return r.reminder.ProcessReminder(ctx, e)
	default:
		return fmt.Errorf("route: no processor for %s", ev.Kind())
	}
}

func (r *Router) routeStatus(ctx context.Context, e domain.StatusUpdate) error {
	switch e.ClaimStatus {
	case domain.StatusOnHold:
		return r.claim.ProcessClaimCreated(ctx, e)
	case domain.StatusInCheck:
		if err := r.claim.ProcessClaimCreated(ctx, e); err != nil {
			return err
		}
		return r.evidence.ProcessEvidenceRequired(ctx, e)
	default:
		logger.From(ctx).Debug("no processing required for claim status", "claimStatus", string(e.ClaimStatus))
		return nil
	}
}
