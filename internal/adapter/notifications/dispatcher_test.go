package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strogmv/claimcomms/internal/domain"
	"github.com/strogmv/claimcomms/internal/port"
)

type channelMock struct {
	PublishFunc func(ctx context.Context, msg port.OutboundMessage, attrs port.MessageAttributes) error
	calls       []port.OutboundMessage
}

func (m *channelMock) Publish(ctx context.Context, msg port.OutboundMessage, attrs port.MessageAttributes) error {
	m.calls = append(m.calls, msg)
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, msg, attrs)
	}
	return nil
}

func validRequest() domain.NotificationRequest {
	return domain.NotificationRequest{
		RecipientAddress:   "farmer@example.com",
		AddressKind:        domain.AddressOrgEmail,
		TemplateID:         "9d1c3a6e-4f4b-4a53-9f0e-2a1b3c4d5e6f",
		TemplateParams:     map[string]any{"reference": "REBC-A89F-7776"},
		ReplyToID:          "c3e9149b-9490-4321-808c-72e709d9d814",
		AgreementReference: "IAHW-0AD3-3322",
		ClaimReference:     "REBC-A89F-7776",
		CRN:                "1100014934",
		SBI:                "106705779",
	}
}

func TestDispatcherPublishesValidRequest(t *testing.T) {
	t.Parallel()
	ch := &channelMock{PublishFunc: func(_ context.Context, _ port.OutboundMessage, attrs port.MessageAttributes) error {
		if attrs.EventType != DefaultEventType {
			t.Fatalf("unexpected event type %q", attrs.EventType)
		}
		if attrs.MessageID != "msg-1" {
			t.Fatalf("unexpected message id %q", attrs.MessageID)
		}
		return nil
	}}
	d := NewDispatcher(ch, "")
	d.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	d.newID = func() string { return "msg-1" }

	require.NoError(t, d.Send(context.Background(), validRequest()))
	require.Len(t, ch.calls, 1)
	assert.Equal(t, "farmer@example.com", ch.calls[0].EmailAddress)
	assert.Equal(t, "REBC-A89F-7776", ch.calls[0].ClaimReference)
	assert.Equal(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), ch.calls[0].DateTime)
}

func TestDispatcherRejectsInvalidRequests(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(*domain.NotificationRequest)
		field  string
	}{
		{"bad email", func(r *domain.NotificationRequest) { r.RecipientAddress = "not-an-email" }, "emailAddress"},
		{"short sbi", func(r *domain.NotificationRequest) { r.SBI = "1234" }, "sbi"},
		{"alpha crn", func(r *domain.NotificationRequest) { r.CRN = "11000A4934" }, "crn"},
		{"template not uuid", func(r *domain.NotificationRequest) { r.TemplateID = "template" }, "notifyTemplateId"},
		{"empty params", func(r *domain.NotificationRequest) { r.TemplateParams = map[string]any{} }, "customParams"},
		{"long claim reference", func(r *domain.NotificationRequest) { r.ClaimReference = "REBC-A89F-7776-X" }, "claimReference"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ch := &channelMock{}
			d := NewDispatcher(ch, "")
			req := validRequest()
			tt.mutate(&req)

			err := d.Send(context.Background(), req)
			var verr *domain.OutboundValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected OutboundValidationError, got %v", err)
			}
			if !verr.Err.Has(tt.field) {
				t.Fatalf("expected violation on %s, got %v", tt.field, verr.Err.Violations)
			}
			if len(ch.calls) != 0 {
				t.Fatalf("channel must not be called, got %d calls", len(ch.calls))
			}
		})
	}
}

func TestDispatcherOmitsOptionalCRN(t *testing.T) {
	t.Parallel()
	ch := &channelMock{}
	req := validRequest()
	req.CRN = ""
	require.NoError(t, NewDispatcher(ch, "").Send(context.Background(), req))
}

func TestDispatcherWrapsChannelFailure(t *testing.T) {
	t.Parallel()
	boom := errors.New("broker unavailable")
	ch := &channelMock{PublishFunc: func(context.Context, port.OutboundMessage, port.MessageAttributes) error { return boom }}

	err := NewDispatcher(ch, "").Send(context.Background(), validRequest())
	var sendErr *domain.SendError
	require.ErrorAs(t, err, &sendErr)
	assert.Equal(t, domain.AddressOrgEmail, sendErr.Kind)
	assert.ErrorIs(t, err, boom)
}
