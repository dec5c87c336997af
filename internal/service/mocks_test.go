package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/strogmv/claimcomms/internal/adapter/repository/memory"
	"github.com/strogmv/claimcomms/internal/domain"
)

type contactsMock struct {
	LatestContactDetailsFunc func(ctx context.Context, agreementRef string) (domain.ContactDetails, error)
	calls                    int
}

func (m *contactsMock) LatestContactDetails(ctx context.Context, agreementRef string) (domain.ContactDetails, error) {
	m.calls++
	if m.LatestContactDetailsFunc != nil {
		return m.LatestContactDetailsFunc(ctx, agreementRef)
	}
	return domain.ContactDetails{}, nil
}

type blobsMock struct {
	FetchFunc func(ctx context.Context, location string) ([]byte, error)
}

func (m *blobsMock) Fetch(ctx context.Context, location string) ([]byte, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, location)
	}
	return nil, nil
}

type dispatcherMock struct {
	mu       sync.Mutex
	SendFunc func(ctx context.Context, req domain.NotificationRequest) error
	sent     []domain.NotificationRequest
}

func (m *dispatcherMock) Send(ctx context.Context, req domain.NotificationRequest) error {
	if m.SendFunc != nil {
		if err := m.SendFunc(ctx, req); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.sent = append(m.sent, req)
	m.mu.Unlock()
	return nil
}

func (m *dispatcherMock) addresses() []string {
	out := make([]string, 0, len(m.sent))
	for _, r := range m.sent {
		out = append(out, r.RecipientAddress)
	}
	return out
}

type lockerMock struct {
	AcquireFunc func(ctx context.Context, key string) (func(), error)
	released    int
}

func (m *lockerMock) Acquire(ctx context.Context, key string) (func(), error) {
	if m.AcquireFunc != nil {
		return m.AcquireFunc(ctx, key)
	}
	return func() { m.released++ }, nil
}

type agreementProcessorMock struct {
	calls []domain.AgreementCreated
}

func (m *agreementProcessorMock) ProcessAgreementCreated(_ context.Context, e domain.AgreementCreated) error {
	m.calls = append(m.calls, e)
	return nil
}

type claimProcessorMock struct {
	ProcessFunc func(ctx context.Context, e domain.StatusUpdate) error
	calls       []domain.StatusUpdate
}

func (m *claimProcessorMock) ProcessClaimCreated(ctx context.Context, e domain.StatusUpdate) error {
	m.calls = append(m.calls, e)
	if m.ProcessFunc != nil {
		return m.ProcessFunc(ctx, e)
	}
	return nil
}

type evidenceProcessorMock struct {
	calls []domain.StatusUpdate
}

func (m *evidenceProcessorMock) ProcessEvidenceRequired(_ context.Context, e domain.StatusUpdate) error {
	m.calls = append(m.calls, e)
	return nil
}

type reminderProcessorMock struct {
	calls []domain.ReminderRequest
}

func (m *reminderProcessorMock) ProcessReminder(_ context.Context, e domain.ReminderRequest) error {
	m.calls = append(m.calls, e)
	return nil
}

const (
	reviewClaimTemplate   = "11111111-1111-4111-8111-111111111111"
	followUpClaimTemplate = "22222222-2222-4222-8222-222222222222"
	evidenceReview        = "33333333-3333-4333-8333-333333333333"
	evidenceFollowUp      = "44444444-4444-4444-8444-444444444444"
	reminderTemplate      = "55555555-5555-4555-8555-555555555555"
	newUserTemplate       = "66666666-6666-4666-8666-666666666666"
	existingUserTemplate  = "77777777-7777-4777-8777-777777777777"
	replyToID             = "88888888-8888-4888-8888-888888888888"
	noReplyID             = "99999999-9999-4999-8999-999999999999"
)

type fixture struct {
	ledger     *memory.Ledger
	contacts   *contactsMock
	blobs      *blobsMock
	dispatcher *dispatcherMock
	deps       Deps
}

func newFixture(contact domain.ContactDetails) *fixture {
	contacts := &contactsMock{LatestContactDetailsFunc: func(context.Context, string) (domain.ContactDetails, error) {
		return contact, nil
	}}
	f := &fixture{
		ledger:     memory.NewLedger(),
		contacts:   contacts,
		blobs:      &blobsMock{},
		dispatcher: &dispatcherMock{},
	}
	ids := 0
	f.deps = Deps{
		Ledger:     f.ledger,
		Contacts:   f.contacts,
		Dispatcher: f.dispatcher,
		Blobs:      f.blobs,
		Notify: NotifySettings{
			Templates: Templates{
				NewReviewClaim:        reviewClaimTemplate,
				NewFollowUpClaim:      followUpClaimTemplate,
				EvidenceReview:        evidenceReview,
				EvidenceFollowUp:      evidenceFollowUp,
				ReminderNotClaimed:    reminderTemplate,
				NewUserAgreement:      newUserTemplate,
				ExistingUserAgreement: existingUserTemplate,
			},
			ReplyToID:                 replyToID,
			NoReplyReplyToID:          noReplyID,
			CarbonCopyAddress:         "cc@example.com",
			EvidenceCarbonCopyAddress: "evidence-cc@example.com",
		},
		Now: func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) },
		NewID: func() string {
			ids++
			return fmt.Sprintf("rec-%d", ids)
		},
	}
	return f
}

func statusUpdate(status domain.ClaimStatus) domain.StatusUpdate {
	amount := 522.0
	return domain.StatusUpdate{
		CRN:                1100014934,
		SBI:                106705779,
		AgreementReference: "IAHW-0AD3-3322",
		ClaimReference:     "REBC-A89F-7776",
		ClaimStatus:        status,
		ClaimType:          domain.ClaimTypeReview,
		TypeOfLivestock:    domain.LivestockBeef,
		DateTime:           "2026-04-15T10:00:00.000Z",
		HerdName:           "Top field",
		ClaimAmount:        &amount,
	}
}
