package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/strogmv/claimcomms/internal/port"
)

// Templates holds the notify template ids chosen between by the processors.
type Templates struct {
	NewReviewClaim        string
	NewFollowUpClaim      string
	EvidenceReview        string
	EvidenceFollowUp      string
	ReminderNotClaimed    string
	NewUserAgreement      string
	ExistingUserAgreement string
}

// NotifySettings is the addressing and template configuration shared by processors.
type NotifySettings struct {
	Templates                 Templates
	ReplyToID                 string
	NoReplyReplyToID          string
	CarbonCopyAddress         string
	EvidenceCarbonCopyAddress string
}

// Deps are the collaborators every processor is built from.
type Deps struct {
	Ledger     port.Ledger
	Locker     port.KeyLocker
	Contacts   port.ContactResolver
	Dispatcher port.NotificationDispatcher
	Blobs      port.BlobStore
	Notify     NotifySettings

	// Now and NewID default to time.Now and uuid.NewString.
	Now   func() time.Time
	NewID func() string
}

func (d Deps) guard() *ledgerGuard {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	newID := d.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return &ledgerGuard{ledger: d.Ledger, locker: d.Locker, now: now, newID: newID}
}
