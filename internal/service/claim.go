package service

import (
	"context"

	"github.com/strogmv/claimcomms/internal/domain"
	"github.com/strogmv/claimcomms/internal/pkg/logger"
)

// ClaimProcessor confirms a newly submitted claim.
type ClaimProcessor struct {
	deps  Deps
	guard *ledgerGuard
}

func NewClaimProcessor(deps Deps) *ClaimProcessor {
	return &ClaimProcessor{deps: deps, guard: deps.guard()}
}

func (p *ClaimProcessor) ProcessClaimCreated(ctx context.Context, e domain.StatusUpdate) error {
	e = normalizeReferences(e)
	ctx = logger.With(ctx, "claimReference", e.ClaimReference)
	key := domain.ClaimKey(e.AgreementReference, e.ClaimReference, domain.MessageTypeClaimCreated)

	ran, err := p.guard.once(ctx, key, func(ctx context.Context) (domain.RecordData, error) {
		contact, err := p.deps.Contacts.LatestContactDetails(ctx, e.AgreementReference)
		if err != nil {
			return nil, &domain.ContactLookupError{AgreementReference: e.AgreementReference, Err: err}
		}

		templateID := p.deps.Notify.Templates.ClaimTemplate(e.ClaimType)
		params := ClaimParams(e)
		category := string(e.TypeOfLivestock) + " - templateId:" + templateID

		err = sendAll(ctx, p.deps.Dispatcher, FanOut(p.deps.Notify.CarbonCopyAddress, contact),
			func(r Recipient) domain.NotificationRequest {
				return domain.NotificationRequest{
					RecipientAddress:   r.Address,
					AddressKind:        r.Kind,
					TemplateID:         templateID,
					TemplateParams:     params,
					ReplyToID:          p.deps.Notify.NoReplyReplyToID,
					AgreementReference: e.AgreementReference,
					ClaimReference:     e.ClaimReference,
					CRN:                e.CRN.String(),
					SBI:                e.SBI.String(),
				}
			},
			func(r Recipient, _ domain.NotificationRequest) {
				logger.From(ctx).Info("sent new claim email",
					logger.Event("claim-email-requested",
						"reference", e.ClaimReference,
						"outcome", "true",
						"kind", string(r.Kind),
						"category", category,
					))
			})
		if err != nil {
			logFailure(ctx, "send new claim email", err)
			return nil, err
		}

		data := domain.RecordData{
			"crn":             e.CRN.String(),
			"sbi":             e.SBI.String(),
			"orgName":         contact.OrgName,
			"claimType":       string(e.ClaimType),
			"typeOfLivestock": string(e.TypeOfLivestock),
			"email":           contact.Email,
			"orgEmail":        contact.OrgEmail,
			"herdName":        e.HerdName,
		}
		if e.ClaimAmount != nil {
			data["claimAmount"] = *e.ClaimAmount
		}
		return data, nil
	})
	if err != nil {
		return err
	}
	if !ran {
		logger.From(ctx).Info("message has already been processed for claim being created")
	}
	return nil
}

// normalizeReferences upper-cases and trims both references so keys, lookups
// and outbound requests all carry the same form.
func normalizeReferences(e domain.StatusUpdate) domain.StatusUpdate {
	e.AgreementReference = domain.NormalizeReference(e.AgreementReference)
	e.ClaimReference = domain.NormalizeReference(e.ClaimReference)
	return e
}
