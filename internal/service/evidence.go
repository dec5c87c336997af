package service

import (
	"context"

	"github.com/strogmv/claimcomms/internal/domain"
	"github.com/strogmv/claimcomms/internal/pkg/logger"
)

// EvidenceProcessor asks the farmer for the evidence a claim in check needs.
type EvidenceProcessor struct {
	deps    Deps
	guard   *ledgerGuard
	enabled bool
}

func NewEvidenceProcessor(deps Deps, enabled bool) *EvidenceProcessor {
	return &EvidenceProcessor{deps: deps, guard: deps.guard(), enabled: enabled}
}

func (p *EvidenceProcessor) ProcessEvidenceRequired(ctx context.Context, e domain.StatusUpdate) error {
	if !p.enabled {
		logger.From(ctx).Info("skipping evidence email, feature flag is not enabled")
		return nil
	}

	e = normalizeReferences(e)
	ctx = logger.With(ctx, "claimReference", e.ClaimReference, "claimStatus", string(e.ClaimStatus))
	key := domain.ClaimKey(e.AgreementReference, e.ClaimReference, domain.StatusChangeMessageType(e.ClaimStatus))

	ran, err := p.guard.once(ctx, key, func(ctx context.Context) (domain.RecordData, error) {
		contact, err := p.deps.Contacts.LatestContactDetails(ctx, e.AgreementReference)
		if err != nil {
			return nil, &domain.ContactLookupError{AgreementReference: e.AgreementReference, Err: err}
		}

		templateID := p.deps.Notify.Templates.EvidenceTemplate(e.ClaimType)
		params := EvidenceParams(e, contact.OrgName)
		category := string(e.TypeOfLivestock) + " - templateId:" + templateID

		err = sendAll(ctx, p.deps.Dispatcher, FanOut(p.deps.Notify.EvidenceCarbonCopyAddress, contact),
			func(r Recipient) domain.NotificationRequest {
				return domain.NotificationRequest{
					RecipientAddress:   r.Address,
					AddressKind:        r.Kind,
					TemplateID:         templateID,
					TemplateParams:     params,
					ReplyToID:          p.deps.Notify.ReplyToID,
					AgreementReference: e.AgreementReference,
					ClaimReference:     e.ClaimReference,
					CRN:                e.CRN.String(),
					SBI:                e.SBI.String(),
				}
			},
			func(r Recipient, _ domain.NotificationRequest) {
				logger.From(ctx).Info("sent evidence email",
					logger.Event("evidence-email-requested",
						"reference", e.ClaimReference,
						"outcome", "true",
						"kind", string(r.Kind),
						"category", category,
					))
			})
		if err != nil {
			logFailure(ctx, "send evidence email", err)
			return nil, err
		}

		return domain.RecordData{
			"crn":               e.CRN.String(),
			"sbi":               e.SBI.String(),
			"orgName":           contact.OrgName,
			"claimType":         string(e.ClaimType),
			"typeOfLivestock":   string(e.TypeOfLivestock),
			"email":             contact.Email,
			"orgEmail":          contact.OrgEmail,
			"reviewTestResults": e.ReviewTestResults,
			"piHuntRecommended": e.PIHuntRecommended,
			"piHuntAllAnimals":  e.PIHuntAllAnimals,
			"herdName":          e.HerdName,
		}, nil
	})
	if err != nil {
		return err
	}
	if !ran {
		logger.From(ctx).Info("message has already been processed for claim status")
	}
	return nil
}
