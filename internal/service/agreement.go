package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/strogmv/claimcomms/internal/domain"
	"github.com/strogmv/claimcomms/internal/pkg/logger"
)

// AgreementProcessor emails the signed agreement document to the farmer.
type AgreementProcessor struct {
	deps  Deps
	guard *ledgerGuard
}

func NewAgreementProcessor(deps Deps) *AgreementProcessor {
	return &AgreementProcessor{deps: deps, guard: deps.guard()}
}

func (p *AgreementProcessor) ProcessAgreementCreated(ctx context.Context, e domain.AgreementCreated) error {
	ref := domain.NormalizeReference(e.AgreementReference)
	ctx = logger.With(ctx, "agreementReference", ref)
	key := domain.AgreementKey(ref, domain.MessageTypeAgreementCreated)

	ran, err := p.guard.once(ctx, key, func(ctx context.Context) (domain.RecordData, error) {
		contact, err := p.deps.Contacts.LatestContactDetails(ctx, ref)
		if err != nil {
			return nil, &domain.ContactLookupError{AgreementReference: ref, Err: err}
		}
		doc, err := p.deps.Blobs.Fetch(ctx, e.DocumentLocation)
		if err != nil {
			return nil, fmt.Errorf("fetch agreement document: %w", err)
		}

		templateID := p.deps.Notify.Templates.AgreementTemplate(e.UserType)
		params := AgreementParams(ref, contact.OrgName, base64.StdEncoding.EncodeToString(doc))
		recipients := FanOut(p.deps.Notify.CarbonCopyAddress, contact)

		err = sendAll(ctx, p.deps.Dispatcher, recipients,
			func(r Recipient) domain.NotificationRequest {
				return domain.NotificationRequest{
					RecipientAddress:   r.Address,
					AddressKind:        r.Kind,
					TemplateID:         templateID,
					TemplateParams:     params,
					ReplyToID:          p.deps.Notify.NoReplyReplyToID,
					AgreementReference: ref,
					CRN:                e.CRN.String(),
					SBI:                e.SBI.String(),
				}
			},
			func(r Recipient, _ domain.NotificationRequest) {
				logger.From(ctx).Info("requested new agreement email",
					logger.Event("agreement-email-requested",
						"reference", ref,
						"outcome", "true",
						"kind", string(r.Kind),
						"category", "templateId:"+templateID,
					))
			})
		if err != nil {
			logFailure(ctx, "send new agreement email", err)
			return nil, err
		}

		return domain.RecordData{
			"crn":              e.CRN.String(),
			"sbi":              e.SBI.String(),
			"orgName":          contact.OrgName,
			"userType":         e.UserType,
			"documentLocation": e.DocumentLocation,
			"email":            contact.Email,
			"orgEmail":         contact.OrgEmail,
		}, nil
	})
	if err != nil {
		return err
	}
	if !ran {
		logger.From(ctx).Info("message has already been processed for agreement being created")
	}
	return nil
}

func logFailure(ctx context.Context, msg string, err error) {
	logger.From(ctx).Error(msg,
		slog.String("error", err.Error()),
		logger.Event("exception", "category", "failed-processing"),
	)
}
