package service

import (
	"context"
	"fmt"

	"github.com/strogmv/claimcomms/internal/domain"
	"github.com/strogmv/claimcomms/internal/pkg/logger"
)

// ReminderProcessor sends reminder emails to the addresses supplied with the request.
// Each address is checked and recorded on its own, so a redelivery after a
// partial failure only reaches the addresses still outstanding.
type ReminderProcessor struct {
	deps    Deps
	guard   *ledgerGuard
	enabled bool
}

func NewReminderProcessor(deps Deps, enabled bool) *ReminderProcessor {
	return &ReminderProcessor{deps: deps, guard: deps.guard(), enabled: enabled}
}

// ReminderRecipients turns the supplied addresses into individual recipients, in order.
func ReminderRecipients(addresses []string) []Recipient {
	out := make([]Recipient, 0, len(addresses))
	for _, a := range addresses {
		out = append(out, Recipient{Address: a, Kind: domain.AddressEmail})
	}
	return out
}

func (p *ReminderProcessor) ProcessReminder(ctx context.Context, e domain.ReminderRequest) error {
	ref := domain.NormalizeReference(e.AgreementReference)
	ctx = logger.With(ctx,
		"reminderType", e.ReminderType,
		"agreementReference", ref,
		"numEmailAddresses", len(e.EmailAddresses),
	)
	log := logger.From(ctx)

	if !p.enabled {
		log.Info("skipping reminder email, feature flag is not enabled")
		return nil
	}
	parent, subType, ok := domain.ParseReminderType(e.ReminderType)
	if !ok {
		log.Info("skipping reminder email, unrecognised reminder parent/sub type provided")
		return nil
	}

	templateID := p.deps.Notify.Templates.ReminderTemplate(parent, subType)
	params := ReminderParams(ref)

	for _, r := range ReminderRecipients(e.EmailAddresses) {
		req := domain.NotificationRequest{
			RecipientAddress:   r.Address,
			AddressKind:        r.Kind,
			TemplateID:         templateID,
			TemplateParams:     params,
			ReplyToID:          p.deps.Notify.NoReplyReplyToID,
			AgreementReference: ref,
			CRN:                e.CRN.String(),
			SBI:                e.SBI.String(),
		}
		key := domain.ReminderKey(ref, e.ReminderType, r.Address)

		ran, err := p.guard.once(ctx, key, func(ctx context.Context) (domain.RecordData, error) {
			if err := p.deps.Dispatcher.Send(ctx, req); err != nil {
				return nil, fmt.Errorf("%s recipient: %w", r.Kind, err)
			}
			logger.From(ctx).Info("sent reminder email",
				logger.Event("reminder-email-send-proxy",
					"reference", ref,
					"outcome", "true",
					"kind", templateID,
					"category", e.ReminderType,
				))
			return domain.RecordData{
				"emailAddress":       r.Address,
				"reminderType":       e.ReminderType,
				"agreementReference": ref,
				"crn":                e.CRN.String(),
				"sbi":                e.SBI.String(),
				"notifyTemplateId":   templateID,
				"emailReplyToId":     req.ReplyToID,
				"customParams":       params,
			}, nil
		})
		if err != nil {
			logFailure(ctx, "failed to send reminder email", err)
			return err
		}
		if !ran {
			log.Info("skipping reminder email for recipient, already been processed")
		}
	}
	return nil
}
