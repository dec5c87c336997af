package service

import (
	"github.com/strogmv/claimcomms/internal/domain"
)

const newUserType = "newUser"

// ClaimTemplate picks the claim-created template for a claim type.
func (t Templates) ClaimTemplate(ct domain.ClaimType) string {
	if ct == domain.ClaimTypeFollowUp {
		return t.NewFollowUpClaim
	}
	return t.NewReviewClaim
}

// EvidenceTemplate picks the evidence-required template for a claim type.
func (t Templates) EvidenceTemplate(ct domain.ClaimType) string {
	if ct == domain.ClaimTypeReview {
		return t.EvidenceReview
	}
	return t.EvidenceFollowUp
}

// AgreementTemplate picks between the new and existing user agreement emails.
func (t Templates) AgreementTemplate(userType string) string {
	if userType == newUserType {
		return t.NewUserAgreement
	}
	return t.ExistingUserAgreement
}

// ReminderTemplate returns the template for a reminder family. Every
// notClaimed sub-type currently shares one template.
func (t Templates) ReminderTemplate(parent, _ string) string {
	switch parent {
	case "notClaimed":
		return t.ReminderNotClaimed
	default:
		return ""
	}
}

// ClaimParams builds the claim-created template parameters.
func ClaimParams(e domain.StatusUpdate) map[string]any {
	params := map[string]any{
		"reference":            e.ClaimReference,
		"applicationReference": e.AgreementReference,
		"species":              e.TypeOfLivestock.Species(),
		"crn":                  e.CRN.String(),
		"sbi":                  e.SBI.String(),
		"herdNameLabel":        e.TypeOfLivestock.HerdNameLabel(),
		"herdName":             e.HerdName,
	}
	if e.ClaimAmount != nil {
		params["amount"] = *e.ClaimAmount
	} else {
		params["amount"] = nil
	}
	return params
}

// EvidenceParams builds the evidence-required template parameters.
func EvidenceParams(e domain.StatusUpdate, orgName string) map[string]any {
	return map[string]any{
		"sbi":                  e.SBI.String(),
		"orgName":              orgName,
		"claimReference":       e.ClaimReference,
		"agreementReference":   e.AgreementReference,
		"customSpeciesBullets": FormatBullets(EvidenceBullets(e)),
		"herdNameLabel":        e.TypeOfLivestock.HerdNameLabel(),
		"herdName":             e.HerdName,
		"species":              e.TypeOfLivestock.Species(),
	}
}

// AgreementParams builds the agreement-created parameters with the document attached.
func AgreementParams(reference, orgName, encodedFile string) map[string]any {
	return map[string]any{
		"name":      orgName,
		"reference": reference,
		"link_to_file": map[string]any{
			"file":                          encodedFile,
			"is_csv":                        false,
			"confirm_email_before_download": nil,
			"retention_period":              nil,
		},
	}
}

// ReminderParams builds the reminder template parameters.
func ReminderParams(agreementRef string) map[string]any {
	return map[string]any{"agreementReference": agreementRef}
}
