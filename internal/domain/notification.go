package domain

// AddressKind says why a recipient is receiving a notification.
type AddressKind string

const (
	AddressCC       AddressKind = "CC"
	AddressOrgEmail AddressKind = "ORG_EMAIL"
	AddressEmail    AddressKind = "EMAIL"
)

// NotificationRequest is one fully built message for one recipient.
type NotificationRequest struct {
	RecipientAddress   string
	AddressKind        AddressKind
	TemplateID         string
	TemplateParams     map[string]any
	ReplyToID          string
	AgreementReference string
	ClaimReference     string
	CRN                string
	SBI                string
}
