package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Ledger message types.
const (
	MessageTypeAgreementCreated = "agreementCreated"
	MessageTypeClaimCreated     = "claimCreated"
	MessageTypeReminderEmail    = "reminderEmail"
)

// StatusChangeMessageType is the message type recorded for status-driven emails.
func StatusChangeMessageType(status ClaimStatus) string {
	return "statusChange-" + string(status)
}

// Values written over PII during redaction.
const (
	RedactedEmail            = "redacted.email@example.com"
	RedactedOrganisationName = "REDACTED_ORGANISATION_NAME"
	RedactedOrgEmail         = "redacted.org.email@example.com"
	RedactedHerdName         = "REDACTED_HERD_NAME"
)

var piiReplacements = map[string]string{
	"email":        RedactedEmail,
	"emailAddress": RedactedEmail,
	"orgName":      RedactedOrganisationName,
	"orgEmail":     RedactedOrgEmail,
	"herdName":     RedactedHerdName,
}

// RecordData is the opaque snapshot stored alongside a dispatch record.
type RecordData map[string]any

// RedactPII overwrites the PII fields that are present and non-null.
// It reports whether anything changed.
func (d RecordData) RedactPII() bool {
	changed := false
	for field, token := range piiReplacements {
		v, ok := d[field]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && s == token {
			continue
		}
		d[field] = token
		changed = true
	}
	return changed
}

// LedgerKey identifies one unit of already-performed side effects.
type LedgerKey struct {
	AgreementReference string
	ClaimReference     string
	MessageType        string
	SubType            string
	Recipient          string
}

// String is a stable rendering used for lease names and map keys.
func (k LedgerKey) String() string {
	return strings.Join([]string{k.AgreementReference, k.ClaimReference, k.MessageType, k.SubType, k.Recipient}, "|")
}

// AgreementKey keys agreement-level flows.
func AgreementKey(agreementRef, messageType string) LedgerKey {
	return LedgerKey{AgreementReference: NormalizeReference(agreementRef), MessageType: messageType}
}

// ClaimKey keys claim-level flows.
func ClaimKey(agreementRef, claimRef, messageType string) LedgerKey {
	return LedgerKey{
		AgreementReference: NormalizeReference(agreementRef),
		ClaimReference:     NormalizeReference(claimRef),
		MessageType:        messageType,
	}
}

// ReminderKey keys one reminder sent to one address.
func ReminderKey(agreementRef, reminderType, address string) LedgerKey {
	return LedgerKey{
		AgreementReference: NormalizeReference(agreementRef),
		MessageType:        MessageTypeReminderEmail,
		SubType:            reminderType,
		Recipient:          RecipientDigest(address),
	}
}

// NormalizeReference upper-cases and trims a business reference.
func NormalizeReference(ref string) string {
	return strings.ToUpper(strings.TrimSpace(ref))
}

// RecipientDigest is a SHA-256 of the lower-cased address, so keys carry no PII.
func RecipientDigest(address string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(address))))
	return hex.EncodeToString(sum[:])
}

// DispatchRecord is a ledger entry.
type DispatchRecord struct {
	ID                 string     `json:"id"`
	AgreementReference string     `json:"agreementReference"`
	ClaimReference     string     `json:"claimReference,omitempty"`
	MessageType        string     `json:"messageType"`
	SubType            string     `json:"subType,omitempty"`
	Recipient          string     `json:"recipient,omitempty"`
	Data               RecordData `json:"data"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// Key returns the ledger key the record occupies.
func (r DispatchRecord) Key() LedgerKey {
	return LedgerKey{
		AgreementReference: r.AgreementReference,
		ClaimReference:     r.ClaimReference,
		MessageType:        r.MessageType,
		SubType:            r.SubType,
		Recipient:          r.Recipient,
	}
}
