package domain

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
)

// EventKind enumerates the inbound event classes the router understands.
type EventKind int

const (
	KindAgreementCreated EventKind = iota + 1
	KindStatusUpdate
	KindReminderRequest
)

func (k EventKind) String() string {
	switch k {
	case KindAgreementCreated:
		return "agreementCreated"
	case KindStatusUpdate:
		return "statusUpdate"
	case KindReminderRequest:
		return "reminderRequest"
	default:
		return "unknown"
	}
}

// Event is implemented only by the inbound event types of this package.
type Event interface {
	Kind() EventKind
	isEvent()
}

// ClaimStatus is the workflow status carried by a status update.
type ClaimStatus string

const (
	StatusAgreed              ClaimStatus = "AGREED"
	StatusWithdrawn           ClaimStatus = "WITHDRAWN"
	StatusInCheck             ClaimStatus = "IN_CHECK"
	StatusAccepted            ClaimStatus = "ACCEPTED"
	StatusNotAgreed           ClaimStatus = "NOT_AGREED"
	StatusPaid                ClaimStatus = "PAID"
	StatusReadyToPay          ClaimStatus = "READY_TO_PAY"
	StatusRejected            ClaimStatus = "REJECTED"
	StatusOnHold              ClaimStatus = "ON_HOLD"
	StatusRecommendedToPay    ClaimStatus = "RECOMMENDED_TO_PAY"
	StatusRecommendedToReject ClaimStatus = "RECOMMENDED_TO_REJECT"
	StatusAuthorised          ClaimStatus = "AUTHORISED"
	StatusSentToFinance       ClaimStatus = "SENT_TO_FINANCE"
	StatusPaymentHeld         ClaimStatus = "PAYMENT_HELD"
	StatusClaimed             ClaimStatus = "CLAIMED"
	StatusDataInputted        ClaimStatus = "DATA_INPUTTED"
	StatusException           ClaimStatus = "EXCEPTION"
)

var knownStatuses = map[ClaimStatus]struct{}{
	StatusAgreed: {}, StatusWithdrawn: {}, StatusInCheck: {}, StatusAccepted: {},
	StatusNotAgreed: {}, StatusPaid: {}, StatusReadyToPay: {}, StatusRejected: {},
	StatusOnHold: {}, StatusRecommendedToPay: {}, StatusRecommendedToReject: {},
	StatusAuthorised: {}, StatusSentToFinance: {}, StatusPaymentHeld: {},
	StatusClaimed: {}, StatusDataInputted: {}, StatusException: {},
}

// Known reports whether s is one of the recognised workflow statuses.
func (s ClaimStatus) Known() bool {
	_, ok := knownStatuses[s]
	return ok
}

type ClaimType string

const (
	ClaimTypeReview   ClaimType = "REVIEW"
	ClaimTypeFollowUp ClaimType = "FOLLOW_UP"
)

type Livestock string

const (
	LivestockBeef  Livestock = "beef"
	LivestockDairy Livestock = "dairy"
	LivestockPigs  Livestock = "pigs"
	LivestockSheep Livestock = "sheep"
)

var readableSpecies = map[Livestock]string{
	LivestockBeef:  "Beef cattle",
	LivestockDairy: "Dairy cattle",
	LivestockPigs:  "Pigs",
	LivestockSheep: "Sheep",
}

// Species returns the human label used in templates, or "" for unknown livestock.
func (l Livestock) Species() string { return readableSpecies[l] }

// IsCattle reports whether l is beef or dairy.
func (l Livestock) IsCattle() bool { return l == LivestockBeef || l == LivestockDairy }

// HerdNameLabel is "Flock name" for sheep and "Herd name" for everything else.
func (l Livestock) HerdNameLabel() string {
	if l == LivestockSheep {
		return "Flock name"
	}
	return "Herd name"
}

// NumericID is a CRN or SBI. On the wire it may be a JSON number or a numeric string.
type NumericID int64

func (n *NumericID) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*n = 0
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*n = 0
			return nil
		}
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return &json.UnmarshalTypeError{Value: "non-numeric " + raw, Type: reflect.TypeOf(*n)}
	}
	*n = NumericID(v)
	return nil
}

// String renders the id as digits, or "" when unset.
func (n NumericID) String() string {
	if n == 0 {
		return ""
	}
	return strconv.FormatInt(int64(n), 10)
}

// AgreementCreated is raised once an agreement document has been generated.
type AgreementCreated struct {
	CRN                NumericID `json:"crn" validate:"omitempty,min=1050000000,max=9999999999"`
	SBI                NumericID `json:"sbi" validate:"required,min=105000000,max=999999999"`
	UserType           string    `json:"userType" validate:"required"`
	DocumentLocation   string    `json:"documentLocation" validate:"required"`
	AgreementReference string    `json:"agreementReference" alias:"applicationReference" validate:"required,len=14"`
}

func (AgreementCreated) Kind() EventKind { return KindAgreementCreated }
func (AgreementCreated) isEvent()        {}

// StatusUpdate is raised whenever a claim changes workflow status.
type StatusUpdate struct {
	CRN                NumericID   `json:"crn,omitempty" validate:"omitempty,min=1050000000,max=9999999999"`
	SBI                NumericID   `json:"sbi" validate:"required,min=105000000,max=999999999"`
	AgreementReference string      `json:"agreementReference" validate:"required,len=14"`
	ClaimReference     string      `json:"claimReference" validate:"required,len=14"`
	ClaimStatus        ClaimStatus `json:"claimStatus" validate:"required,claim_status"`
	ClaimType          ClaimType   `json:"claimType" validate:"required"`
	TypeOfLivestock    Livestock   `json:"typeOfLivestock" validate:"required"`
	DateTime           string      `json:"dateTime" validate:"required,iso8601"`
	ReviewTestResults  string      `json:"reviewTestResults,omitempty"`
	PIHuntRecommended  string      `json:"piHuntRecommended,omitempty"`
	PIHuntAllAnimals   string      `json:"piHuntAllAnimals,omitempty"`
	HerdName           string      `json:"herdName" validate:"required"`
	ClaimAmount        *float64    `json:"claimAmount,omitempty"`
}

func (StatusUpdate) Kind() EventKind { return KindStatusUpdate }
func (StatusUpdate) isEvent()        {}

// ReminderRequest asks for a reminder to be sent to the listed addresses.
type ReminderRequest struct {
	ReminderType       string    `json:"reminderType" validate:"required"`
	AgreementReference string    `json:"agreementReference" validate:"required,len=14"`
	CRN                NumericID `json:"crn" validate:"omitempty,min=1050000000,max=9999999999"`
	SBI                NumericID `json:"sbi" validate:"required,min=105000000,max=999999999"`
	EmailAddresses     []string  `json:"emailAddresses" validate:"dive,email"`
}

func (ReminderRequest) Kind() EventKind { return KindReminderRequest }
func (ReminderRequest) isEvent()        {}

// ContactDetails is the latest contact information held for an agreement.
type ContactDetails struct {
	OrgName  string `json:"name"`
	OrgEmail string `json:"orgEmail"`
	Email    string `json:"email"`
}
