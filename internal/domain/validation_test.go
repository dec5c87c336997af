package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericIDUnmarshal(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		in      string
		want    NumericID
		wantErr bool
	}{
		{"number", `106705779`, 106705779, false},
		{"string", `"106705779"`, 106705779, false},
		{"padded string", `" 106705779 "`, 106705779, false},
		{"null", `null`, 0, false},
		{"empty string", `""`, 0, false},
		{"letters", `"abc"`, 0, true},
		{"fraction", `1.5`, 0, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var n NumericID
			err := json.Unmarshal([]byte(tt.in), &n)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestNumericIDString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "", NumericID(0).String())
	assert.Equal(t, "1100014934", NumericID(1100014934).String())
}

func validStatusUpdate() StatusUpdate {
	return StatusUpdate{
		SBI:                106705779,
		AgreementReference: "IAHW-0AD3-3322",
		ClaimReference:     "REBC-A89F-7776",
		ClaimStatus:        StatusInCheck,
		ClaimType:          ClaimTypeReview,
		TypeOfLivestock:    LivestockPigs,
		DateTime:           "2026-04-15T10:00:00Z",
		HerdName:           "Unnamed herd",
	}
}

func TestValidateStatusUpdate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(*StatusUpdate)
		field  string
	}{
		{"valid", func(*StatusUpdate) {}, ""},
		{"date only", func(e *StatusUpdate) { e.DateTime = "2026-04-15" }, ""},
		{"local time", func(e *StatusUpdate) { e.DateTime = "2026-04-15T10:00:00.123" }, ""},
		{"bad date", func(e *StatusUpdate) { e.DateTime = "15/04/2026" }, "dateTime"},
		{"unknown status", func(e *StatusUpdate) { e.ClaimStatus = "LOST" }, "claimStatus"},
		{"crn too small", func(e *StatusUpdate) { e.CRN = 42 }, "crn"},
		{"sbi missing", func(e *StatusUpdate) { e.SBI = 0 }, "sbi"},
		{"sbi too large", func(e *StatusUpdate) { e.SBI = 1000000000 }, "sbi"},
		{"short agreement", func(e *StatusUpdate) { e.AgreementReference = "IAHW" }, "agreementReference"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := validStatusUpdate()
			tt.mutate(&e)
			err := Validate(e)
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.True(t, verr.Has(tt.field), verr.Error())
		})
	}
}

func TestValidateReminderRequest(t *testing.T) {
	t.Parallel()
	e := ReminderRequest{
		ReminderType:       "notClaimed_oneMonth",
		AgreementReference: "IAHW-0AD3-3322",
		SBI:                106705779,
		EmailAddresses:     []string{"ok@example.com", "not-an-address"},
	}
	var verr *ValidationError
	require.ErrorAs(t, Validate(e), &verr)
	require.Len(t, verr.Violations, 1)
	assert.Equal(t, "emailAddresses[1]", verr.Violations[0].Field)
	assert.Equal(t, "email", verr.Violations[0].Rule)

	e.EmailAddresses = nil
	assert.NoError(t, Validate(e))
}

func TestValidateNil(t *testing.T) {
	t.Parallel()
	var verr *ValidationError
	require.ErrorAs(t, Validate(nil), &verr)
	assert.True(t, verr.Has("event"))
}

func TestViolationsFromDecodeErrors(t *testing.T) {
	t.Parallel()

	var e StatusUpdate
	err := ViolationsFrom(json.Unmarshal([]byte(`{"sbi": true}`), &e))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "type", verr.Violations[0].Rule)

	err = ViolationsFrom(json.Unmarshal([]byte(`{"sbi":`), &e))
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "payload", verr.Violations[0].Field)

	assert.NoError(t, ViolationsFrom(nil))
}

func TestParseEventAcceptsApplicationReference(t *testing.T) {
	t.Parallel()
	ev, err := ParseEvent(KindAgreementCreated, []byte(`{"applicationReference":"IAHW-0AD3-3322","agreementReference":"","sbi":"106705779","userType":"newUser","documentLocation":"x.pdf"}`))
	require.NoError(t, err)
	a, ok := ev.(AgreementCreated)
	require.True(t, ok)
	assert.Equal(t, "IAHW-0AD3-3322", a.AgreementReference)
	assert.Equal(t, NumericID(106705779), a.SBI)
}

func TestParseEventReportsTypeAndRuleViolationsTogether(t *testing.T) {
	t.Parallel()
	payload := []byte(`{
		"sbi": "not-a-number",
		"agreementReference": "IAHW-0AD3-3322",
		"claimReference": 12345,
		"claimStatus": "IN_CHECK",
		"claimType": "REVIEW",
		"typeOfLivestock": "beef",
		"dateTime": "2026-04-15T10:00:00Z"
	}`)

	_, err := ParseEvent(KindStatusUpdate, payload)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	rules := map[string]string{}
	for _, v := range verr.Violations {
		rules[v.Field] = v.Rule
	}
	assert.Equal(t, map[string]string{
		"sbi":            "type",
		"claimReference": "type",
		"herdName":       "required",
	}, rules)
}

func TestParseEventElementTypeErrorSuppressesRuleViolations(t *testing.T) {
	t.Parallel()
	_, err := ParseEvent(KindReminderRequest, []byte(`{"reminderType":"notClaimed_oneMonth","agreementReference":"IAHW-0AD3-3322","sbi":106705779,"emailAddresses":["a@example.com", 7]}`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Violations, 1)
	assert.Equal(t, "emailAddresses", verr.Violations[0].Field)
	assert.Equal(t, "type", verr.Violations[0].Rule)
}

func TestParseEventRejectsNonObjectPayload(t *testing.T) {
	t.Parallel()
	for _, payload := range []string{`[]`, `"text"`, `{"sbi":`} {
		_, err := ParseEvent(KindStatusUpdate, []byte(payload))
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, payload)
		assert.True(t, verr.Has("payload"), payload)
	}
}

func TestIsFatal(t *testing.T) {
	t.Parallel()
	assert.True(t, IsFatal(&InvalidEventError{EventType: "x", Err: &ValidationError{}}))
	assert.True(t, IsFatal(&UnsupportedEventTypeError{EventType: "x"}))
	assert.False(t, IsFatal(&ContactLookupError{AgreementReference: "x"}))
	assert.False(t, IsFatal(ErrKeyBusy))
}
