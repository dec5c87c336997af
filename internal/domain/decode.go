package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ParseEvent decodes payload into the event type for kind and validates it.
// Fields are decoded one at a time, so a wrongly typed field is reported
// next to every other violation instead of hiding them.
func ParseEvent(kind EventKind, payload []byte) (Event, error) {
	switch kind {
	case KindAgreementCreated:
		return parse[AgreementCreated](payload)
	case KindStatusUpdate:
		return parse[StatusUpdate](payload)
	case KindReminderRequest:
		return parse[ReminderRequest](payload)
	default:
		return nil, fmt.Errorf("parse event: unknown kind %d", kind)
	}
}

func parse[T Event](payload []byte) (Event, error) {
	var e T
	typeErrs, err := decodeFields(payload, &e)
	if err != nil {
		return nil, err
	}
	if err := mergeViolations(typeErrs, Validate(e)); err != nil {
		return nil, err
	}
	return e, nil
}

// decodeFields fills the exported fields of dst from a JSON object. A field
// listed under an alias tag is read from the alias when its own key is blank.
func decodeFields(payload []byte, dst any) ([]Violation, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, ViolationsFrom(err)
	}

	v := reflect.ValueOf(dst).Elem()
	t := v.Type()
	var out []Violation
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := jsonFieldName(f)
		if name == "" || !f.IsExported() {
			continue
		}
		raw, ok := lookupField(fields, name)
		if alias := f.Tag.Get("alias"); alias != "" && (!ok || isBlank(raw)) {
			if aliased, found := lookupField(fields, alias); found {
				raw, ok = aliased, true
			}
		}
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, v.Field(i).Addr().Interface()); err != nil {
			out = append(out, typeViolation(name, err))
		}
	}
	return out, nil
}

// lookupField matches keys the way encoding/json does: exact first, then case-insensitive.
func lookupField(fields map[string]json.RawMessage, name string) (json.RawMessage, bool) {
	if raw, ok := fields[name]; ok {
		return raw, true
	}
	for k, raw := range fields {
		if strings.EqualFold(k, name) {
			return raw, true
		}
	}
	return nil, false
}

func isBlank(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte(`""`))
}

func typeViolation(field string, err error) Violation {
	msg := field + " has the wrong type"
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		msg = fmt.Sprintf("%s has the wrong type (%s)", field, typeErr.Value)
	}
	return Violation{Field: field, Rule: "type", Message: msg}
}

// mergeViolations puts type errors first and drops rule violations on fields
// that already failed to decode.
func mergeViolations(typeErrs []Violation, err error) error {
	if len(typeErrs) == 0 {
		return err
	}
	var verr *ValidationError
	if err != nil && !errors.As(err, &verr) {
		return err
	}
	merged := &ValidationError{Violations: typeErrs}
	if verr == nil {
		return merged
	}
	for _, v := range verr.Violations {
		if !merged.Has(rootField(v.Field)) {
			merged.Violations = append(merged.Violations, v)
		}
	}
	return merged
}

// rootField strips element and nested paths: "emailAddresses[1]" -> "emailAddresses".
func rootField(field string) string {
	if i := strings.IndexAny(field, "[."); i >= 0 {
		return field[:i]
	}
	return field
}
