package domain

import "strings"

// reminderSubTypes lists the recognised sub-types per parent reminder type.
var reminderSubTypes = map[string][]string{
	"notClaimed": {"oneMonth", "threeMonths", "sixMonths"},
}

// ParseReminderType splits "<parent>_<subType>" and reports whether the
// combination is recognised.
func ParseReminderType(reminderType string) (parent, subType string, ok bool) {
	parent, subType, found := strings.Cut(reminderType, "_")
	if !found || parent == "" || subType == "" {
		return "", "", false
	}
	for _, s := range reminderSubTypes[parent] {
		if s == subType {
			return parent, subType, true
		}
	}
	return "", "", false
}
