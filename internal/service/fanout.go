package service

import (
	"context"
	"fmt"

	"github.com/strogmv/claimcomms/internal/domain"
	"github.com/strogmv/claimcomms/internal/port"
)

// Recipient is one address a notification goes to.
type Recipient struct {
	Address string
	Kind    domain.AddressKind
}

// FanOut orders recipients CC, organisation, individual. CC is always kept
// when configured; the individual address is dropped when it equals the
// organisation address.
func FanOut(cc string, contact domain.ContactDetails) []Recipient {
	out := make([]Recipient, 0, 3)
	if cc != "" {
		out = append(out, Recipient{Address: cc, Kind: domain.AddressCC})
	}
	if contact.OrgEmail != "" {
		out = append(out, Recipient{Address: contact.OrgEmail, Kind: domain.AddressOrgEmail})
	}
	if contact.Email != "" && contact.Email != contact.OrgEmail {
		out = append(out, Recipient{Address: contact.Email, Kind: domain.AddressEmail})
	}
	return out
}

// sendAll sends to each recipient in order and stops at the first failure.
func sendAll(ctx context.Context, d port.NotificationDispatcher, recipients []Recipient, build func(Recipient) domain.NotificationRequest, sent func(Recipient, domain.NotificationRequest)) error {
	for _, r := range recipients {
		req := build(r)
		if err := d.Send(ctx, req); err != nil {
			return fmt.Errorf("%s recipient: %w", r.Kind, err)
		}
		if sent != nil {
			sent(r, req)
		}
	}
	return nil
}
