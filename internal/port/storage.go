package port

import (
	"context"

	"github.com/strogmv/claimcomms/internal/domain"
)

// BlobStore fetches stored documents.
type BlobStore interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// ContactResolver looks up the latest contact details for an agreement.
type ContactResolver interface {
	LatestContactDetails(ctx context.Context, agreementRef string) (domain.ContactDetails, error)
}
