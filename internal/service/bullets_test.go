package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/strogmv/claimcomms/internal/domain"
)

func TestEvidenceBullets(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		claimType domain.ClaimType
		livestock domain.Livestock
		result    string
		piHunt    string
		allAnimal string
		want      []string
	}{
		{"review beef", domain.ClaimTypeReview, domain.LivestockBeef, "", "", "", reviewCattleBullets},
		{"review dairy", domain.ClaimTypeReview, domain.LivestockDairy, "positive", "yes", "yes", reviewCattleBullets},
		{"review pigs", domain.ClaimTypeReview, domain.LivestockPigs, "", "", "", reviewPigBullets},
		{"review sheep", domain.ClaimTypeReview, domain.LivestockSheep, "", "", "", reviewSheepBullets},
		{"review unknown", domain.ClaimTypeReview, "goats", "", "", "", nil},
		{"follow-up positive ignores pi hunt", domain.ClaimTypeFollowUp, domain.LivestockBeef, "positive", "no", "no", followUpCattlePositiveBullets},
		{"follow-up positive with pi hunt", domain.ClaimTypeFollowUp, domain.LivestockBeef, "positive", "yes", "yes", followUpCattlePositiveBullets},
		{"follow-up negative pi hunt all animals", domain.ClaimTypeFollowUp, domain.LivestockBeef, "negative", "yes", "yes", followUpCattleNegativePIHuntBullets},
		{"follow-up negative pi hunt some animals", domain.ClaimTypeFollowUp, domain.LivestockDairy, "negative", "yes", "no", followUpCattleNegativeBullets},
		{"follow-up negative no pi hunt", domain.ClaimTypeFollowUp, domain.LivestockDairy, "negative", "no", "", followUpCattleNegativeBullets},
		{"follow-up capitalised result is not positive", domain.ClaimTypeFollowUp, domain.LivestockBeef, "Positive", "no", "", followUpCattleNegativeBullets},
		{"follow-up capitalised answers are not yes", domain.ClaimTypeFollowUp, domain.LivestockBeef, "negative", "Yes", "YES", followUpCattleNegativeBullets},
		{"follow-up padded answer is not yes", domain.ClaimTypeFollowUp, domain.LivestockDairy, "negative", "yes ", "yes", followUpCattleNegativeBullets},
		{"follow-up pigs", domain.ClaimTypeFollowUp, domain.LivestockPigs, "positive", "", "", followUpPigBullets},
		{"follow-up sheep", domain.ClaimTypeFollowUp, domain.LivestockSheep, "", "", "", followUpSheepBullets},
		{"follow-up unknown", domain.ClaimTypeFollowUp, "", "", "", "", nil},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := domain.StatusUpdate{
				ClaimType:         tt.claimType,
				TypeOfLivestock:   tt.livestock,
				ReviewTestResults: tt.result,
				PIHuntRecommended: tt.piHunt,
				PIHuntAllAnimals:  tt.allAnimal,
			}
			assert.Equal(t, tt.want, EvidenceBullets(e))
		})
	}
}

func TestFormatBullets(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "* one\n* two", FormatBullets([]string{"one", "two"}))
	assert.Equal(t, "", FormatBullets(nil))
}

func TestTemplateSelection(t *testing.T) {
	t.Parallel()
	tpl := Templates{
		NewReviewClaim:        "review",
		NewFollowUpClaim:      "follow-up",
		EvidenceReview:        "evidence-review",
		EvidenceFollowUp:      "evidence-follow-up",
		ReminderNotClaimed:    "not-claimed",
		NewUserAgreement:      "new-user",
		ExistingUserAgreement: "existing-user",
	}
	assert.Equal(t, "follow-up", tpl.ClaimTemplate(domain.ClaimTypeFollowUp))
	assert.Equal(t, "review", tpl.ClaimTemplate(domain.ClaimTypeReview))
	assert.Equal(t, "evidence-review", tpl.EvidenceTemplate(domain.ClaimTypeReview))
	assert.Equal(t, "evidence-follow-up", tpl.EvidenceTemplate(domain.ClaimTypeFollowUp))
	assert.Equal(t, "new-user", tpl.AgreementTemplate("newUser"))
	assert.Equal(t, "existing-user", tpl.AgreementTemplate("existingUser"))
	for _, sub := range []string{"oneMonth", "threeMonths", "sixMonths"} {
		assert.Equal(t, "not-claimed", tpl.ReminderTemplate("notClaimed", sub))
	}
}

func TestClaimParamsUsesFlockLabelForSheep(t *testing.T) {
	t.Parallel()
	e := statusUpdate(domain.StatusOnHold)
	e.TypeOfLivestock = domain.LivestockSheep

	params := ClaimParams(e)
	assert.Equal(t, "Flock name", params["herdNameLabel"])
	assert.Equal(t, "Sheep", params["species"])
	assert.Equal(t, 522.0, params["amount"])
	assert.Equal(t, "106705779", params["sbi"])
	assert.Equal(t, "IAHW-0AD3-3322", params["applicationReference"])
}
