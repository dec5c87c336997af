package service

import (
	"strings"

	"github.com/strogmv/claimcomms/internal/domain"
)

// Evidence bullet sets.
var (
	reviewCattleBullets = []string{
		"the test results from your vet showing the number of animals sampled",
		"the laboratory reference number for the samples",
		"the date your vet visited the farm",
	}
	reviewPigBullets = []string{
		"the number of oral fluid samples taken",
		"the PRRS test results from your vet",
		"the laboratory reference number for the samples",
	}
	reviewSheepBullets = []string{
		"the number of sheep sampled",
		"the worming treatment efficacy test results",
		"the date your vet visited the farm",
	}
	followUpCattlePositiveBullets = []string{
		"the BVD test results from your vet",
		"the laboratory reference number for the samples",
		"the biosecurity assessment completed by your vet",
	}
	followUpCattleNegativePIHuntBullets = []string{
		"the PI hunt test results covering all animals in the herd",
		"the laboratory reference number for the samples",
		"the biosecurity assessment completed by your vet",
	}
	followUpCattleNegativeBullets = []string{
		"the BVD test results from your vet",
		"the biosecurity assessment completed by your vet",
	}
	followUpPigBullets = []string{
		"the PRRS or disease status test results",
		"the number of samples tested",
		"the biosecurity assessment completed by your vet",
	}
	followUpSheepBullets = []string{
		"the sheep health package chosen with your vet",
		"the disease status test results",
		"the biosecurity assessment completed by your vet",
	}
)

// Values are compared exactly as sent by the claim service.
const (
	testResultPositive = "positive"
	answerYes          = "yes"
)

// EvidenceBullets selects the evidence checklist shown to the farmer.
func EvidenceBullets(e domain.StatusUpdate) []string {
	if e.ClaimType == domain.ClaimTypeReview {
		switch {
		case e.TypeOfLivestock.IsCattle():
			return reviewCattleBullets
		case e.TypeOfLivestock == domain.LivestockPigs:
			return reviewPigBullets
		case e.TypeOfLivestock == domain.LivestockSheep:
			return reviewSheepBullets
		default:
			return nil
		}
	}

	switch {
	case e.TypeOfLivestock.IsCattle():
		if e.ReviewTestResults == testResultPositive {
			return followUpCattlePositiveBullets
		}
		if e.PIHuntRecommended == answerYes && e.PIHuntAllAnimals == answerYes {
			return followUpCattleNegativePIHuntBullets
		}
		return followUpCattleNegativeBullets
	case e.TypeOfLivestock == domain.LivestockPigs:
		return followUpPigBullets
	case e.TypeOfLivestock == domain.LivestockSheep:
		return followUpSheepBullets
	default:
		return nil
	}
}

// FormatBullets renders items as "* item" lines.
func FormatBullets(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "* " + item
	}
	return strings.Join(lines, "\n")
}
