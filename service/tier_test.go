package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"btl-quote/domain"
)

func testQuestions() domain.QuestionSet {
	return domain.QuestionSet{
		PropertyQuestions: []domain.Question{
			{Key: "hmo", Options: []domain.Option{{Label: "No", Tier: 1}, {Label: "Small", Tier: 2}, {Label: "Large", Tier: 3}}},
			{Key: "flatAboveComm", Options: []domain.Option{{Label: "No", Tier: 1}, {Label: "Yes", Tier: 2}}},
		},
		ApplicantQuestions: []domain.Question{
			{Key: "adverse", Options: []domain.Option{{Label: "No", Tier: 1}, {Label: "Yes", Tier: 1}}},
			{
				Key:       "bankruptcy",
				DependsOn: &domain.Condition{Key: "adverse", Answer: "Yes"},
				Options:   []domain.Option{{Label: "Never", Tier: 1}, {Label: "Recent", Tier: 3}},
			},
		},
	}
}

func TestClassifyTier(t *testing.T) {
	set := testQuestions()

	tests := []struct {
		name    string
		answers domain.Criteria
		want    domain.Tier
	}{
		{"defaults", set.Defaults(), 1},
		{"empty answers", domain.Criteria{}, 1},
		{"unknown answer", domain.Criteria{"hmo": "Maybe"}, 1},
		{"single tier 2", domain.Criteria{"flatAboveComm": "Yes"}, 2},
		{"max wins", domain.Criteria{"hmo": "Large", "flatAboveComm": "Yes"}, 3},
		{"unmet condition skipped", domain.Criteria{"adverse": "No", "bankruptcy": "Recent"}, 1},
		{"met condition counted", domain.Criteria{"adverse": "Yes", "bankruptcy": "Recent"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyTier(tt.answers, set))
		})
	}
}

func TestClassifyTier_Monotonic(t *testing.T) {
	set := testQuestions()
	answers := domain.Criteria{"hmo": "Small"}
	before := ClassifyTier(answers, set)

	answers["flatAboveComm"] = "Yes"
	assert.GreaterOrEqual(t, ClassifyTier(answers, set), before)

	answers["hmo"] = "Large"
	assert.Equal(t, domain.Tier(3), ClassifyTier(answers, set))
}

func TestCoreEligible(t *testing.T) {
	core := &domain.QuestionSet{
		PropertyQuestions: []domain.Question{
			{Key: "hmo", Options: []domain.Option{{Label: "No", Tier: 1}}},
		},
	}

	assert.True(t, CoreEligible(domain.Criteria{"hmo": "No"}, core))
	assert.False(t, CoreEligible(domain.Criteria{"hmo": "Small"}, core))
	assert.False(t, CoreEligible(domain.Criteria{}, core))
	assert.False(t, CoreEligible(domain.Criteria{"hmo": "No"}, nil))
}
