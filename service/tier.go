package service

import "btl-quote/domain"

// ClassifyTier returns the highest tier among the options selected in answers.
// Unanswered or unknown answers count as tier 1. Questions with an unmet
// DependsOn condition are skipped.
func ClassifyTier(answers domain.Criteria, set domain.QuestionSet) domain.Tier {
	tier := 1
	for _, q := range set.All() {
		if q.DependsOn != nil && answers[q.DependsOn.Key] != q.DependsOn.Answer {
			continue
		}
		if o, ok := q.Find(answers[q.Key]); ok && o.Tier > tier {
			tier = o.Tier
		}
	}
	return domain.Tier(tier)
}

// CoreEligible reports whether every answer constrained by the core question
// set is one of the labels it allows. A nil core set is never eligible.
func CoreEligible(answers domain.Criteria, core *domain.QuestionSet) bool {
	if core == nil {
		return false
	}
	for _, q := range core.All() {
		if _, ok := q.Find(answers[q.Key]); !ok {
			return false
		}
	}
	return true
}
