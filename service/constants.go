package service

import "time"

const (
	DeferredStep = 0.0001 // 0.01% granularity of the deferred-rate search

	stressFloor      = 1e-6 // lower bound of the stress rate after deferral
	denominatorFloor = 1e-7 // net-to-gross back-solve is invalid below this
	loanEpsilon      = 1e-6 // tolerance on min/max loan comparisons

	DefaultMaxLTV      = 0.75 // used when a category has no default LTV rule
	DefaultTermMonths  = 24
	DefaultSpecificLTV = 0.75

	MinPhoneDigits = 10
	MaxPhoneDigits = 15

	DefaultWebhookTimeout = 10 * time.Second
)
