package domain

import "strconv"

// Criteria maps a criterion key ("hmo", "adverse", ...) to the selected option label.
type Criteria map[string]string

type Option struct {
	Label string `json:"label" yaml:"label"`
	Tier  int    `json:"tier" yaml:"tier"`
}

// Condition restricts a question to cases where another question has a given answer.
type Condition struct {
	Key    string `json:"key" yaml:"key"`
	Answer string `json:"answer" yaml:"answer"`
}

type Question struct {
	Key       string     `json:"key" yaml:"key"`
	Label     string     `json:"label" yaml:"label"`
	Options   []Option   `json:"options" yaml:"options"`
	DependsOn *Condition `json:"dependsOn,omitempty" yaml:"dependsOn,omitempty"`
}

// Find returns the option whose label equals answer.
func (q Question) Find(answer string) (Option, bool) {
	for _, o := range q.Options {
		if o.Label == answer {
			return o, true
		}
	}
	return Option{}, false
}

type QuestionSet struct {
	PropertyQuestions  []Question `json:"propertyQuestions" yaml:"propertyQuestions"`
	ApplicantQuestions []Question `json:"applicantQuestions" yaml:"applicantQuestions"`
}

// All returns property questions followed by applicant questions.
func (s QuestionSet) All() []Question {
	all := make([]Question, 0, len(s.PropertyQuestions)+len(s.ApplicantQuestions))
	all = append(all, s.PropertyQuestions...)
	return append(all, s.ApplicantQuestions...)
}

// Defaults returns the first option of every question, the initial answer set.
func (s QuestionSet) Defaults() Criteria {
	c := Criteria{}
	for _, q := range s.All() {
		if len(q.Options) > 0 {
			c[q.Key] = q.Options[0].Label
		}
	}
	return c
}

// Tier is the ordinal risk classification, 1 being the lowest risk.
type Tier int

// Label is the key rate tables are indexed by.
func (t Tier) Label() string {
	return "Tier " + strconv.Itoa(int(t))
}
