package types

// PlanPriority is the closed set of study-session priorities. Generator
// output carrying anything else gets coerced before persisting.
type PlanPriority string

const (
	PlanPriorityHigh   PlanPriority = "high"
	PlanPriorityMedium PlanPriority = "medium"
	PlanPriorityLow    PlanPriority = "low"
)

func (p PlanPriority) Valid() bool {
	switch p {
	case PlanPriorityHigh, PlanPriorityMedium, PlanPriorityLow:
		return true
	}
	return false
}

// StudySession is one scheduled study activity inside a plan. Not a table;
// it lives inside StudyPlan.Content. IDs are unique within a plan, dates are
// ISO calendar dates and need not be sorted; display layers group/sort.
type StudySession struct {
	ID          int          `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Date        string       `json:"date"`
	Duration    int          `json:"duration"`
	Priority    PlanPriority `json:"priority"`
	Completed   bool         `json:"completed"`
}

type PlanContent struct {
	Sessions         []StudySession `json:"sessions"`
	RecommendedLinks []string       `json:"recommendedLinks"`
	StudyStrategies  []string       `json:"studyStrategies"`
}
