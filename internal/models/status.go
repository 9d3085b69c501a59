package models

// LeadStatus is the pipeline stage of a lead.
//
// The store accepts any status change. CanTransitionTo describes the
// nominal pipeline and is only enforced by callers that opt in.
type LeadStatus string

const (
	StatusNew       LeadStatus = "new"
	StatusContacted LeadStatus = "contacted"
	StatusScheduled LeadStatus = "scheduled"
	StatusClosed    LeadStatus = "closed"
	StatusLost      LeadStatus = "lost"
)

// LeadStatuses lists every status in pipeline order.
var LeadStatuses = []LeadStatus{StatusNew, StatusContacted, StatusScheduled, StatusClosed, StatusLost}

// Valid reports whether s is a known status.
func (s LeadStatus) Valid() bool {
	return s.rank() >= 0
}

// Terminal reports whether s ends the pipeline.
func (s LeadStatus) Terminal() bool {
	return s == StatusClosed || s == StatusLost
}

func (s LeadStatus) rank() int {
	switch s {
	case StatusNew:
		return 0
	case StatusContacted:
		return 1
	case StatusScheduled:
		return 2
	case StatusClosed, StatusLost:
		return 3
	}
	return -1
}

// CanTransitionTo reports whether next follows s in the pipeline
// new -> contacted -> scheduled -> {closed|lost}. Stages may be skipped
// going forward, rewriting the same status is allowed, and terminal
// statuses accept nothing else.
func (s LeadStatus) CanTransitionTo(next LeadStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	if s.Terminal() {
		return false
	}
	return next.rank() > s.rank()
}
