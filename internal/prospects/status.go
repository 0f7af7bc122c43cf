package prospects

// Status is a stage in the coaching funnel.
type Status string

const (
	StatusCold          Status = "cold"
	StatusWarm          Status = "warm"
	StatusHAScheduled   Status = "ha-scheduled"
	StatusHACompleted   Status = "ha-completed"
	StatusClient        Status = "client"
	StatusCoachProspect Status = "coach-prospect"
	StatusCoach         Status = "coach"
	StatusNotInterested Status = "not-interested"
)

// advanceSequence is the forward path walked by AdvanceStatus. StatusNotInterested
// sits outside it and can only be reached by editing a record.
var advanceSequence = []Status{
	StatusCold,
	StatusWarm,
	StatusHAScheduled,
	StatusHACompleted,
	StatusClient,
	StatusCoachProspect,
	StatusCoach,
}

// AllStatuses lists every status in display order.
var AllStatuses = []Status{
	StatusCold,
	StatusWarm,
	StatusHAScheduled,
	StatusHACompleted,
	StatusClient,
	StatusCoachProspect,
	StatusCoach,
	StatusNotInterested,
}

// Valid reports whether s is a member of the closed status set.
func (s Status) Valid() bool {
	switch s {
	case StatusCold, StatusWarm, StatusHAScheduled, StatusHACompleted,
		StatusClient, StatusCoachProspect, StatusCoach, StatusNotInterested:
		return true
	}
	return false
}

// Position returns the index of s in the advance sequence, or -1 when s is not on it.
func (s Status) Position() int {
	for i, st := range advanceSequence {
		if st == s {
			return i
		}
	}
	return -1
}

// Next returns the status one step further along the advance sequence.
// ok is false for coach (end of the sequence) and not-interested (off the sequence).
func (s Status) Next() (next Status, ok bool) {
	pos := s.Position()
	if pos < 0 || pos == len(advanceSequence)-1 {
		return s, false
	}
	return advanceSequence[pos+1], true
}

// Terminal reports whether no forward transition exists from s.
func (s Status) Terminal() bool {
	_, ok := s.Next()
	return !ok
}

// Milestone names the write-once date field stamped when a prospect enters s.
type Milestone string

const (
	MilestoneNone            Milestone = ""
	MilestoneHAScheduled     Milestone = "haScheduled"
	MilestoneHACompleted     Milestone = "haCompleted"
	MilestoneClientStartDate Milestone = "clientStartDate"
)

// Milestone returns the milestone stamped on entering s, if any.
func (s Status) Milestone() Milestone {
	switch s {
	case StatusHAScheduled:
		return MilestoneHAScheduled
	case StatusHACompleted:
		return MilestoneHACompleted
	case StatusClient:
		return MilestoneClientStartDate
	default:
		return MilestoneNone
	}
}

// Priority ranks how urgently a prospect should be worked.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether p is one of high, medium or low.
func (p Priority) Valid() bool {
	return p.Rank() >= 0
}

// Rank orders priorities high=0 < medium=1 < low=2. Unknown values rank -1.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return -1
	}
}

// ContactType classifies a logged touch with a prospect.
type ContactType string

const (
	ContactCall      ContactType = "call"
	ContactText      ContactType = "text"
	ContactEmail     ContactType = "email"
	ContactDM        ContactType = "dm"
	ContactVoicemail ContactType = "voicemail"
	ContactComment   ContactType = "comment"
	ContactInPerson  ContactType = "in-person"
)

// ContactTypes lists every contact type counted as a daily touch.
var ContactTypes = []ContactType{
	ContactCall,
	ContactText,
	ContactEmail,
	ContactDM,
	ContactVoicemail,
	ContactComment,
	ContactInPerson,
}

// Valid reports whether c is a known contact type.
func (c ContactType) Valid() bool {
	for _, ct := range ContactTypes {
		if ct == c {
			return true
		}
	}
	return false
}

// ActionType describes the category of a prospect's next scheduled action.
type ActionType string

const (
	ActionNone       ActionType = ""
	ActionFollowUp   ActionType = "follow-up"
	ActionSendInfo   ActionType = "send-info"
	ActionScheduleHA ActionType = "schedule-ha"
	ActionCheckIn    ActionType = "check-in"
	ActionClose      ActionType = "close"
	ActionOnboard    ActionType = "onboard"
)

// Valid reports whether a is empty or a known action type.
func (a ActionType) Valid() bool {
	switch a {
	case ActionNone, ActionFollowUp, ActionSendInfo, ActionScheduleHA,
		ActionCheckIn, ActionClose, ActionOnboard:
		return true
	}
	return false
}
