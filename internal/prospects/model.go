package prospects

import (
	"strings"
	"time"
)

// Prospect is a lead or client tracked through the coaching funnel.
type Prospect struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Phone          string     `json:"phone"`
	Email          string     `json:"email"`
	Relationship   string     `json:"relationship"`
	Source         string     `json:"source"`
	Status         Status     `json:"status"`
	Priority       Priority   `json:"priority"`
	CreatedAt      Date       `json:"createdAt"`
	LastContact    Date       `json:"lastContact"`
	NextAction     Date       `json:"nextAction"`
	NextActionType ActionType `json:"nextActionType"`
	Notes          string     `json:"notes"`

	// Milestones are stamped once, the first time the matching status is reached.
	HAScheduled     Date `json:"haScheduled"`
	HACompleted     Date `json:"haCompleted"`
	ClientStartDate Date `json:"clientStartDate"`
}

// Draft carries the caller-supplied fields of a new prospect.
type Draft struct {
	Name           string     `json:"name"`
	Phone          string     `json:"phone"`
	Email          string     `json:"email"`
	Relationship   string     `json:"relationship"`
	Source         string     `json:"source"`
	Status         Status     `json:"status"`
	Priority       Priority   `json:"priority"`
	NextAction     Date       `json:"nextAction"`
	NextActionType ActionType `json:"nextActionType"`
	Notes          string     `json:"notes"`
}

// Validate normalizes defaults and checks the closed enumerations.
func (d *Draft) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return ErrInvalidName
	}
	if d.Status == "" {
		d.Status = StatusCold
	}
	if d.Priority == "" {
		d.Priority = PriorityMedium
	}
	return validateEnums(d.Status, d.Priority, d.NextActionType)
}

// Validate checks a full record supplied to Update.
func (p *Prospect) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrInvalidName
	}
	return validateEnums(p.Status, p.Priority, p.NextActionType)
}

func validateEnums(s Status, p Priority, a ActionType) error {
	if !s.Valid() {
		return ErrInvalidStatus
	}
	if !p.Valid() {
		return ErrInvalidPriority
	}
	if !a.Valid() {
		return ErrInvalidActionType
	}
	return nil
}

// milestone returns a pointer to the field backing m.
func (p *Prospect) milestone(m Milestone) *Date {
	switch m {
	case MilestoneHAScheduled:
		return &p.HAScheduled
	case MilestoneHACompleted:
		return &p.HACompleted
	case MilestoneClientStartDate:
		return &p.ClientStartDate
	default:
		return nil
	}
}

// EventStatusAdvanced is the timeline type recorded by AdvanceStatus.
const EventStatusAdvanced = "status_advanced"

// Event is one entry in a prospect's timeline.
type Event struct {
	ID         int64     `json:"id"`
	ProspectID string    `json:"prospectId"`
	Type       string    `json:"type"`
	Date       time.Time `json:"date"`
	Note       string    `json:"note"`
}

// IsTouch reports whether e counts toward the daily contact goal.
func (e Event) IsTouch() bool {
	return ContactType(e.Type).Valid()
}

// ContactRequest is the payload of LogContact.
type ContactRequest struct {
	Type           ContactType `json:"type"`
	Note           string      `json:"note"`
	NextAction     Date        `json:"nextAction"`
	NextActionType ActionType  `json:"nextActionType"`
}
