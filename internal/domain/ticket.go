package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "New"
	TicketStatusAssigned   TicketStatus = "Assigned"
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "InProgress"
	TicketStatusResolved   TicketStatus = "Resolved"
	TicketStatusClosed     TicketStatus = "Closed"
	TicketStatusOnHold     TicketStatus = "OnHold"
	TicketStatusReopened   TicketStatus = "Reopened"
)

// statusCodes mirrors the numeric codes the ticketing API uses on the wire.
var statusCodes = []TicketStatus{
	TicketStatusNew,
	TicketStatusAssigned,
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusResolved,
	TicketStatusClosed,
	TicketStatusOnHold,
	TicketStatusReopened,
}

// ParseTicketStatus accepts either a status name or its numeric code.
func ParseTicketStatus(raw string) (TicketStatus, error) {
	if code, err := strconv.Atoi(raw); err == nil {
		return TicketStatusFromCode(code)
	}
	status := TicketStatus(raw)
	if !status.IsValid() {
		return "", fmt.Errorf("unknown ticket status %q", raw)
	}
	return status, nil
}

// TicketStatusFromCode maps a numeric wire code to a status.
func TicketStatusFromCode(code int) (TicketStatus, error) {
	if code < 0 || code >= len(statusCodes) {
		return "", fmt.Errorf("unknown ticket status code %d", code)
	}
	return statusCodes[code], nil
}

// Code returns the numeric wire code, or -1 for unknown statuses.
func (s TicketStatus) Code() int {
	for i, candidate := range statusCodes {
		if candidate == s {
			return i
		}
	}
	return -1
}

// IsValid reports whether s is one of the known statuses.
func (s TicketStatus) IsValid() bool {
	return s.Code() >= 0
}

// MarshalJSON always encodes the status by name.
func (s TicketStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

// UnmarshalJSON decodes a status given as a name or a numeric code.
func (s *TicketStatus) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	var raw string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		if raw == "" {
			*s = ""
			return nil
		}
	} else {
		raw = string(data)
	}
	parsed, err := ParseTicketStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "Low"
	TicketPriorityMedium   TicketPriority = "Medium"
	TicketPriorityHigh     TicketPriority = "High"
	TicketPriorityCritical TicketPriority = "Critical"
	// TicketPriorityNormal is a legacy value still returned for old tickets.
	TicketPriorityNormal TicketPriority = "Normal"
)

// Priorities lists the priorities a new ticket may carry.
var Priorities = []TicketPriority{
	TicketPriorityLow,
	TicketPriorityMedium,
	TicketPriorityHigh,
	TicketPriorityCritical,
}

var priorityRank = map[TicketPriority]int{
	TicketPriorityCritical: 1,
	TicketPriorityHigh:     2,
	TicketPriorityMedium:   3,
	TicketPriorityNormal:   4,
	TicketPriorityLow:      5,
}

// Rank orders priorities most urgent first. Unknown values sort last.
func (p TicketPriority) Rank() int {
	if rank, ok := priorityRank[p]; ok {
		return rank
	}
	return len(priorityRank) + 1
}

// TicketCategory classifies the kind of work requested.
type TicketCategory string

const (
	TicketCategoryIncident       TicketCategory = "Incident"
	TicketCategoryServiceRequest TicketCategory = "ServiceRequest"
	TicketCategoryChangeRequest  TicketCategory = "ChangeRequest"
	TicketCategoryTask           TicketCategory = "Task"
	TicketCategoryFeatureRequest TicketCategory = "FeatureRequest"
	TicketCategoryBug            TicketCategory = "Bug"
)

// Categories lists all ticket categories.
var Categories = []TicketCategory{
	TicketCategoryIncident,
	TicketCategoryServiceRequest,
	TicketCategoryChangeRequest,
	TicketCategoryTask,
	TicketCategoryFeatureRequest,
	TicketCategoryBug,
}

// Ticket mirrors the ticket record served by the ticketing API.
type Ticket struct {
	ID            int64
	Title         string
	Description   string
	Category      TicketCategory
	Priority      TicketPriority
	Status        TicketStatus
	Team          Team
	RequesterID   int64
	RequesterName string
	Assignee      Assignee
	AssigneeName  string
	DueDate       *time.Time
	CreatedDate   time.Time
	ResolvedDate  *time.Time
	// TeamMembers is nil when the API did not send a member list.
	TeamMembers []int64
}

// Assignee is either unassigned or assigned to a single user.
type Assignee struct {
	id  int64
	set bool
}

// Unassigned returns the empty assignee.
func Unassigned() Assignee {
	return Assignee{}
}

// AssignedTo returns an assignee for userID. Non-positive ids are unassigned,
// matching the API which sends 0 for "no individual assigned".
func AssignedTo(userID int64) Assignee {
	if userID <= 0 {
		return Assignee{}
	}
	return Assignee{id: userID, set: true}
}

// AssigneeFromPtr converts an optional wire id.
func AssigneeFromPtr(userID *int64) Assignee {
	if userID == nil {
		return Assignee{}
	}
	return AssignedTo(*userID)
}

// ID returns the assignee's user id and whether the ticket is assigned.
func (a Assignee) ID() (int64, bool) {
	return a.id, a.set
}

// Ptr returns the id as an optional value.
func (a Assignee) Ptr() *int64 {
	if !a.set {
		return nil
	}
	id := a.id
	return &id
}

// IsUnassigned reports whether nobody is assigned.
func (a Assignee) IsUnassigned() bool {
	return !a.set
}

// Is reports whether the ticket is assigned to userID.
func (a Assignee) Is(userID int64) bool {
	return a.set && a.id == userID
}

// HasMember reports whether userID is in the team member list.
func (t *Ticket) HasMember(userID int64) bool {
	for _, member := range t.TeamMembers {
		if member == userID {
			return true
		}
	}
	return false
}

// CanonicalFields are the fields the API returns after an update.
type CanonicalFields struct {
	Status       TicketStatus
	DueDate      *time.Time
	ResolvedDate *time.Time
}

// Apply copies the server's canonical values onto the ticket.
func (t *Ticket) Apply(fields CanonicalFields) {
	if fields.Status != "" {
		t.Status = fields.Status
	}
	t.DueDate = fields.DueDate
	t.ResolvedDate = fields.ResolvedDate
}
