package domain

// Team names the functional group a ticket or user belongs to.
type Team string

const (
	TeamNone      Team = "None"
	TeamDeveloper Team = "Developer"
	TeamQA        Team = "QA"
	TeamITSupport Team = "ITSupport"
	TeamDevOps    Team = "DevOps"
	TeamHR        Team = "HR"
)

// Teams lists every team a ticket can be routed to, including None.
var Teams = []Team{TeamNone, TeamDeveloper, TeamQA, TeamITSupport, TeamDevOps, TeamHR}

// MemberTeams lists the teams a user account may belong to.
var MemberTeams = []Team{TeamDevOps, TeamQA, TeamDeveloper, TeamHR, TeamITSupport}

// IsValid reports whether t is a known ticket team.
func (t Team) IsValid() bool {
	for _, candidate := range Teams {
		if candidate == t {
			return true
		}
	}
	return false
}

// IsMemberTeam reports whether a user may belong to t.
func (t Team) IsMemberTeam() bool {
	for _, candidate := range MemberTeams {
		if candidate == t {
			return true
		}
	}
	return false
}

// TeamUser is a candidate assignee within a team.
type TeamUser struct {
	UserID   int64
	Username string
}
