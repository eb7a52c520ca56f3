package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-portal/internal/domain"
	"github.com/spec-kit/ticket-portal/internal/notice"
)

var allStatuses = []domain.TicketStatus{
	domain.TicketStatusNew,
	domain.TicketStatusAssigned,
	domain.TicketStatusOpen,
	domain.TicketStatusInProgress,
	domain.TicketStatusResolved,
	domain.TicketStatusClosed,
	domain.TicketStatusOnHold,
	domain.TicketStatusReopened,
}

func day(t *testing.T, raw string) time.Time {
	t.Helper()
	parsed, err := domain.ParseDate(raw)
	require.NoError(t, err)
	return parsed
}

func dayPtr(t *testing.T, raw string) *time.Time {
	d := day(t, raw)
	return &d
}

func rejectionOf(t *testing.T, err error) *Rejection {
	t.Helper()
	require.Error(t, err)
	rej, ok := err.(*Rejection)
	require.True(t, ok, "expected *Rejection, got %T", err)
	return rej
}

func TestClassifyViewer(t *testing.T) {
	tests := []struct {
		name   string
		ticket domain.Ticket
		viewer int64
		want   Relationship
	}{
		{
			name:   "requester of unassigned ticket",
			ticket: domain.Ticket{RequesterID: 1},
			viewer: 1,
			want:   Relationship{IsRequester: true, IsUnassigned: true},
		},
		{
			name:   "assignee",
			ticket: domain.Ticket{RequesterID: 1, Assignee: domain.AssignedTo(7)},
			viewer: 7,
			want:   Relationship{IsAssignee: true},
		},
		{
			name:   "team member of unassigned ticket",
			ticket: domain.Ticket{RequesterID: 1, TeamMembers: []int64{3, 4}},
			viewer: 4,
			want:   Relationship{IsUnassigned: true, IsTeamMember: true},
		},
		{
			name:   "stranger",
			ticket: domain.Ticket{RequesterID: 1, Assignee: domain.AssignedTo(2), TeamMembers: []int64{3, 4}},
			viewer: 99,
			want:   Relationship{},
		},
		{
			name:   "member list absent",
			ticket: domain.Ticket{RequesterID: 1},
			viewer: 3,
			want:   Relationship{IsUnassigned: true},
		},
		{
			name:   "zero assignee id is unassigned",
			ticket: domain.Ticket{RequesterID: 1, Assignee: domain.AssignedTo(0)},
			viewer: 0,
			want:   Relationship{IsUnassigned: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyViewer(tt.ticket, tt.viewer))
		})
	}
}

func TestStrangerCannotEnterEditMode(t *testing.T) {
	ticket := domain.Ticket{RequesterID: 1, Assignee: domain.AssignedTo(2), TeamMembers: []int64{3, 4}}
	rel := ClassifyViewer(ticket, 99)

	assert.Equal(t, Relationship{}, rel)
	assert.False(t, CanEnterEditMode(rel))

	rej := rejectionOf(t, EnterEditMode(rel))
	assert.Equal(t, KindAuthorization, rej.Kind)
	assert.Equal(t, "You are not authorised to edit this ticket.", rej.Reason)
}

func TestCanEnterEditMode(t *testing.T) {
	tests := []struct {
		rel  Relationship
		want bool
	}{
		{Relationship{IsRequester: true}, true},
		{Relationship{IsAssignee: true}, true},
		{Relationship{IsUnassigned: true, IsTeamMember: true}, true},
		{Relationship{IsTeamMember: true}, false},
		{Relationship{IsUnassigned: true}, false},
		{Relationship{}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanEnterEditMode(tt.rel), "%+v", tt.rel)
		if tt.want {
			assert.NoError(t, EnterEditMode(tt.rel))
		}
	}
}

func TestStandingPrecedence(t *testing.T) {
	assert.Equal(t, []Standing{StandingAssignee, StandingRequester, StandingTeamMember, StandingOther}, Precedence)

	both := Relationship{IsRequester: true, IsAssignee: true}
	assert.Equal(t, StandingAssignee, both.Standing())

	ticket := domain.Ticket{Status: domain.TicketStatusOpen, RequesterID: 5, Assignee: domain.AssignedTo(5)}
	rel := ClassifyViewer(ticket, 5)
	assert.Equal(t, assigneeStatuses, AllowedStatuses(ticket, rel, true))

	assert.Equal(t, StandingRequester, Relationship{IsRequester: true, IsTeamMember: true}.Standing())
	assert.Equal(t, StandingTeamMember, Relationship{IsTeamMember: true}.Standing())
	assert.Equal(t, StandingOther, Relationship{IsUnassigned: true}.Standing())
}

func TestAllowedStatusesClosedRequester(t *testing.T) {
	ticket := domain.Ticket{Status: domain.TicketStatusClosed, RequesterID: 1}
	rel := ClassifyViewer(ticket, 1)

	assert.Equal(t,
		[]domain.TicketStatus{domain.TicketStatusClosed, domain.TicketStatusReopened},
		AllowedStatuses(ticket, rel, true))
	assert.Empty(t, AllowedStatuses(ticket, rel, false))
}

func TestAllowedStatusesClosedForOthersIsEmpty(t *testing.T) {
	ticket := domain.Ticket{Status: domain.TicketStatusClosed, RequesterID: 1, Assignee: domain.AssignedTo(7)}
	for _, viewer := range []int64{7, 99} {
		rel := ClassifyViewer(ticket, viewer)
		for _, edit := range []bool{true, false} {
			got := AllowedStatuses(ticket, rel, edit)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		}
	}
}

func TestAllowedStatusesByStanding(t *testing.T) {
	for _, status := range allStatuses {
		if status == domain.TicketStatusClosed {
			continue
		}
		t.Run(string(status), func(t *testing.T) {
			ticket := domain.Ticket{Status: status, RequesterID: 1, Assignee: domain.AssignedTo(7)}

			assert.Equal(t, []domain.TicketStatus{
				domain.TicketStatusAssigned,
				domain.TicketStatusOpen,
				domain.TicketStatusInProgress,
				domain.TicketStatusOnHold,
				domain.TicketStatusResolved,
			}, AllowedStatuses(ticket, ClassifyViewer(ticket, 7), true))

			assert.Equal(t, []domain.TicketStatus{
				domain.TicketStatusReopened,
				domain.TicketStatusAssigned,
				domain.TicketStatusOpen,
				domain.TicketStatusInProgress,
				domain.TicketStatusOnHold,
				domain.TicketStatusClosed,
			}, AllowedStatuses(ticket, ClassifyViewer(ticket, 1), true))

			assert.Equal(t, []domain.TicketStatus{
				domain.TicketStatusNew,
				domain.TicketStatusAssigned,
				domain.TicketStatusOpen,
				domain.TicketStatusInProgress,
				domain.TicketStatusResolved,
				domain.TicketStatusClosed,
				domain.TicketStatusOnHold,
			}, AllowedStatuses(ticket, ClassifyViewer(ticket, 99), true))
		})
	}
}

func TestAllowedStatusesReturnsCopy(t *testing.T) {
	ticket := domain.Ticket{Status: domain.TicketStatusOpen, Assignee: domain.AssignedTo(7)}
	got := AllowedStatuses(ticket, ClassifyViewer(ticket, 7), true)
	got[0] = domain.TicketStatusClosed

	again := AllowedStatuses(ticket, ClassifyViewer(ticket, 7), true)
	assert.Equal(t, domain.TicketStatusAssigned, again[0])
}

func TestCanEditDueDate(t *testing.T) {
	assert.True(t, CanEditDueDate(Relationship{IsRequester: true}, true))
	assert.False(t, CanEditDueDate(Relationship{IsRequester: true}, false))
	assert.False(t, CanEditDueDate(Relationship{IsAssignee: true}, true))
	assert.False(t, CanEditDueDate(Relationship{IsUnassigned: true, IsTeamMember: true}, true))
}

func TestAssigneeCannotClose(t *testing.T) {
	ticket := domain.Ticket{Status: domain.TicketStatusOpen, Assignee: domain.AssignedTo(7), RequesterID: 1}
	rel := ClassifyViewer(ticket, 7)

	err := ValidateSubmission(Submission{
		PriorStatus: ticket.Status,
		Status:      domain.TicketStatusClosed,
		EditMode:    true,
	}, rel)

	rej := rejectionOf(t, err)
	assert.Equal(t, CodeAssigneeCannotClose, rej.Code)
	assert.Equal(t, "Assignee cannot close the ticket.", rej.Reason)
}

func TestAssigneeCannotCloseFromAnyOpenState(t *testing.T) {
	for _, status := range allStatuses {
		if status == domain.TicketStatusClosed {
			continue
		}
		rel := Relationship{IsAssignee: true}
		err := ValidateSubmission(Submission{PriorStatus: status, Status: domain.TicketStatusClosed, EditMode: true}, rel)
		assert.Equal(t, CodeAssigneeCannotClose, rejectionOf(t, err).Code, "from %s", status)
	}
}

func TestRequesterCannotResolve(t *testing.T) {
	for _, status := range allStatuses {
		if status == domain.TicketStatusClosed {
			continue
		}
		rel := Relationship{IsRequester: true, IsUnassigned: true}
		err := ValidateSubmission(Submission{PriorStatus: status, Status: domain.TicketStatusResolved, EditMode: true}, rel)
		rej := rejectionOf(t, err)
		assert.Equal(t, CodeRequesterCannotResolve, rej.Code, "from %s", status)
		assert.Equal(t, "Requester cannot resolve the ticket.", rej.Reason)
	}
}

func TestOnlyRequesterReopensClosedTicket(t *testing.T) {
	rel := Relationship{IsUnassigned: true, IsTeamMember: true}
	err := ValidateSubmission(Submission{
		PriorStatus: domain.TicketStatusClosed,
		Status:      domain.TicketStatusReopened,
		EditMode:    true,
	}, rel)

	rej := rejectionOf(t, err)
	assert.Equal(t, CodeOnlyRequesterReopens, rej.Code)
	assert.Equal(t, "Only the requester can reopen a closed ticket.", rej.Reason)

	requester := Relationship{IsRequester: true}
	assert.NoError(t, ValidateSubmission(Submission{
		PriorStatus: domain.TicketStatusClosed,
		Status:      domain.TicketStatusReopened,
		EditMode:    true,
	}, requester))
}

func TestEmptyStatusRejected(t *testing.T) {
	err := ValidateSubmission(Submission{PriorStatus: domain.TicketStatusOpen, EditMode: true}, Relationship{IsRequester: true})
	rej := rejectionOf(t, err)
	assert.Equal(t, KindValidation, rej.Kind)
	assert.Equal(t, "Status cannot be empty.", rej.Reason)
}

func TestUnknownStatusRejected(t *testing.T) {
	err := ValidateSubmission(Submission{PriorStatus: domain.TicketStatusOpen, Status: "Archived", EditMode: true}, Relationship{IsRequester: true})
	assert.Equal(t, CodeStatusUnknown, rejectionOf(t, err).Code)
}

func TestSubmissionRequiresEditPermission(t *testing.T) {
	err := ValidateSubmission(Submission{PriorStatus: domain.TicketStatusOpen, Status: domain.TicketStatusOpen, EditMode: true}, Relationship{})
	assert.Equal(t, CodeEditNotAllowed, rejectionOf(t, err).Code)
}

func TestStatusOutsideAllowedSetRejected(t *testing.T) {
	rel := Relationship{IsAssignee: true}
	err := ValidateSubmission(Submission{
		PriorStatus: domain.TicketStatusOpen,
		Status:      domain.TicketStatusNew,
		EditMode:    true,
	}, rel)

	rej := rejectionOf(t, err)
	assert.Equal(t, CodeTransitionNotAllowed, rej.Code)
	assert.Equal(t, "Status New is not an allowed transition from Open.", rej.Reason)
}

func TestUnchangedStatusIsNotATransition(t *testing.T) {
	created := day(t, "2024-01-10")
	rel := Relationship{IsRequester: true, IsUnassigned: true}

	err := ValidateSubmission(Submission{
		PriorStatus: domain.TicketStatusNew,
		Status:      domain.TicketStatusNew,
		DueDate:     dayPtr(t, "2024-02-01"),
		CreatedDate: created,
		EditMode:    true,
	}, rel)
	assert.NoError(t, err)
}

func TestRequesterDueDateBeforeCreatedRejected(t *testing.T) {
	ticket := domain.Ticket{Status: domain.TicketStatusOpen, RequesterID: 1, CreatedDate: day(t, "2024-01-10")}
	rel := ClassifyViewer(ticket, 1)

	err := ValidateSubmission(Submission{
		PriorStatus: ticket.Status,
		Status:      ticket.Status,
		DueDate:     dayPtr(t, "2024-01-05"),
		CreatedDate: ticket.CreatedDate,
		EditMode:    true,
	}, rel)

	rej := rejectionOf(t, err)
	assert.Equal(t, KindValidation, rej.Kind)
	assert.Equal(t, "Due Date cannot be before the Created Date.", rej.Reason)
}

func TestDueDateBeforeCreatedRejectedForEveryViewer(t *testing.T) {
	created := day(t, "2024-01-10")
	due := dayPtr(t, "2024-01-05")
	rels := []Relationship{
		{IsRequester: true},
		{IsAssignee: true},
		{IsUnassigned: true, IsTeamMember: true},
		{IsRequester: true, IsAssignee: true},
	}
	for _, rel := range rels {
		err := ValidateSubmission(Submission{
			PriorStatus:  domain.TicketStatusOpen,
			Status:       domain.TicketStatusOpen,
			PriorDueDate: dayPtr(t, "2024-02-01"),
			DueDate:      due,
			CreatedDate:  created,
			EditMode:     true,
		}, rel)
		assert.Error(t, err, "%+v", rel)

		// The stored date is re-sent as it is.
		err = ValidateSubmission(Submission{
			PriorStatus:  domain.TicketStatusOpen,
			Status:       domain.TicketStatusOpen,
			PriorDueDate: due,
			DueDate:      due,
			CreatedDate:  created,
			EditMode:     true,
		}, rel)
		assert.NoError(t, err, "%+v", rel)
	}

	err := AdminTransitionPolicy{}.Validate(Submission{Status: domain.TicketStatusInProgress, DueDate: due, CreatedDate: created})
	assert.Equal(t, CodeDueDateBeforeCreated, rejectionOf(t, err).Code)
	assert.NoError(t, AdminTransitionPolicy{}.Validate(Submission{Status: domain.TicketStatusInProgress, PriorDueDate: due, DueDate: due, CreatedDate: created}))
}

func TestStoredEarlyDueDateDoesNotBlockStatusChange(t *testing.T) {
	due := dayPtr(t, "2024-01-05")
	ticket := domain.Ticket{
		Status:      domain.TicketStatusOpen,
		RequesterID: 1,
		Assignee:    domain.AssignedTo(2),
		DueDate:     due,
		CreatedDate: day(t, "2024-01-10"),
	}
	rel := ClassifyViewer(ticket, 2)

	err := ValidateSubmission(Submission{
		PriorStatus:  ticket.Status,
		Status:       domain.TicketStatusInProgress,
		PriorDueDate: ticket.DueDate,
		DueDate:      ticket.DueDate,
		CreatedDate:  ticket.CreatedDate,
		EditMode:     true,
	}, rel)
	assert.NoError(t, err)
}

func TestDueDateSameDayAsCreatedAccepted(t *testing.T) {
	created, err := domain.ParseDate("2024-01-10T15:30:00Z")
	require.NoError(t, err)

	err = ValidateSubmission(Submission{
		PriorStatus: domain.TicketStatusOpen,
		Status:      domain.TicketStatusOpen,
		DueDate:     dayPtr(t, "2024-01-10"),
		CreatedDate: created,
		EditMode:    true,
	}, Relationship{IsRequester: true})
	assert.NoError(t, err)
}

func TestDueDateDayBeforeTimedCreatedRejected(t *testing.T) {
	created, err := domain.ParseDate("2024-01-10T00:30:00Z")
	require.NoError(t, err)

	err = ValidateSubmission(Submission{
		PriorStatus: domain.TicketStatusOpen,
		Status:      domain.TicketStatusOpen,
		DueDate:     dayPtr(t, "2024-01-09"),
		CreatedDate: created,
		EditMode:    true,
	}, Relationship{IsRequester: true})
	assert.Equal(t, CodeDueDateBeforeCreated, rejectionOf(t, err).Code)

	err = AdminTransitionPolicy{}.Validate(Submission{Status: domain.TicketStatusNew, DueDate: dayPtr(t, "2024-01-10"), CreatedDate: created})
	assert.NoError(t, err)
}

func TestDueDateLockedForNonRequester(t *testing.T) {
	created := day(t, "2024-01-10")
	err := ValidateSubmission(Submission{
		PriorStatus:  domain.TicketStatusOpen,
		Status:       domain.TicketStatusInProgress,
		PriorDueDate: dayPtr(t, "2024-02-01"),
		DueDate:      dayPtr(t, "2024-03-01"),
		CreatedDate:  created,
		EditMode:     true,
	}, Relationship{IsAssignee: true})

	rej := rejectionOf(t, err)
	assert.Equal(t, CodeDueDateLocked, rej.Code)
	assert.Equal(t, "Due Date cannot be changed.", rej.Reason)

	err = ValidateSubmission(Submission{
		PriorStatus:  domain.TicketStatusOpen,
		Status:       domain.TicketStatusInProgress,
		PriorDueDate: dayPtr(t, "2024-02-01"),
		DueDate:      dayPtr(t, "2024-02-01"),
		CreatedDate:  created,
		EditMode:     true,
	}, Relationship{IsAssignee: true})
	assert.NoError(t, err)
}

func TestAdvisories(t *testing.T) {
	assert.Equal(t,
		[]notice.Notice{notice.Info("You are reopening this ticket.")},
		Advisories(domain.TicketStatusResolved, domain.TicketStatusReopened))
	assert.Len(t, Advisories(domain.TicketStatusClosed, domain.TicketStatusReopened), 1)
	assert.Empty(t, Advisories(domain.TicketStatusOpen, domain.TicketStatusReopened))
	assert.Empty(t, Advisories(domain.TicketStatusClosed, domain.TicketStatusClosed))
}

func TestAdminPolicy(t *testing.T) {
	p := AdminTransitionPolicy{}
	assert.Equal(t, []domain.TicketStatus{
		domain.TicketStatusNew,
		domain.TicketStatusInProgress,
		domain.TicketStatusResolved,
		domain.TicketStatusClosed,
		domain.TicketStatusAssigned,
		domain.TicketStatusOnHold,
		domain.TicketStatusReopened,
	}, p.AllowedStatuses())
	assert.True(t, p.CanEditDueDate())

	created := day(t, "2024-01-10")
	assert.NoError(t, p.Validate(Submission{PriorStatus: domain.TicketStatusClosed, Status: domain.TicketStatusNew, CreatedDate: created}))
	assert.NoError(t, p.Validate(Submission{Status: domain.TicketStatusClosed, DueDate: dayPtr(t, "2024-05-01"), CreatedDate: created}))

	assert.Equal(t, CodeStatusEmpty, rejectionOf(t, p.Validate(Submission{})).Code)
	assert.Equal(t, CodeStatusUnknown, rejectionOf(t, p.Validate(Submission{Status: domain.TicketStatusOpen})).Code)

	zero := time.Time{}
	assert.Equal(t, CodeDueDateInvalid, rejectionOf(t, p.Validate(Submission{Status: domain.TicketStatusNew, DueDate: &zero})).Code)
}
