package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-portal/internal/domain"
	"github.com/spec-kit/ticket-portal/internal/events"
	"github.com/spec-kit/ticket-portal/internal/observability"
	"github.com/spec-kit/ticket-portal/internal/policy"
	"github.com/spec-kit/ticket-portal/internal/repository"
	"github.com/spec-kit/ticket-portal/internal/session"
)

// recorder writes the side records of an update submission: the audit row,
// the submission counter and the event. None of them can fail a submission.
type recorder struct {
	audit      repository.SubmissionAuditRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

func newRecorder(deps TicketDependencies) *recorder {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &recorder{
		audit:      deps.AuditRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

func guardOrDefault(guard session.InflightGuard) session.InflightGuard {
	if guard == nil {
		return session.NewMemoryGuard()
	}
	return guard
}

func (r *recorder) recordRejection(ctx context.Context, sess domain.Session, channel domain.SubmissionChannel, sub policy.Submission, ticketID int64, err error) {
	var rejection *policy.Rejection
	code, reason := "", err.Error()
	if errors.As(err, &rejection) {
		code = rejection.Code
	}
	r.logger.Info("ticket update rejected",
		zap.Int64("ticket_id", ticketID),
		zap.Int64("user_id", sess.UserID),
		zap.String("channel", string(channel)),
		zap.String("code", code),
		zap.String("reason", reason))
	r.recordAudit(ctx, sess, channel, sub, ticketID, domain.OutcomeRejected, reason)
	r.publish(ctx, events.New(events.EventUpdateRejected, ticketID, events.ActorFromSession(sess), events.UpdateRejectedPayload{
		Channel:   channel,
		Submitted: sub.Status,
		Code:      code,
		Reason:    reason,
	}))
}

func (r *recorder) recordAudit(ctx context.Context, sess domain.Session, channel domain.SubmissionChannel, sub policy.Submission, ticketID int64, outcome domain.SubmissionOutcome, reason string) {
	r.metrics.RecordSubmission(string(channel), string(outcome))
	if r.audit == nil {
		return
	}
	entry := &domain.SubmissionAudit{
		TicketID:        ticketID,
		ViewerID:        sess.UserID,
		Channel:         channel,
		PriorStatus:     sub.PriorStatus,
		SubmittedStatus: sub.Status,
		DueDate:         sub.DueDate,
		Outcome:         outcome,
		Reason:          reason,
	}
	if err := r.audit.Create(ctx, entry); err != nil {
		r.logger.Error("failed to record submission audit", zap.Int64("ticket_id", ticketID), zap.Error(err))
	}
}

func (r *recorder) publish(ctx context.Context, event events.Event) {
	if r.dispatcher == nil {
		return
	}
	_ = r.dispatcher.Publish(ctx, event)
}
