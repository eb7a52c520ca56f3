package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-portal/internal/domain"
)

// SubmissionAuditRepository stores update submission audit entries.
type SubmissionAuditRepository interface {
	Create(ctx context.Context, entry *domain.SubmissionAudit) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.SubmissionAudit, error)
}

type submissionAuditRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionAuditRepository builds repository. It returns nil when no pool
// is configured so callers can treat the audit trail as disabled.
func NewSubmissionAuditRepository(pool *pgxpool.Pool) SubmissionAuditRepository {
	if pool == nil {
		return nil
	}
	return &submissionAuditRepository{pool: pool}
}

func (r *submissionAuditRepository) Create(ctx context.Context, entry *domain.SubmissionAudit) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO submission_audit (id, ticket_id, viewer_id, channel, prior_status, submitted_status, due_date, outcome, reason)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING created_at`
	return r.pool.QueryRow(ctx, query,
		entry.ID,
		entry.TicketID,
		entry.ViewerID,
		string(entry.Channel),
		string(entry.PriorStatus),
		string(entry.SubmittedStatus),
		entry.DueDate,
		string(entry.Outcome),
		entry.Reason,
	).Scan(&entry.CreatedAt)
}

func (r *submissionAuditRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.SubmissionAudit, error) {
	const query = `
        SELECT id::text, ticket_id, viewer_id, channel, prior_status, submitted_status, due_date, outcome, reason, created_at
        FROM submission_audit WHERE ticket_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.SubmissionAudit{}
	for rows.Next() {
		var (
			entry                     domain.SubmissionAudit
			channel, prior, submitted string
			outcome                   string
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.ViewerID,
			&channel,
			&prior,
			&submitted,
			&entry.DueDate,
			&outcome,
			&entry.Reason,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entry.Channel = domain.SubmissionChannel(channel)
		entry.PriorStatus = domain.TicketStatus(prior)
		entry.SubmittedStatus = domain.TicketStatus(submitted)
		entry.Outcome = domain.SubmissionOutcome(outcome)
		result = append(result, entry)
	}
	return result, rows.Err()
}
