// Package cli implements the ticketctl command tree on top of the portal
// services. A profile holds one stored session.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ticket-portal/internal/domain"
	"github.com/spec-kit/ticket-portal/internal/notice"
	"github.com/spec-kit/ticket-portal/internal/service"
	"github.com/spec-kit/ticket-portal/internal/session"
	apperrors "github.com/spec-kit/ticket-portal/pkg/util/errorutil"
)

// App carries the services the commands drive.
type App struct {
	Auth    *service.AuthService
	Tickets *service.TicketService
	Admin   *service.AdminService
	Profile string
}

type runner struct {
	app     *App
	jsonOut bool
}

// NewRootCommand builds the ticketctl command tree.
func NewRootCommand(app *App) *cobra.Command {
	r := &runner{app: app}
	root := &cobra.Command{
		Use:           "ticketctl",
		Short:         "Work with tickets from the terminal",
		Long:          `ticketctl logs in to the ticketing API and views or updates tickets with the same rules as the portal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&r.jsonOut, "json", false, "print results as JSON")

	root.AddCommand(r.loginCmd(), r.logoutCmd(), r.whoamiCmd(), r.registerCmd())
	root.AddCommand(r.ticketsCmd(), r.adminCmd())
	return root
}

// session loads the profile's stored session.
func (r *runner) session(ctx context.Context) (domain.Session, error) {
	sess, err := r.app.Auth.Current(ctx, r.app.Profile)
	if errors.Is(err, session.ErrNotFound) {
		return domain.Session{}, fmt.Errorf("profile %q is not logged in; run ticketctl login", r.app.Profile)
	}
	if err != nil {
		return domain.Session{}, err
	}
	return *sess, nil
}

func (r *runner) print(w io.Writer, value any, text func(io.Writer)) error {
	if r.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	}
	text(w)
	return nil
}

// noticePrinter writes notices as they are emitted.
type noticePrinter struct {
	w io.Writer
}

func (p noticePrinter) Notify(n notice.Notice) {
	fmt.Fprintf(p.w, "[%s] %s\n", n.Level, n.Message)
}

func notices(cmd *cobra.Command) notice.Sink {
	return noticePrinter{w: cmd.ErrOrStderr()}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("ticket id must be a positive integer, got %q", raw)
	}
	return id, nil
}

func parseStatus(raw string) (domain.TicketStatus, error) {
	if raw == "" {
		return "", nil
	}
	return domain.ParseTicketStatus(raw)
}

func parseDue(raw string) (*time.Time, error) {
	due, err := domain.ParseOptionalDate(raw)
	if err != nil {
		return nil, fmt.Errorf("--due: %w", err)
	}
	return due, nil
}

// Describe renders err for the terminal. Errors with no user-facing mapping
// are shown as they are rather than as a generic failure.
func Describe(err error) string {
	mapped := apperrors.ToDomainError(err)
	if mapped.Code == "INTERNAL_ERROR" && !errors.As(err, new(*apperrors.DomainError)) {
		return err.Error()
	}
	return mapped.Message
}
