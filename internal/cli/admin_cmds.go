package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ticket-portal/internal/api/dto"
	"github.com/spec-kit/ticket-portal/internal/domain"
	"github.com/spec-kit/ticket-portal/internal/service"
)

func (r *runner) adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrator ticket table and user management",
	}
	cmd.AddCommand(r.adminListCmd(), r.adminShowCmd(), r.adminUpdateCmd(), r.adminAuditCmd(), r.adminCreateUserCmd())
	return cmd
}

func (r *runner) adminListCmd() *cobra.Command {
	var search string
	var page int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all tickets by priority, optionally filtered",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := r.session(cmd.Context())
			if err != nil {
				return err
			}
			var result *service.Page[domain.Ticket]
			search = strings.TrimSpace(search)
			if id, convErr := strconv.ParseInt(search, 10, 64); convErr == nil && id > 0 {
				result, err = r.app.Admin.FindTicket(cmd.Context(), sess, id)
			} else {
				result, err = r.app.Admin.ListTickets(cmd.Context(), sess, service.AdminQuery{Search: search, Page: page})
			}
			if err != nil {
				return err
			}
			return r.print(cmd.OutOrStdout(), dto.NewAdminTicketPage(result), func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tTITLE\tPRIORITY\tSTATUS\tDUE")
				for _, t := range result.Items {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", t.ID, t.Title, t.Priority, t.Status, domain.FormatDate(t.DueDate))
				}
				_ = tw.Flush()
				fmt.Fprintf(w, "page %d of %d (%d tickets)\n", result.Page, result.TotalPages, result.TotalItems)
			})
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "keyword over title and status, or a ticket id")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	return cmd
}

func (r *runner) adminShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a ticket in the admin editor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := r.session(cmd.Context())
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			detail, err := r.app.Admin.Detail(cmd.Context(), sess, id)
			if err != nil {
				return err
			}
			return r.print(cmd.OutOrStdout(), dto.NewAdminTicketDetailResponse(detail), func(w io.Writer) {
				writeTicket(w, detail.Ticket)
				fmt.Fprintf(w, "Statuses:     %v\n", detail.AllowedStatuses)
			})
		},
	}
}

func (r *runner) adminUpdateCmd() *cobra.Command {
	var status, due string
	var clearDue bool
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change any ticket's status and due date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := r.session(cmd.Context())
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			next, err := parseStatus(status)
			if err != nil {
				return err
			}
			dueDate, err := parseDue(due)
			if err != nil {
				return err
			}
			detail, err := r.app.Admin.SubmitUpdate(cmd.Context(), sess, id, service.AdminUpdateInput{Status: next, DueDate: dueDate, ClearDueDate: clearDue}, notices(cmd))
			if err != nil {
				return err
			}
			return r.print(cmd.OutOrStdout(), dto.NewTicketResponse(detail.Ticket), func(w io.Writer) {
				writeTicket(w, detail.Ticket)
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "new status name or code")
	cmd.Flags().StringVar(&due, "due", "", "new due date (YYYY-MM-DD); keeps the current one when empty")
	cmd.Flags().BoolVar(&clearDue, "clear-due", false, "remove the due date")
	_ = cmd.MarkFlagRequired("status")
	cmd.MarkFlagsMutuallyExclusive("due", "clear-due")
	return cmd
}

func (r *runner) adminAuditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit <id>",
		Short: "Show recorded update submissions for a ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := r.session(cmd.Context())
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			entries, err := r.app.Admin.AuditTrail(cmd.Context(), sess, id)
			if err != nil {
				return err
			}
			return r.print(cmd.OutOrStdout(), dto.NewAuditResponse(entries), func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "WHEN\tVIEWER\tCHANNEL\tFROM\tTO\tOUTCOME\tREASON")
				for _, e := range entries {
					fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
						e.CreatedAt.Format("2006-01-02 15:04"), e.ViewerID, e.Channel, e.PriorStatus, e.SubmittedStatus, e.Outcome, e.Reason)
				}
				_ = tw.Flush()
			})
		},
	}
}

func (r *runner) adminCreateUserCmd() *cobra.Command {
	var input service.RegisterInput
	var team string
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a regular user in a member team",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := r.session(cmd.Context())
			if err != nil {
				return err
			}
			input.Team = domain.Team(team)
			return r.app.Auth.CreateUser(cmd.Context(), sess, input, notices(cmd))
		},
	}
	registerAccountFlags(cmd, &input, &team)
	return cmd
}
