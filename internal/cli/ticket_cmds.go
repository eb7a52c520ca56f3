package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ticket-portal/internal/api/dto"
	"github.com/spec-kit/ticket-portal/internal/domain"
	"github.com/spec-kit/ticket-portal/internal/service"
)

func (r *runner) ticketsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tickets",
		Short: "View and update your tickets",
	}
	cmd.AddCommand(r.ticketsListCmd(), r.ticketsShowCmd(), r.ticketsUpdateCmd(), r.ticketsCreateCmd(), r.teamUsersCmd())
	return cmd
}

func (r *runner) ticketsListCmd() *cobra.Command {
	var tab string
	var page int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a dashboard tab (assigned, requested, team)",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := r.session(cmd.Context())
			if err != nil {
				return err
			}
			parsed, err := service.ParseDashboardTab(tab)
			if err != nil {
				return err
			}
			dashboard, err := r.app.Tickets.Dashboard(cmd.Context(), sess, parsed, page)
			if err != nil {
				return err
			}
			return r.print(cmd.OutOrStdout(), dashboard.Tickets, func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tTITLE\tPRIORITY\tSTATUS")
				for _, t := range dashboard.Tickets.Items {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", t.ID, t.Title, t.Priority, t.Status)
				}
				_ = tw.Flush()
				fmt.Fprintf(w, "%s tab, page %d of %d\n", dashboard.Tab, dashboard.Tickets.Page, dashboard.Tickets.TotalPages)
			})
		},
	}
	cmd.Flags().StringVar(&tab, "tab", string(service.TabAssigned), "assigned, requested or team")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	return cmd
}

func (r *runner) ticketsShowCmd() *cobra.Command {
	var edit bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a ticket and what you may change",
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
			detail, err := r.app.Tickets.Detail(cmd.Context(), sess, id, edit)
			if err != nil {
				return err
			}
			return r.print(cmd.OutOrStdout(), dto.NewTicketDetailResponse(detail), func(w io.Writer) {
				writeTicket(w, detail.Ticket)
				fmt.Fprintf(w, "Relationship: %s\n", detail.Standing)
				fmt.Fprintf(w, "Can edit:     %t\n", detail.CanEdit)
				if detail.EditMode {
					fmt.Fprintf(w, "Statuses:     %v\n", detail.AllowedStatuses)
					fmt.Fprintf(w, "Due editable: %t\n", detail.CanEditDueDate)
				}
			})
		},
	}
	cmd.Flags().BoolVar(&edit, "edit", false, "enter edit mode and list allowed statuses")
	return cmd
}

func (r *runner) ticketsUpdateCmd() *cobra.Command {
	var status, due string
	var clearDue bool
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a ticket's status and due date",
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
			detail, err := r.app.Tickets.SubmitUpdate(cmd.Context(), sess, id, service.UpdateInput{Status: next, DueDate: dueDate, ClearDueDate: clearDue}, notices(cmd))
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

func (r *runner) ticketsCreateCmd() *cobra.Command {
	var input service.CreateTicketInput
	var category, priority, team, due string
	var assignee int64
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open a new ticket",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := r.session(cmd.Context())
			if err != nil {
				return err
			}
			dueDate, err := parseDue(due)
			if err != nil {
				return err
			}
			input.Category = domain.TicketCategory(category)
			input.Priority = domain.TicketPriority(priority)
			input.Team = domain.Team(team)
			input.DueDate = dueDate
			input.Assignee = domain.AssignedTo(assignee)
			return r.app.Tickets.CreateTicket(cmd.Context(), sess, input, notices(cmd))
		},
	}
	cmd.Flags().StringVar(&input.Title, "title", "", "ticket title")
	cmd.Flags().StringVar(&input.Description, "description", "", "ticket description")
	cmd.Flags().StringVar(&category, "category", "", "category (default Incident)")
	cmd.Flags().StringVar(&priority, "priority", "", "priority (default Low)")
	cmd.Flags().StringVar(&team, "team", "", "team (default None)")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().Int64Var(&assignee, "assignee", 0, "assignee user id; 0 leaves it unassigned")
	return cmd
}

func (r *runner) teamUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "team-users <team>",
		Short: "List the users a ticket for the team can be assigned to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := r.session(cmd.Context())
			if err != nil {
				return err
			}
			users, err := r.app.Tickets.TeamUsers(cmd.Context(), sess, domain.Team(args[0]))
			if err != nil {
				return err
			}
			return r.print(cmd.OutOrStdout(), dto.NewTeamUsersResponse(users), func(w io.Writer) {
				for _, u := range users {
					fmt.Fprintf(w, "%d\t%s\n", u.UserID, u.Username)
				}
			})
		},
	}
}

func writeTicket(w io.Writer, t domain.Ticket) {
	assignee := "Unassigned"
	if id, ok := t.Assignee.ID(); ok {
		assignee = fmt.Sprintf("%d %s", id, t.AssigneeName)
	}
	fmt.Fprintf(w, "#%d %s\n", t.ID, t.Title)
	fmt.Fprintf(w, "Status:       %s\n", t.Status)
	fmt.Fprintf(w, "Priority:     %s\n", t.Priority)
	fmt.Fprintf(w, "Category:     %s\n", t.Category)
	fmt.Fprintf(w, "Team:         %s\n", t.Team)
	fmt.Fprintf(w, "Requester:    %d %s\n", t.RequesterID, t.RequesterName)
	fmt.Fprintf(w, "Assignee:     %s\n", assignee)
	fmt.Fprintf(w, "Created:      %s\n", domain.FormatDate(&t.CreatedDate))
	fmt.Fprintf(w, "Due:          %s\n", domain.FormatDate(t.DueDate))
	if t.ResolvedDate != nil {
		fmt.Fprintf(w, "Resolved:     %s\n", domain.FormatDate(t.ResolvedDate))
	}
}
