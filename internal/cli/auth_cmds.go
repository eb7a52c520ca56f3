package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ticket-portal/internal/api/dto"
	"github.com/spec-kit/ticket-portal/internal/domain"
	"github.com/spec-kit/ticket-portal/internal/service"
)

func (r *runner) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session for this profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				if password, err = readLine(cmd.InOrStdin()); err != nil {
					return fmt.Errorf("read password: %w", err)
				}
			}
			outcome, err := r.app.Auth.Login(cmd.Context(), email, password, notices(cmd))
			if err != nil {
				return err
			}
			return r.print(cmd.OutOrStdout(), dto.NewSessionUser(outcome.Session), func(w io.Writer) {
				fmt.Fprintf(w, "Logged in as %s (%s). Start at %s\n", outcome.Session.Username, outcome.Session.Role, outcome.LandingRoute)
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (read from stdin when empty)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (r *runner) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := r.session(cmd.Context())
			if err != nil {
				return err
			}
			if err := r.app.Auth.Logout(cmd.Context(), sess); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func (r *runner) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := r.session(cmd.Context())
			if err != nil {
				return err
			}
			return r.print(cmd.OutOrStdout(), dto.NewSessionUser(sess), func(w io.Writer) {
				fmt.Fprintf(w, "%s (id %d) role=%s team=%s expires=%s\n",
					sess.Username, sess.UserID, sess.Role, sess.Team, sess.ExpiresAt.Format("2006-01-02 15:04"))
			})
		},
	}
}

func (r *runner) registerCmd() *cobra.Command {
	var input service.RegisterInput
	var team, role string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			input.Team = domain.Team(team)
			input.Role = domain.Role(role)
			return r.app.Auth.Register(cmd.Context(), input, notices(cmd))
		},
	}
	registerAccountFlags(cmd, &input, &team)
	cmd.Flags().StringVar(&role, "role", string(domain.RoleUser), "User or Admin")
	return cmd
}

func registerAccountFlags(cmd *cobra.Command, input *service.RegisterInput, team *string) {
	cmd.Flags().StringVar(&input.Username, "username", "", "user name")
	cmd.Flags().StringVar(&input.Email, "email", "", "email address")
	cmd.Flags().StringVar(&input.Password, "password", "", "password")
	cmd.Flags().StringVar(team, "team", "", "team: "+joinTeams(domain.Teams))
}

func joinTeams(teams []domain.Team) string {
	names := make([]string, 0, len(teams))
	for _, t := range teams {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}

func readLine(in io.Reader) (string, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
