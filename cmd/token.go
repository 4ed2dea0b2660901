package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Shivanand-hulikatti/eventdesk/internal/auth"
	"github.com/Shivanand-hulikatti/eventdesk/internal/model"
	"github.com/Shivanand-hulikatti/eventdesk/internal/repository"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Create or update a user and print a bearer token for it",
	Long: `Create or update the user with the given email and print a signed
bearer token for it. Accounts are managed outside this service; this
command is how operators seed users and obtain tokens.`,
	Example: `  eventdesk token --email alice@example.com --first-name Alice --last-name Adams
  eventdesk token --email root@example.com --first-name Root --admin`,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().String("email", "", "User email (required)")
	tokenCmd.Flags().String("first-name", "", "First name")
	tokenCmd.Flags().String("last-name", "", "Last name")
	tokenCmd.Flags().Bool("admin", false, "Grant the ADMIN role")
	_ = tokenCmd.MarkFlagRequired("email")
}

func runToken(cmd *cobra.Command, _ []string) error {
	email, _ := cmd.Flags().GetString("email")
	firstName, _ := cmd.Flags().GetString("first-name")
	lastName, _ := cmd.Flags().GetString("last-name")
	admin, _ := cmd.Flags().GetBool("admin")

	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("--email must not be empty")
	}

	cfg, err := setup()
	if err != nil {
		return err
	}
	authn, err := auth.New(cfg.JWT.Secret, cfg.JWT.ExpiresIn)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	pool, err := connect(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	var roles []string
	if admin {
		roles = append(roles, auth.RoleAdmin)
	}
	user, err := repository.NewUserRepository(pool).Upsert(cmd.Context(), model.User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Roles:     model.RolesFromNames(roles),
	})
	if err != nil {
		return err
	}

	token, err := authn.Issue(user.ID, roles)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
