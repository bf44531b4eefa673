package commands

import (
	"bufio"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tgienger/tick/internal/app"
	"github.com/tgienger/tick/internal/auth"
	"github.com/tgienger/tick/internal/models"
)

func newRegisterCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: opts.withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
			in := bufio.NewReader(cmd.InOrStdin())
			name, err := flagOrPrompt(cmd, in, "name", "Full name")
			if err != nil {
				return err
			}
			email, err := flagOrPrompt(cmd, in, "email", "Email")
			if err != nil {
				return err
			}
			password, err := flagOrPrompt(cmd, in, "password", "Password")
			if err != nil {
				return err
			}

			user, err := a.Auth.Register(cmd.Context(), auth.RegisterRequest{
				FullName: name,
				Email:    email,
				Password: password,
			})
			if errors.Is(err, models.ErrEmailTaken) {
				return errors.New("email already registered")
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s <%s>. Log in with 'tick login'.\n", user.FullName, user.Email)
			return nil
		}),
	}
	cmd.Flags().String("name", "", "full name")
	cmd.Flags().String("email", "", "email address")
	cmd.Flags().String("password", "", "password (prompted when omitted)")
	return cmd
}

func newLoginCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in",
		Args:  cobra.NoArgs,
		RunE: opts.withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
			in := bufio.NewReader(cmd.InOrStdin())
			email, err := flagOrPrompt(cmd, in, "email", "Email")
			if err != nil {
				return err
			}
			password, err := flagOrPrompt(cmd, in, "password", "Password")
			if err != nil {
				return err
			}

			user, err := a.Auth.Login(cmd.Context(), auth.LoginRequest{Email: email, Password: password})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", user.FullName)
			return nil
		}),
	}
	cmd.Flags().String("email", "", "email address")
	cmd.Flags().String("password", "", "password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out",
		Args:  cobra.NoArgs,
		RunE: opts.withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
			if err := a.Auth.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		}),
	}
}

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: opts.withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
			if !a.Session.IsLoggedIn() {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (id %d)\n", a.Session.FullName(), a.Session.Email(), a.Session.UserID())
			return nil
		}),
	}
}

func newProfileCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Change your name or email",
		Args:  cobra.NoArgs,
		RunE: opts.withLogin(func(cmd *cobra.Command, _ []string, a *app.App) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			if name == "" {
				name = a.Session.FullName()
			}
			if email == "" {
				email = a.Session.Email()
			}

			user, err := a.Auth.UpdateProfile(cmd.Context(), auth.ProfileRequest{FullName: name, Email: email})
			if errors.Is(err, models.ErrEmailTaken) {
				return errors.New("email already in use by another account")
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Profile updated: %s <%s>\n", user.FullName, user.Email)
			return nil
		}),
	}
	cmd.Flags().String("name", "", "new full name")
	cmd.Flags().String("email", "", "new email address")
	return cmd
}

func newPasswdCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change your password",
		Args:  cobra.NoArgs,
		RunE: opts.withLogin(func(cmd *cobra.Command, _ []string, a *app.App) error {
			in := bufio.NewReader(cmd.InOrStdin())
			current, err := flagOrPrompt(cmd, in, "current", "Current password")
			if err != nil {
				return err
			}
			next, err := flagOrPrompt(cmd, in, "new", "New password")
			if err != nil {
				return err
			}

			if err := a.Auth.ChangePassword(cmd.Context(), auth.PasswordRequest{Current: current, New: next}); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Password changed")
			return nil
		}),
	}
	cmd.Flags().String("current", "", "current password (prompted when omitted)")
	cmd.Flags().String("new", "", "new password (prompted when omitted)")
	return cmd
}
