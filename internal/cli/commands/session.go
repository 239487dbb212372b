package commands

import (
	"MyPass/internal/cli/api"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newLoginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login <email> <password>",
		Short: "Login and store the session token",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _ := a.client(false)
			tok, err := c.Login(cmd.Context(), args[0], args[1])
			if errors.Is(err, api.ErrUnauthorized) {
				return errors.New("invalid email or password")
			}
			if err != nil {
				return err
			}
			if err := a.store().Save(tok); err != nil {
				return fmt.Errorf("saving auth: %w", err)
			}
			success(cmd.OutOrStdout(), "Logged in successfully")
			return nil
		},
	}
}

func newRegisterCmd(a *app) *cobra.Command {
	var questions []string
	cmd := &cobra.Command{
		Use:   "register <email> <password>",
		Short: "Create an account with security questions",
		Long: `Creates an account. Every --question is "prompt=answer"; the server
requires a fixed number of them (3 by default).

Example:
  vaultctl register a@x.com 'Passw0rd!' -q pet=Rex -q city=Reno -q color=Blue`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qs := make([]api.Question, 0, len(questions))
			for _, q := range questions {
				prompt, answer, ok := strings.Cut(q, "=")
				if !ok {
					return usageErr(cmd, fmt.Sprintf("question %q must be prompt=answer", q))
				}
				qs = append(qs, api.Question{Question: prompt, Answer: answer})
			}
			c, _ := a.client(false)
			tok, err := c.Register(cmd.Context(), args[0], args[1], qs)
			if err != nil {
				return err
			}
			if err := a.store().Save(tok); err != nil {
				return fmt.Errorf("saving auth: %w", err)
			}
			success(cmd.OutOrStdout(), "Registered and logged in")
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&questions, "question", "q", nil, "security question as prompt=answer (repeatable)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and remove the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c, err := a.client(true); err == nil {
				// локальный токен удаляем даже если сервер недоступен
				if err := c.Logout(cmd.Context()); err != nil {
					_, _ = warnColor.Fprintf(cmd.ErrOrStderr(), "server logout failed: %v\n", err)
				}
			}
			if err := a.store().Clear(); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the stored session is valid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client(true)
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), "anonymous")
				return nil
			}
			res, err := c.Status(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func newRecoverCmd(a *app) *cobra.Command {
	var answers []string
	cmd := &cobra.Command{
		Use:   "recover <email>",
		Short: "Answer security questions and obtain a one-time reset token",
		Long: `Without --answer prints the security questions for the account.
With one --answer per question (in order) prints a reset token for 'vaultctl reset'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _ := a.client(false)
			out := cmd.OutOrStdout()
			if len(answers) == 0 {
				qs, err := c.SecurityQuestions(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				for i, q := range qs {
					fmt.Fprintf(out, "%d. %s\n", i+1, q)
				}
				return nil
			}
			res, err := c.Recover(cmd.Context(), args[0], answers)
			if err != nil {
				return err
			}
			if res.Token == "" {
				return errors.New("recovery failed")
			}
			success(out, "Recovery succeeded, token valid until %s", res.ExpiresAt)
			_, _ = keyColor.Fprintln(out, res.Token)
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&answers, "answer", "a", nil, "answer to the next security question (repeatable)")
	return cmd
}

func newResetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <reset-token> <new-password>",
		Short: "Set a new master password with a reset token",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _ := a.client(false)
			if err := c.ResetPassword(cmd.Context(), args[0], args[1], args[1]); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Master password updated, login with the new password")
			return nil
		},
	}
}
