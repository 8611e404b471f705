package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/atinyakov/GophNotes/internal/models"
	"github.com/spf13/cobra"
)

var flagEmail string

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and sign in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return authenticate(cmd, current.auth.SignUp, "Account created")
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return authenticate(cmd, current.auth.SignIn, "Signed in")
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.auth.SignOut(cmd.Context()); err != nil {
			return fmt.Errorf("sign out: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
		return nil
	},
}

type authFunc func(ctx context.Context, email, password string) (*models.Session, error)

func authenticate(cmd *cobra.Command, fn authFunc, done string) error {
	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.ErrOrStderr()

	email, password, err := readCredentials(in, out, flagEmail)
	if err != nil {
		return err
	}

	sess, err := fn(cmd.Context(), email, password)
	switch {
	case errors.Is(err, models.ErrConflict):
		return errors.New("an account with this email already exists")
	case err != nil:
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s as %s\n", done, sess.Email)
	return nil
}

func readCredentials(in *bufio.Reader, out io.Writer, email string) (string, string, error) {
	var err error
	if email == "" {
		if email, err = promptLine(in, out, "Email: "); err != nil {
			return "", "", err
		}
	}
	password, err := promptPassword(in, out, "Password: ")
	if err != nil {
		return "", "", err
	}
	if email == "" || password == "" {
		return "", "", errors.New("email and password are required")
	}
	return email, password, nil
}

func init() {
	for _, c := range []*cobra.Command{signupCmd, loginCmd} {
		c.Flags().StringVarP(&flagEmail, "email", "e", "", "account email")
		rootCmd.AddCommand(c)
	}
	rootCmd.AddCommand(logoutCmd)
}
