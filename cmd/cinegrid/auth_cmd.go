package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vadimtrunov/cinegrid/internal/core"
	"github.com/vadimtrunov/cinegrid/internal/session"
)

// readAPIKey returns the --api-key flag, or prompts for the key on stdin.
func readAPIKey(cmd *cobra.Command, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "TMDb API key: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read API key: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func newRegisterCmd() *cobra.Command {
	var apiKey string
	cmd := &cobra.Command{
		Use:   "register [email]",
		Short: "Create a local account bound to a TMDb API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := readAPIKey(cmd, apiKey)
			if err != nil {
				return err
			}
			svc, err := prepare()
			if err != nil {
				return err
			}
			if err := svc.identity.Register(cmd.Context(), args[0], key); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), styleSuccess.Render("✓ Account created"))
			fmt.Fprintln(cmd.OutOrStdout(), styleDim.Render("Sign in with: cinegrid login "+args[0]))
			return nil
		},
	}
	cmd.Flags().StringVar(&apiKey, "api-key", "", "TMDb API key (prompted when omitted)")
	return cmd
}

func newLoginCmd() *cobra.Command {
	var apiKey string
	cmd := &cobra.Command{
		Use:   "login [email]",
		Short: "Sign in; catalog commands then use your API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := readAPIKey(cmd, apiKey)
			if err != nil {
				return err
			}
			svc, err := prepare()
			if err != nil {
				return err
			}
			sess, err := svc.identity.Login(cmd.Context(), args[0], key)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), styleSuccess.Render("✓ Signed in as "+sess.Name))
			return nil
		},
	}
	cmd.Flags().StringVar(&apiKey, "api-key", "", "TMDb API key (prompted when omitted)")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := prepare()
			if err != nil {
				return err
			}
			if err := svc.identity.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), styleSuccess.Render("✓ Signed out"))
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := prepare()
			if err != nil {
				return err
			}

			sess, err := svc.identity.Current(cmd.Context())
			if err != nil && !errors.Is(err, session.ErrNoSession) {
				return err
			}
			writeWhoami(cmd.OutOrStdout(), sess, svc.cfg.TMDb.APIKey != "", svc.records.Dir())
			return nil
		},
	}
}

// writeWhoami prints the signed-in account, or the fallback in effect when
// sess is nil, followed by the data directory.
func writeWhoami(w io.Writer, sess *core.Session, configKey bool, dataDir string) {
	switch {
	case sess != nil:
		fmt.Fprintf(w, "%s %s\n", styleTitle.Render(sess.Name), styleDim.Render("<"+sess.Email+">"))
		fmt.Fprintln(w, styleDim.Render("Signed in "+sess.StartedAt.Local().Format("2006-01-02 15:04")))
	case configKey:
		fmt.Fprintln(w, "Not signed in.")
		fmt.Fprintln(w, styleDim.Render("Catalog commands use tmdb.api_key from the configuration."))
	default:
		fmt.Fprintln(w, "Not signed in.")
	}
	fmt.Fprintln(w, styleDim.Render("Data: "+dataDir))
}
