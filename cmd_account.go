package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mamacare/mamacare-api/pkg/client"
)

var apiURL string

func init() {
	for _, c := range []*cobra.Command{loginCmd, logoutCmd, profileCmd} {
		c.Flags().StringVar(&apiURL, "api", "http://localhost:5000/api", "base URL of the API")
	}
}

func sessionStore() (*client.FileSessionStore, error) {
	path, err := client.DefaultSessionPath()
	if err != nil {
		return nil, err
	}
	return client.NewFileSessionStore(path), nil
}

func loadSession(ctx context.Context) (*client.FileSessionStore, *client.Session, error) {
	st, err := sessionStore()
	if err != nil {
		return nil, nil, err
	}
	sess, err := st.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	if !sess.Valid() {
		return nil, nil, fmt.Errorf("not signed in; run `mamacare login` first")
	}
	return st, sess, nil
}

// readPassword reads without echo from a terminal, otherwise one line of the
// command's input. Only the line ending is stripped.
func readPassword(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Sign in to an API and remember the session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		fmt.Fprint(cmd.OutOrStdout(), "Password: ")
		pw, err := readPassword(cmd)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		p, sess, err := client.New(apiURL).Login(ctx, args[0], pw)
		if err != nil {
			return err
		}
		st, err := sessionStore()
		if err != nil {
			return err
		}
		if err := st.Save(ctx, sess); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", p.Name, p.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, sess, err := loadSession(ctx)
		if err != nil {
			return err
		}
		if err := client.New(apiURL).Logout(ctx, sess); err != nil && !client.IsStatus(err, 401) {
			return err
		}
		return st.Clear(ctx)
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the signed-in profile and pregnancy progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, sess, err := loadSession(ctx)
		if err != nil {
			return err
		}
		c := client.New(apiURL)
		p, err := c.Profile(ctx, sess)
		if client.IsStatus(err, 401) && sess.RefreshToken != "" {
			if err = c.Refresh(ctx, sess); err == nil {
				if err = st.Save(ctx, sess); err == nil {
					p, err = c.Profile(ctx, sess)
				}
			}
		}
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s <%s>\n", p.Name, p.Email)
		if p.WeeksPregnant != nil && p.Trimester != nil {
			fmt.Fprintf(out, "Week %d, %s trimester", *p.WeeksPregnant, *p.Trimester)
			if p.ProgressPercent != nil {
				fmt.Fprintf(out, " (%d%%)", *p.ProgressPercent)
			}
			fmt.Fprintln(out)
		}
		if p.DaysRemaining != nil {
			fmt.Fprintf(out, "%d days to go\n", *p.DaysRemaining)
		}
		if p.BirthClub != "" {
			fmt.Fprintf(out, "Birth club: %s\n", p.BirthClub)
		}
		return nil
	},
}
