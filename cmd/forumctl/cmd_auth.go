package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aussiebroadwan/forum/pkg/forumsdk"
	"github.com/aussiebroadwan/forum/pkg/jwtx"
	"github.com/spf13/cobra"
)

// secret returns flagValue, or the first line of stdin when the flag is empty.
func (c *cli) secret(flagValue, prompt string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	_, _ = fmt.Fprint(c.stderr, prompt)
	line, err := bufio.NewReader(c.stdin).ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		if err != nil && err != io.EOF {
			return "", err
		}
		return "", fmt.Errorf("%s: %w", strings.TrimSuffix(prompt, ": "), errNoInput)
	}
	return line, nil
}

func (c *cli) loginCmd() *cobra.Command {
	var pass string
	cmd := &cobra.Command{
		Use:   "login USERNAME",
		Short: "Log in and store the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := c.secret(pass, "password: ")
			if err != nil {
				return err
			}
			return c.call(cmd, func(ctx context.Context, client *forumsdk.Client) error {
				resp, err := client.Login(ctx, args[0], pw)
				if err != nil {
					return err
				}
				out := whoami{UserID: resp.UserID, Username: resp.Username, Authenticated: true, CanRenew: resp.RefreshToken != ""}
				return c.render(out, func(w io.Writer) {
					_, _ = fmt.Fprintf(w, "logged in as %s (id %d)\n", resp.Username, resp.UserID)
				})
			})
		},
	}
	cmd.Flags().StringVarP(&pass, "password", "p", "", "Password (read from stdin when omitted)")
	return cmd
}

func (c *cli) registerCmd() *cobra.Command {
	var pass string
	cmd := &cobra.Command{
		Use:   "register USERNAME",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := c.secret(pass, "password: ")
			if err != nil {
				return err
			}
			return c.call(cmd, func(ctx context.Context, client *forumsdk.Client) error {
				resp, err := client.Register(ctx, args[0], pw)
				if err != nil {
					return err
				}
				return c.render(resp, func(w io.Writer) {
					_, _ = fmt.Fprintf(w, "registered %s (id %d); run `forumctl login %s`\n", resp.Username, resp.UserID, resp.Username)
				})
			})
		},
	}
	cmd.Flags().StringVarP(&pass, "password", "p", "", "Password (read from stdin when omitted)")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.call(cmd, func(ctx context.Context, client *forumsdk.Client) error {
				if err := client.Logout(ctx); err != nil {
					return err
				}
				return c.done("logged out")
			})
		},
	}
}

type whoami struct {
	UserID        int64      `json:"user_id"`
	Username      string     `json:"username"`
	Authenticated bool       `json:"authenticated"`
	CanRenew      bool       `json:"can_renew"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.call(cmd, func(ctx context.Context, client *forumsdk.Client) error {
				sess, err := client.CurrentSession(ctx)
				if err != nil {
					return err
				}
				out := whoami{
					UserID:        sess.UserID,
					Username:      sess.Username,
					Authenticated: sess.Authenticated(),
					CanRenew:      sess.RefreshToken != "",
				}
				if exp, err := jwtx.ExpiresAt(sess.AccessToken); err == nil {
					out.ExpiresAt = &exp
				}
				return c.render(out, func(w io.Writer) {
					if !out.Authenticated {
						_, _ = fmt.Fprintln(w, "not logged in")
						return
					}
					row(w, "user", fmt.Sprintf("%s (id %d)", out.Username, out.UserID))
					if out.ExpiresAt != nil {
						row(w, "access token expires", stamp(*out.ExpiresAt))
					}
					row(w, "renewable", out.CanRenew)
				})
			})
		},
	}
}

func (c *cli) passwordCmd() *cobra.Command {
	var current, next string
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change the account password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if current == "" || next == "" {
				return fmt.Errorf("--old and --new required")
			}
			return c.call(cmd, func(ctx context.Context, client *forumsdk.Client) error {
				if err := client.ChangePassword(ctx, current, next); err != nil {
					return err
				}
				return c.done("password changed")
			})
		},
	}
	cmd.Flags().StringVar(&current, "old", "", "Current password (required)")
	cmd.Flags().StringVar(&next, "new", "", "New password (required)")
	return cmd
}
