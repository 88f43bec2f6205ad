package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/forum/internal/app"
	"github.com/aussiebroadwan/forum/pkg/forumsdk"
	"github.com/spf13/cobra"
)

// cli carries the streams and the lazily opened application shared by
// every subcommand.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	baseURL string
	output  string

	app *app.Application
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr}
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := root.ExecuteContext(ctx)
	if c.app != nil {
		if cerr := c.app.Close(); cerr != nil {
			_, _ = fmt.Fprintln(stderr, "close:", cerr)
		}
	}
	if err != nil {
		_, _ = fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "forumctl",
		Short:         "Command line client for the forum REST API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.baseURL, "base-url", "", "Forum API base URL (overrides FORUM_BASE_URL)")
	root.PersistentFlags().StringVarP(&c.output, "output", "o", "table", "Output format: table or json")

	root.AddCommand(
		c.loginCmd(),
		c.registerCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.passwordCmd(),
		c.postsCmd(),
		c.commentsCmd(),
		c.reactCmd(),
		c.favoriteCmd(),
		c.favoritesCmd(),
		c.followCmd(),
		c.unfollowCmd(),
		c.followersCmd(),
		c.followingCmd(),
		c.notificationsCmd(),
		c.userCmd(),
		c.profileCmd(),
		c.avatarCmd(),
		c.uploadImageCmd(),
	)
	return root
}

// client opens the application on first use so help and flag errors never
// touch the session store.
func (c *cli) client() (*forumsdk.Client, error) {
	if c.app != nil {
		return c.app.Client(), nil
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, err
	}
	if c.baseURL != "" {
		cfg.BaseURL = c.baseURL
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	application, err := app.New(cfg, app.Hooks{
		Notifier:   forumsdk.NotifierFunc(c.notify),
		Redirector: forumsdk.RedirectorFunc(c.redirect),
		LogOutput:  c.stderr,
	})
	if err != nil {
		return nil, err
	}
	c.app = application
	return c.app.Client(), nil
}

func (c *cli) notify(_ context.Context, n forumsdk.Notice) {
	msg := n.Message
	if n.RetryAfter > 0 {
		msg += fmt.Sprintf(" (retry in %s)", n.RetryAfter.Round(time.Second))
	}
	_, _ = fmt.Fprintf(c.stderr, "%s: %s\n", strings.ReplaceAll(string(n.Kind), "_", " "), msg)
}

func (c *cli) redirect(context.Context) {
	_, _ = fmt.Fprintln(c.stderr, "session expired: run `forumctl login`")
}

// call resolves the client and runs fn with the command context.
func (c *cli) call(cmd *cobra.Command, fn func(ctx context.Context, client *forumsdk.Client) error) error {
	client, err := c.client()
	if err != nil {
		return err
	}
	return fn(cmd.Context(), client)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func parseTarget(arg string) (forumsdk.TargetType, error) {
	switch strings.ToLower(arg) {
	case "article":
		return forumsdk.TargetArticle, nil
	case "question":
		return forumsdk.TargetQuestion, nil
	case "comment":
		return forumsdk.TargetComment, nil
	}
	return 0, fmt.Errorf("unknown target %q (want article, question or comment)", arg)
}

func parsePostType(arg string) (forumsdk.PostType, error) {
	switch strings.ToLower(arg) {
	case "", "all":
		return 0, nil
	case "article":
		return forumsdk.PostArticle, nil
	case "question":
		return forumsdk.PostQuestion, nil
	}
	return 0, fmt.Errorf("unknown post type %q (want article or question)", arg)
}

// targetArgs parses "<article|question|comment> <id>".
func targetArgs(args []string) (forumsdk.TargetType, int64, error) {
	target, err := parseTarget(args[0])
	if err != nil {
		return 0, 0, err
	}
	id, err := parseID(args[1])
	if err != nil {
		return 0, 0, err
	}
	return target, id, nil
}

func pageFlags(cmd *cobra.Command, p *forumsdk.Page) {
	cmd.Flags().IntVar(&p.Page, "page", 1, "Page number")
	cmd.Flags().IntVar(&p.Size, "size", 10, "Page size")
}

var errNoInput = errors.New("no input")
