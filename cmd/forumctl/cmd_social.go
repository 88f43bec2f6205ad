package main

import (
	"context"
	"fmt"
	"io"

	"github.com/aussiebroadwan/forum/pkg/forumsdk"
	"github.com/spf13/cobra"
)

func (c *cli) reactCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "react TARGET ID",
		Short: "Toggle a like on an article, question or comment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, id, err := targetArgs(args)
			if err != nil {
				return err
			}
			return c.call(cmd, func(ctx context.Context, client *forumsdk.Client) error {
				liked, err := client.ToggleReaction(ctx, target, id)
				if err != nil {
					return err
				}
				return c.render(map[string]bool{"liked": liked}, func(w io.Writer) {
					_, _ = fmt.Fprintln(w, toggled(liked, "liked", "like removed"))
				})
			})
		},
	}
}

func (c *cli) favoriteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "favorite TARGET ID",
		Short: "Toggle a favorite on an article or question",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, id, err := targetArgs(args)
			if err != nil {
				return err
			}
			return c.call(cmd, func(ctx context.Context, client *forumsdk.Client) error {
				on, err := client.ToggleFavorite(ctx, target, id)
				if err != nil {
					return err
				}
				return c.render(map[string]bool{"favorited": on}, func(w io.Writer) {
					_, _ = fmt.Fprintln(w, toggled(on, "favorited", "favorite removed"))
				})
			})
		},
	}
}

func (c *cli) favoritesCmd() *cobra.Command {
	var page forumsdk.Page
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "List your favorites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.call(cmd, func(ctx context.Context, client *forumsdk.Client) error {
				resp, err := client.ListFavorites(ctx, page)
				if err != nil {
					return err
				}
				return c.render(resp, func(w io.Writer) {
					row(w, "ID", "TITLE", "CREATED")
					for _, f := range resp.Favorites {
						row(w, f.ID, f.Title, stamp(f.CreatedAt))
					}
				})
			})
		},
	}
	pageFlags(cmd, &page)
	return cmd
}

func (c *cli) followCmd() *cobra.Command {
	return c.followToggleCmd("follow", "Follow a user", true)
}

func (c *cli) unfollowCmd() *cobra.Command {
	return c.followToggleCmd("unfollow", "Stop following a user", false)
}

func (c *cli) followToggleCmd(use, short string, follow bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " USER_ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.call(cmd, func(ctx context.Context, client *forumsdk.Client) error {
				op := client.Unfollow
				if follow {
					op = client.Follow
				}
				if err := op(ctx, id); err != nil {
					return err
				}
				return c.done("%sed user %d", use, id)
			})
		},
	}
}

func (c *cli) followersCmd() *cobra.Command {
	return c.followListCmd("followers", "List a user's followers", (*forumsdk.Client).ListFollowers)
}

func (c *cli) followingCmd() *cobra.Command {
	return c.followListCmd("following", "List who a user follows", (*forumsdk.Client).ListFollowing)
}

type followLister func(*forumsdk.Client, context.Context, int64, forumsdk.Page) (*forumsdk.FollowPage, error)

func (c *cli) followListCmd(use, short string, list followLister) *cobra.Command {
	var page forumsdk.Page
	cmd := &cobra.Command{
		Use:   use + " USER_ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.call(cmd, func(ctx context.Context, client *forumsdk.Client) error {
				resp, err := list(client, ctx, id, page)
				if err != nil {
					return err
				}
				return c.render(resp, func(w io.Writer) {
					row(w, "ID", "USERNAME", "FOLLOWED")
					for _, u := range resp.Users {
						row(w, u.ID, u.Username, u.IsFollowed)
					}
				})
			})
		},
	}
	pageFlags(cmd, &page)
	return cmd
}

func toggled(on bool, yes, no string) string {
	if on {
		return yes
	}
	return no
}
