package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aussiebroadwan/forum/pkg/forumsdk"
	"github.com/spf13/cobra"
)

func (c *cli) userCmd() *cobra.Command {
	var page forumsdk.Page
	cmd := &cobra.Command{
		Use:   "user USER_ID",
		Short: "Show a user's public profile and posts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.call(cmd, func(ctx context.Context, client *forumsdk.Client) error {
				info, err := client.GetUser(ctx, id, page)
				if err != nil {
					return err
				}
				info.AvatarURL = client.StaticURL(info.AvatarURL)
				return c.render(info, func(w io.Writer) {
					row(w, "user", fmt.Sprintf("%s (id %d)", info.Username, info.ID))
					if info.Profile != "" {
						row(w, "profile", info.Profile)
					}
					if info.AvatarURL != "" {
						row(w, "avatar", info.AvatarURL)
					}
					row(w, "followers", info.FollowersCount)
					row(w, "following", info.FollowingCount)
					row(w, "posts", info.PostTotal)
					for _, p := range info.Posts {
						row(w, "", fmt.Sprintf("#%d %s", p.ID, p.Title), stamp(p.CreatedAt))
					}
				})
			})
		},
	}
	pageFlags(cmd, &page)
	return cmd
}

func (c *cli) profileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile TEXT",
		Short: "Set your profile text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := args[0]
			return c.call(cmd, func(ctx context.Context, client *forumsdk.Client) error {
				if err := client.UpdateProfile(ctx, &text); err != nil {
					return err
				}
				return c.done("profile updated")
			})
		},
	}
}

func (c *cli) avatarCmd() *cobra.Command {
	return c.uploadCmd("avatar FILE", "Upload a new avatar", (*forumsdk.Client).UploadAvatar)
}

func (c *cli) uploadImageCmd() *cobra.Command {
	return c.uploadCmd("upload-image FILE", "Upload an image for use in a post", (*forumsdk.Client).UploadArticleImage)
}

type uploader func(*forumsdk.Client, context.Context, string, io.Reader) (string, error)

func (c *cli) uploadCmd(use, short string, upload uploader) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			return c.call(cmd, func(ctx context.Context, client *forumsdk.Client) error {
				path, err := upload(client, ctx, args[0], f)
				if err != nil {
					return err
				}
				url := client.StaticURL(path)
				return c.render(map[string]string{"url": url}, func(w io.Writer) {
					_, _ = fmt.Fprintln(w, url)
				})
			})
		},
	}
}
