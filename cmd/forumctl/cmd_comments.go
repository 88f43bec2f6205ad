package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aussiebroadwan/forum/pkg/forumsdk"
	"github.com/spf13/cobra"
)

func (c *cli) commentsCmd() *cobra.Command {
	commentsCmd := &cobra.Command{Use: "comments", Short: "Comment operations"}

	var page forumsdk.Page
	listCmd := &cobra.Command{
		Use:   "list TARGET ID",
		Short: "List comments on an article, question or comment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, id, err := targetArgs(args)
			if err != nil {
				return err
			}
			q := forumsdk.CommentsQuery{TargetType: target, TargetID: id, Page: page.Page, Size: page.Size}
			return c.call(cmd, func(ctx context.Context, client *forumsdk.Client) error {
				resp, err := client.ListComments(ctx, q)
				if err != nil {
					return err
				}
				return c.render(resp, func(w io.Writer) {
					commentTable(w, resp.Comments)
					_, _ = fmt.Fprintf(w, "page %d, %d of %d\n", resp.Page, len(resp.Comments), resp.Total)
				})
			})
		},
	}
	pageFlags(listCmd, &page)
	commentsCmd.AddCommand(listCmd)

	commentsCmd.AddCommand(&cobra.Command{
		Use:   "replies COMMENT_ID",
		Short: "List replies under a comment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.call(cmd, func(ctx context.Context, client *forumsdk.Client) error {
				resp, err := client.ListReplies(ctx, id)
				if err != nil {
					return err
				}
				return c.render(resp, func(w io.Writer) { commentTable(w, resp.Replies) })
			})
		},
	})

	commentsCmd.AddCommand(&cobra.Command{
		Use:   "add TARGET ID TEXT...",
		Short: "Comment on an article, question or comment",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, id, err := targetArgs(args)
			if err != nil {
				return err
			}
			req := forumsdk.PostCommentRequest{
				TargetType: target,
				TargetID:   id,
				Content:    strings.Join(args[2:], " "),
			}
			return c.call(cmd, func(ctx context.Context, client *forumsdk.Client) error {
				if err := client.PostComment(ctx, req); err != nil {
					return err
				}
				return c.done("comment posted")
			})
		},
	})

	commentsCmd.AddCommand(&cobra.Command{
		Use:   "delete COMMENT_ID",
		Short: "Delete one of your comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.call(cmd, func(ctx context.Context, client *forumsdk.Client) error {
				if err := client.DeleteComment(ctx, id); err != nil {
					return err
				}
				return c.done("deleted comment %d", id)
			})
		},
	})

	return commentsCmd
}

func commentTable(w io.Writer, comments []forumsdk.Comment) {
	row(w, "ID", "AUTHOR", "LIKES", "CREATED", "TEXT")
	for _, cm := range comments {
		author := cm.AuthorName
		if author == "" {
			author = fmt.Sprintf("#%d", cm.AuthorID)
		}
		liked := fmt.Sprint(cm.LikeCount)
		if cm.IsLiked {
			liked += "*"
		}
		row(w, cm.ID, strings.Repeat("  ", cm.Depth)+author, liked, stamp(cm.CreatedAt), cm.Content)
	}
}
