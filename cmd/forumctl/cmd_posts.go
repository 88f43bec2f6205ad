package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aussiebroadwan/forum/pkg/forumsdk"
	"github.com/spf13/cobra"
)

func (c *cli) postsCmd() *cobra.Command {
	postsCmd := &cobra.Command{Use: "posts", Short: "Post operations"}

	// list
	var (
		query    forumsdk.ListPostsQuery
		kindFlag string
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List published posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kind, err := parsePostType(kindFlag)
			if err != nil {
				return err
			}
			query.Type = kind
			return c.call(cmd, func(ctx context.Context, client *forumsdk.Client) error {
				resp, err := client.ListPosts(ctx, query)
				if err != nil {
					return err
				}
				return c.render(resp, func(w io.Writer) {
					postTable(w, resp.List)
					_, _ = fmt.Fprintf(w, "page %d, %d of %d\n", resp.Page, len(resp.List), resp.Total)
				})
			})
		},
	}
	listCmd.Flags().IntVar(&query.Page, "page", 1, "Page number")
	listCmd.Flags().IntVar(&query.Size, "size", 10, "Page size")
	listCmd.Flags().StringVarP(&kindFlag, "type", "t", "", "Filter by article or question")
	listCmd.Flags().StringVarP(&query.Keyword, "keyword", "k", "", "Title keyword")
	postsCmd.AddCommand(listCmd)

	// show
	postsCmd.AddCommand(&cobra.Command{
		Use:   "show POST_ID",
		Short: "Show a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.call(cmd, func(ctx context.Context, client *forumsdk.Client) error {
				post, err := client.GetPost(ctx, id)
				if err != nil {
					return err
				}
				return c.render(post, func(w io.Writer) {
					_, _ = fmt.Fprintf(w, "#%d %s\n", post.ID, post.Title)
					_, _ = fmt.Fprintf(w, "by %s, %s, %d likes\n\n", post.AuthorName, stamp(post.CreatedAt), post.LikeCount)
					_, _ = fmt.Fprintln(w, post.Content)
				})
			})
		},
	})

	// create
	var title, content, contentFile, createKind string
	var asDraft bool
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kind, err := parsePostType(createKind)
			if err != nil {
				return err
			}
			if kind == 0 {
				kind = forumsdk.PostArticle
			}
			body, err := readContent(content, contentFile)
			if err != nil {
				return err
			}
			req := forumsdk.CreatePostRequest{Type: kind, Title: title, Content: body}
			if asDraft {
				draft := forumsdk.StatusDraft
				req.Status = &draft
			}
			return c.call(cmd, func(ctx context.Context, client *forumsdk.Client) error {
				id, err := client.CreatePost(ctx, req)
				if err != nil {
					return err
				}
				return c.render(map[string]int64{"id": id}, func(w io.Writer) {
					_, _ = fmt.Fprintf(w, "created post %d\n", id)
				})
			})
		},
	}
	createCmd.Flags().StringVar(&title, "title", "", "Title (required)")
	createCmd.Flags().StringVar(&content, "content", "", "Body text")
	createCmd.Flags().StringVar(&contentFile, "content-file", "", "Read the body from a file")
	createCmd.Flags().StringVarP(&createKind, "type", "t", "article", "article or question")
	createCmd.Flags().BoolVar(&asDraft, "draft", false, "Save as draft")
	_ = createCmd.MarkFlagRequired("title")
	postsCmd.AddCommand(createCmd)

	// edit
	var editTitle, editContent, editFile string
	editCmd := &cobra.Command{
		Use:   "edit POST_ID",
		Short: "Change a post's title or body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var req forumsdk.UpdatePostRequest
			if cmd.Flags().Changed("title") {
				req.Title = &editTitle
			}
			if cmd.Flags().Changed("content") || editFile != "" {
				body, err := readContent(editContent, editFile)
				if err != nil {
					return err
				}
				req.Content = &body
			}
			if req.Title == nil && req.Content == nil {
				return fmt.Errorf("nothing to change: pass --title, --content or --content-file")
			}
			return c.call(cmd, func(ctx context.Context, client *forumsdk.Client) error {
				if err := client.UpdatePost(ctx, id, req); err != nil {
					return err
				}
				return c.done("updated post %d", id)
			})
		},
	}
	editCmd.Flags().StringVar(&editTitle, "title", "", "New title")
	editCmd.Flags().StringVar(&editContent, "content", "", "New body text")
	editCmd.Flags().StringVar(&editFile, "content-file", "", "Read the new body from a file")
	postsCmd.AddCommand(editCmd)

	postsCmd.AddCommand(
		c.postStatusCmd("publish", "Publish a draft", forumsdk.StatusPublished),
		c.postStatusCmd("unpublish", "Move a post back to drafts", forumsdk.StatusDraft),
	)

	// delete
	postsCmd.AddCommand(&cobra.Command{
		Use:   "delete POST_ID",
		Short: "Delete a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.call(cmd, func(ctx context.Context, client *forumsdk.Client) error {
				if err := client.DeletePost(ctx, id); err != nil {
					return err
				}
				return c.done("deleted post %d", id)
			})
		},
	})

	// drafts
	var draftPage forumsdk.Page
	draftsCmd := &cobra.Command{
		Use:   "drafts",
		Short: "List your drafts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.call(cmd, func(ctx context.Context, client *forumsdk.Client) error {
				resp, err := client.ListDrafts(ctx, draftPage)
				if err != nil {
					return err
				}
				return c.render(resp, func(w io.Writer) { postTable(w, resp.Drafts) })
			})
		},
	}
	pageFlags(draftsCmd, &draftPage)
	postsCmd.AddCommand(draftsCmd)

	return postsCmd
}

func (c *cli) postStatusCmd(use, short string, status forumsdk.PostStatus) *cobra.Command {
	return &cobra.Command{
		Use:   use + " POST_ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.call(cmd, func(ctx context.Context, client *forumsdk.Client) error {
				if err := client.SetPostStatus(ctx, id, status); err != nil {
					return err
				}
				return c.done("%sed post %d", use, id)
			})
		},
	}
}

func postTable(w io.Writer, posts []forumsdk.PostListItem) {
	row(w, "ID", "TYPE", "TITLE", "AUTHOR", "CREATED")
	for _, p := range posts {
		kind := "article"
		if p.Type == forumsdk.PostQuestion {
			kind = "question"
		}
		row(w, p.ID, kind, p.Title, p.AuthorName, stamp(p.CreateAt))
	}
}

// readContent prefers inline text and falls back to file.
func readContent(inline, file string) (string, error) {
	if file == "" {
		return inline, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	return string(data), nil
}
