package main

import (
	"context"
	"fmt"
	"io"

	"github.com/aussiebroadwan/forum/pkg/forumsdk"
	"github.com/spf13/cobra"
)

func (c *cli) notificationsCmd() *cobra.Command {
	notificationsCmd := &cobra.Command{Use: "notifications", Short: "Notification operations"}

	var page forumsdk.Page
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List notifications, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.call(cmd, func(ctx context.Context, client *forumsdk.Client) error {
				resp, err := client.ListNotifications(ctx, page)
				if err != nil {
					return err
				}
				return c.render(resp, func(w io.Writer) {
					row(w, "ID", "FROM", "READ", "CREATED", "TEXT")
					for _, n := range resp.Notifications {
						row(w, n.ID, n.ActorName, n.IsRead, stamp(n.CreatedAt), n.Content)
					}
				})
			})
		},
	}
	pageFlags(listCmd, &page)
	notificationsCmd.AddCommand(listCmd)

	notificationsCmd.AddCommand(&cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.call(cmd, func(ctx context.Context, client *forumsdk.Client) error {
				if err := client.MarkAllNotificationsRead(ctx); err != nil {
					return err
				}
				return c.done("all notifications read")
			})
		},
	})

	notificationsCmd.AddCommand(&cobra.Command{
		Use:   "count",
		Short: "Show the number of unread notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.call(cmd, func(ctx context.Context, client *forumsdk.Client) error {
				n, err := client.UnreadNotificationCount(ctx)
				if err != nil {
					return err
				}
				return c.render(map[string]int{"count": n}, func(w io.Writer) {
					_, _ = fmt.Fprintln(w, n)
				})
			})
		},
	})

	return notificationsCmd
}
