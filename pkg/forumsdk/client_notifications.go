package forumsdk

import (
	"context"
	"net/http"
)

func (c *Client) ListNotifications(ctx context.Context, p Page) (*NotificationPage, error) {
	var resp envelope[NotificationPage]
	if err := c.do(ctx, http.MethodGet, "/notifications", pageQuery(p), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/notifications/read-all", nil, nil, nil)
}

func (c *Client) UnreadNotificationCount(ctx context.Context) (int, error) {
	var resp unreadCount
	if err := c.do(ctx, http.MethodGet, "/notifications/count", nil, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}
