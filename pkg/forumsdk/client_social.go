package forumsdk

import (
	"context"
	"net/http"
)

// ToggleReaction likes or unlikes a post or comment and reports whether
// the target is liked afterwards.
func (c *Client) ToggleReaction(ctx context.Context, target TargetType, id int64) (bool, error) {
	var resp reactionResponse
	err := c.do(ctx, http.MethodPost, "/reactions", nil, targetRef{TargetType: target, TargetID: id}, &resp)
	if err != nil {
		return false, err
	}
	return resp.Status, nil
}

// ToggleFavorite favorites or unfavorites a post and reports the new state.
func (c *Client) ToggleFavorite(ctx context.Context, target TargetType, id int64) (bool, error) {
	var resp envelope[favoriteState]
	err := c.do(ctx, http.MethodPost, "/favorites", nil, targetRef{TargetType: target, TargetID: id}, &resp)
	if err != nil {
		return false, err
	}
	return resp.Data.IsFavorited, nil
}

func (c *Client) ListFavorites(ctx context.Context, p Page) (*FavoritePage, error) {
	var resp envelope[FavoritePage]
	if err := c.do(ctx, http.MethodGet, "/favorites", pageQuery(p), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func (c *Client) Follow(ctx context.Context, userID int64) error {
	return c.do(ctx, http.MethodPost, idPath("/follow/", userID), nil, nil, nil)
}

func (c *Client) Unfollow(ctx context.Context, userID int64) error {
	return c.do(ctx, http.MethodDelete, idPath("/follow/", userID), nil, nil, nil)
}

// ListFollowers returns the users following userID.
func (c *Client) ListFollowers(ctx context.Context, userID int64, p Page) (*FollowPage, error) {
	return c.followList(ctx, idPath("/users/followers/", userID), p)
}

// ListFollowing returns the users userID follows.
func (c *Client) ListFollowing(ctx context.Context, userID int64, p Page) (*FollowPage, error) {
	return c.followList(ctx, idPath("/users/following/", userID), p)
}

func (c *Client) followList(ctx context.Context, path string, p Page) (*FollowPage, error) {
	var resp envelope[FollowPage]
	if err := c.do(ctx, http.MethodGet, path, pageQuery(p), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}
