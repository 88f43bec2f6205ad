package forumsdk

import (
	"context"
	"net/http"
	"strconv"
)

// ListPosts returns a page of published posts.
func (c *Client) ListPosts(ctx context.Context, q ListPostsQuery) (*ListPostsResponse, error) {
	query := pageQuery(Page{Page: q.Page, Size: q.Size})
	if q.Type != 0 {
		query.Set("type", strconv.Itoa(int(q.Type)))
	}
	if q.Keyword != "" {
		query.Set("keyword", q.Keyword)
	}

	var resp ListPostsResponse
	if err := c.do(ctx, http.MethodGet, "/posts", query, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetPost(ctx context.Context, id int64) (*PostDetail, error) {
	var resp PostDetail
	if err := c.do(ctx, http.MethodGet, idPath("/posts/", id), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreatePost publishes a post, or saves a draft when req.Status is
// StatusDraft. It returns the new post id.
func (c *Client) CreatePost(ctx context.Context, req CreatePostRequest) (int64, error) {
	var resp CreatePostResponse
	if err := c.do(ctx, http.MethodPost, "/posts", nil, req, &resp); err != nil {
		return 0, err
	}
	return resp.Post.ID, nil
}

func (c *Client) UpdatePost(ctx context.Context, id int64, req UpdatePostRequest) error {
	return c.do(ctx, http.MethodPut, idPath("/posts/", id), nil, req, nil)
}

// SetPostStatus publishes or unpublishes a post.
func (c *Client) SetPostStatus(ctx context.Context, id int64, status PostStatus) error {
	return c.UpdatePost(ctx, id, UpdatePostRequest{Status: &status})
}

func (c *Client) DeletePost(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, idPath("/posts/", id), nil, nil, nil)
}

// ListDrafts returns the caller's unpublished posts.
func (c *Client) ListDrafts(ctx context.Context, p Page) (*DraftPage, error) {
	var resp envelope[DraftPage]
	if err := c.do(ctx, http.MethodGet, "/draft", pageQuery(p), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}
