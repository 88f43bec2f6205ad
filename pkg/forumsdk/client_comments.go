package forumsdk

import (
	"context"
	"net/http"
	"strconv"
)

// ListComments returns top-level comments on a post.
func (c *Client) ListComments(ctx context.Context, q CommentsQuery) (*CommentPage, error) {
	query := pageQuery(Page{Page: q.Page, Size: q.Size})
	query.Set("target_type", strconv.Itoa(int(q.TargetType)))
	query.Set("target_id", strconv.FormatInt(q.TargetID, 10))

	var resp envelope[CommentPage]
	if err := c.do(ctx, http.MethodGet, "/posts/comments", query, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// PostComment comments on a post, or replies to a comment when
// req.TargetType is TargetComment.
func (c *Client) PostComment(ctx context.Context, req PostCommentRequest) error {
	return c.do(ctx, http.MethodPost, "/comments", nil, req, nil)
}

func (c *Client) ListReplies(ctx context.Context, parentID int64) (*ReplyList, error) {
	var resp envelope[ReplyList]
	path := "/comments/" + strconv.FormatInt(parentID, 10) + "/replies"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func (c *Client) DeleteComment(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, idPath("/comments/", id), nil, nil, nil)
}
