package forumsdk

import (
	"context"
	"io"
	"net/http"
)

// GetUser returns a user's public profile with a page of their posts.
func (c *Client) GetUser(ctx context.Context, id int64, p Page) (*UserPublicInfo, error) {
	var resp envelope[UserPublicInfo]
	if err := c.do(ctx, http.MethodGet, idPath("/user/", id), pageQuery(p), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// UpdateProfile sets the caller's profile text. A nil profile sends an
// empty update.
func (c *Client) UpdateProfile(ctx context.Context, profile *string) error {
	return c.do(ctx, http.MethodPut, "/profile", nil, updateProfileRequest{Profile: profile}, nil)
}

// UploadAvatar replaces the caller's avatar and returns its
// backend-relative URL; see StaticURL.
func (c *Client) UploadAvatar(ctx context.Context, filename string, r io.Reader) (string, error) {
	var resp uploadAvatarResponse
	if err := c.upload(ctx, "/avatar", "avatar", filename, r, &resp); err != nil {
		return "", err
	}
	return resp.AvatarURL, nil
}

// UploadArticleImage stores an image for embedding in a post body and
// returns its backend-relative URL.
func (c *Client) UploadArticleImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	var resp uploadImageResponse
	if err := c.upload(ctx, "/upload/article-image", "image", filename, r, &resp); err != nil {
		return "", err
	}
	return resp.ImageURL, nil
}
