package forumsdk

import "strings"

// StaticURL resolves a backend-relative asset path (avatars, article
// images) against the base URL. Absolute http(s) URLs and the empty
// string are returned unchanged.
func (c *Client) StaticURL(path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.BaseURL + path
}
