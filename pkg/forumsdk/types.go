package forumsdk

import "time"

// TargetType identifies what a comment, reaction or favorite refers to.
type TargetType int

const (
	TargetArticle  TargetType = 1
	TargetQuestion TargetType = 2
	// TargetComment is only valid for comments (a reply) and reactions.
	TargetComment TargetType = 3
)

// PostType distinguishes articles from questions.
type PostType int

const (
	PostArticle  PostType = 1
	PostQuestion PostType = 2
)

// PostStatus is the publication state of a post.
type PostStatus int

const (
	StatusPublished PostStatus = 0
	StatusDraft     PostStatus = 1
)

// envelope is the {message, data} wrapper most list endpoints use.
type envelope[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// Page selects a page of a listing. Zero values leave the backend default.
type Page struct {
	Page int
	Size int
}

// ========== Auth ==========

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	Message  string `json:"message"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// LoginResponse accepts both the legacy "token" field and the
// access/refresh pair.
type LoginResponse struct {
	Message      string `json:"message"`
	UserID       int64  `json:"user_id"`
	Username     string `json:"username"`
	Token        string `json:"token"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Access returns the access token whichever field carried it.
func (r *LoginResponse) Access() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.Token
}

type changePassRequest struct {
	OldPass string `json:"old_pass"`
	NewPass string `json:"new_pass"`
}

// ========== Posts ==========

type ListPostsQuery struct {
	Page    int
	Size    int
	Type    PostType
	Keyword string
}

type ListPostsResponse struct {
	List     []PostListItem `json:"list"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// PostListItem mirrors the backend's untagged struct, hence PascalCase keys.
type PostListItem struct {
	ID         int64     `json:"ID"`
	Type       PostType  `json:"Type"`
	AuthorID   int64     `json:"AuthorID"`
	AuthorName string    `json:"AuthorName"`
	Title      string    `json:"Title"`
	CreateAt   time.Time `json:"CreateAt"`
	UpdatedAt  time.Time `json:"UpdatedAt"`
}

type PostDetail struct {
	ID         int64      `json:"ID"`
	Type       PostType   `json:"Type"`
	AuthorID   int64      `json:"AuthorID"`
	AuthorName string     `json:"AuthorName"`
	Title      string     `json:"Title"`
	Content    string     `json:"content"`
	Status     PostStatus `json:"Status"`
	LikeCount  int64      `json:"LikeCount"`
	CreatedAt  time.Time  `json:"CreatedAt"`
	UpdatedAt  time.Time  `json:"UpdatedAt"`
}

type CreatePostRequest struct {
	Type    PostType    `json:"type"`
	Title   string      `json:"title"`
	Content string      `json:"content"`
	Status  *PostStatus `json:"status,omitempty"`
}

type CreatePostResponse struct {
	OK   bool `json:"ok"`
	Post struct {
		ID int64 `json:"ID"`
	} `json:"post"`
}

// UpdatePostRequest leaves nil fields untouched on the backend.
type UpdatePostRequest struct {
	Title   *string     `json:"title,omitempty"`
	Content *string     `json:"content,omitempty"`
	Status  *PostStatus `json:"status,omitempty"`
}

type DraftPage struct {
	Drafts []PostListItem `json:"drafts"`
	Total  int64          `json:"total"`
	Page   int            `json:"page"`
	Size   int            `json:"size"`
}

// ========== Comments ==========

type CommentsQuery struct {
	TargetType TargetType
	TargetID   int64
	Page       int
	Size       int
}

type Comment struct {
	ID         int64     `json:"id"`
	AuthorID   int64     `json:"author_id"`
	AuthorName string    `json:"author_name,omitempty"`
	Content    string    `json:"content"`
	Depth      int       `json:"depth"`
	CreatedAt  time.Time `json:"created_at"`
	LikeCount  int64     `json:"like_count"`
	IsLiked    bool      `json:"is_liked"`
}

type CommentPage struct {
	Comments []Comment `json:"comments"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	Size     int       `json:"size"`
}

type ReplyList struct {
	Replies []Comment `json:"replies"`
	Total   int64     `json:"total"`
}

type PostCommentRequest struct {
	TargetType TargetType `json:"target_type"`
	TargetID   int64      `json:"target_id"`
	Content    string     `json:"content"`
}

// ========== Users & follows ==========

type UserPublicInfo struct {
	ID             int64         `json:"id"`
	Username       string        `json:"username"`
	AvatarURL      string        `json:"avatar_url,omitempty"`
	Profile        string        `json:"profile,omitempty"`
	Role           int           `json:"role"`
	IsVIP          bool          `json:"is_vip"`
	VIPExpiresAt   *time.Time    `json:"vip_expires_at,omitempty"`
	Posts          []PostSummary `json:"posts"`
	PostTotal      int64         `json:"post_total"`
	FollowingCount int64         `json:"following_count"`
	FollowersCount int64         `json:"followers_count"`
	Page           int           `json:"page"`
	Size           int           `json:"size"`
}

type PostSummary struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	Status    PostStatus `json:"status"`
}

type FollowUser struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	AvatarURL  string `json:"avatar_url,omitempty"`
	Profile    string `json:"profile,omitempty"`
	IsFollowed bool   `json:"is_followed"`
}

type FollowPage struct {
	Users []FollowUser `json:"users"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Size  int          `json:"size"`
}

type updateProfileRequest struct {
	Profile *string `json:"profile,omitempty"`
}

// ========== Reactions & favorites ==========

type targetRef struct {
	TargetType TargetType `json:"target_type"`
	TargetID   int64      `json:"target_id"`
}

type reactionResponse struct {
	Message string `json:"message"`
	Status  bool   `json:"status"`
}

type favoriteState struct {
	IsFavorited bool `json:"is_favorited"`
}

type Favorite struct {
	ID        int64     `json:"id"`
	Type      PostType  `json:"type"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

type FavoritePage struct {
	Favorites []Favorite `json:"favorites"`
	Total     int64      `json:"total"`
	Page      int        `json:"page"`
	Size      int        `json:"size"`
}

// ========== Notifications ==========

type Notification struct {
	ID         int64      `json:"id"`
	Type       int        `json:"type"`
	ActorID    int64      `json:"actor_id"`
	ActorName  string     `json:"actor_name,omitempty"`
	TargetType TargetType `json:"target_type,omitempty"`
	TargetID   int64      `json:"target_id,omitempty"`
	Content    string     `json:"content"`
	IsRead     bool       `json:"is_read"`
	CreatedAt  time.Time  `json:"created_at"`
}

type NotificationPage struct {
	Notifications []Notification `json:"notifications"`
	Total         int64          `json:"total"`
	Page          int            `json:"page"`
	Size          int            `json:"size"`
}

type unreadCount struct {
	Count int `json:"count"`
}

// ========== Uploads ==========

type uploadImageResponse struct {
	Message  string `json:"message"`
	ImageURL string `json:"image_url"`
}

type uploadAvatarResponse struct {
	AvatarURL string `json:"avatar_url"`
}
