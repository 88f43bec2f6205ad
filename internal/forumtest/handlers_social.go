package forumtest

import (
	"net/http"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/forum/pkg/httpx"
)

const targetComment = 3

type commentItem struct {
	ID         int64     `json:"id"`
	AuthorID   int64     `json:"author_id"`
	AuthorName string    `json:"author_name,omitempty"`
	Content    string    `json:"content"`
	Depth      int       `json:"depth"`
	CreatedAt  time.Time `json:"created_at"`
	LikeCount  int       `json:"like_count"`
	IsLiked    bool      `json:"is_liked"`
}

func (s *Server) commentItem(c *comment, viewer int64) commentItem {
	likes := s.db.likes[like{targetType: targetComment, targetID: c.id}]
	return commentItem{
		ID:         c.id,
		AuthorID:   c.authorID,
		AuthorName: s.db.name(c.authorID),
		Content:    c.content,
		Depth:      c.depth,
		CreatedAt:  c.createdAt,
		LikeCount:  len(likes),
		IsLiked:    likes[viewer],
	}
}

func (s *Server) commentsWhere(match func(*comment) bool) []*comment {
	var out []*comment
	for _, c := range s.db.comments {
		if match(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	page, size := paging(r)
	targetType, _ := strconv.Atoi(r.URL.Query().Get("target_type"))
	targetID, _ := strconv.ParseInt(r.URL.Query().Get("target_id"), 10, 64)
	if targetType != 1 && targetType != 2 {
		httpx.WriteError(w, http.StatusBadRequest, "target_type must be 1 or 2")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	viewer := userFrom(r.Context())
	all := s.commentsWhere(func(c *comment) bool {
		return c.targetType == targetType && c.targetID == targetID
	})
	start, end := window(len(all), page, size)
	items := make([]commentItem, 0, end-start)
	for _, c := range all[start:end] {
		items = append(items, s.commentItem(c, viewer))
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "ok",
		"data": map[string]any{
			"comments": items,
			"total":    len(all),
			"page":     page,
			"size":     size,
		},
	})
}

func (s *Server) handlePostComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TargetType int    `json:"target_type"`
		TargetID   int64  `json:"target_id"`
		Content    string `json:"content"`
	}
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		httpx.WriteError(w, http.StatusBadRequest, "content is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	author := userFrom(r.Context())
	c := &comment{
		id:         s.db.id(),
		targetType: req.TargetType,
		targetID:   req.TargetID,
		authorID:   author,
		content:    req.Content,
		createdAt:  time.Now(),
	}

	var owner int64
	switch req.TargetType {
	case 1, 2:
		p, ok := s.db.posts[req.TargetID]
		if !ok {
			httpx.WriteError(w, http.StatusNotFound, "post not found")
			return
		}
		owner = p.authorID
	case targetComment:
		parent, ok := s.db.comments[req.TargetID]
		if !ok {
			httpx.WriteError(w, http.StatusNotFound, "comment not found")
			return
		}
		c.parentID = parent.id
		c.depth = parent.depth + 1
		owner = parent.authorID
	default:
		httpx.WriteError(w, http.StatusBadRequest, "invalid target_type")
		return
	}

	s.db.comments[c.id] = c
	s.db.notify(owner, &notification{
		kind:       1,
		actorID:    author,
		targetType: req.TargetType,
		targetID:   req.TargetID,
		content:    s.db.name(author) + " commented: " + req.Content,
	})

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"message": "comment created", "id": c.id})
}

func (s *Server) handleReplies(w http.ResponseWriter, r *http.Request) {
	parent := pathID(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	viewer := userFrom(r.Context())
	replies := s.commentsWhere(func(c *comment) bool { return c.parentID == parent })
	items := make([]commentItem, 0, len(replies))
	for _, c := range replies {
		items = append(items, s.commentItem(c, viewer))
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "ok",
		"data":    map[string]any{"replies": items, "total": len(items)},
	})
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.db.comments[pathID(r)]
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, "comment not found")
		return
	}
	if c.authorID != userFrom(r.Context()) {
		httpx.WriteError(w, http.StatusForbidden, "not the author")
		return
	}
	delete(s.db.comments, c.id)

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"message": "comment deleted"})
}

type targetRef struct {
	TargetType int   `json:"target_type"`
	TargetID   int64 `json:"target_id"`
}

func (s *Server) handleReaction(w http.ResponseWriter, r *http.Request) {
	var req targetRef
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var owner int64
	switch req.TargetType {
	case 1, 2:
		p, ok := s.db.posts[req.TargetID]
		if !ok {
			httpx.WriteError(w, http.StatusNotFound, "post not found")
			return
		}
		owner = p.authorID
	case targetComment:
		c, ok := s.db.comments[req.TargetID]
		if !ok {
			httpx.WriteError(w, http.StatusNotFound, "comment not found")
			return
		}
		owner = c.authorID
	default:
		httpx.WriteError(w, http.StatusBadRequest, "invalid target_type")
		return
	}

	actor := userFrom(r.Context())
	liked := s.db.toggleLike(actor, like{targetType: req.TargetType, targetID: req.TargetID})
	if liked {
		s.db.notify(owner, &notification{
			kind:       2,
			actorID:    actor,
			targetType: req.TargetType,
			targetID:   req.TargetID,
			content:    s.db.name(actor) + " liked your post",
		})
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"message": "ok", "status": liked})
}

func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	var req targetRef
	if !decode(w, r, &req) {
		return
	}
	if req.TargetType != 1 && req.TargetType != 2 {
		httpx.WriteError(w, http.StatusBadRequest, "target_type must be 1 or 2")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.db.posts[req.TargetID]; !ok {
		httpx.WriteError(w, http.StatusNotFound, "post not found")
		return
	}

	me := userFrom(r.Context())
	favs := s.db.favorites[me]
	favorited := true
	if i := slices.Index(favs, req.TargetID); i >= 0 {
		s.db.favorites[me] = slices.Delete(favs, i, i+1)
		favorited = false
	} else {
		s.db.favorites[me] = append(favs, req.TargetID)
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "ok",
		"data":    map[string]any{"is_favorited": favorited},
	})
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	page, size := paging(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	var items []map[string]any
	ids := s.db.favorites[userFrom(r.Context())]
	for i := len(ids) - 1; i >= 0; i-- {
		if p, ok := s.db.posts[ids[i]]; ok {
			items = append(items, map[string]any{
				"id":         p.id,
				"type":       p.kind,
				"title":      p.title,
				"created_at": p.createdAt,
			})
		}
	}
	start, end := window(len(items), page, size)

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "ok",
		"data": map[string]any{
			"favorites": items[start:end],
			"total":     len(items),
			"page":      page,
			"size":      size,
		},
	})
}

func (s *Server) handleFollow(w http.ResponseWriter, r *http.Request) {
	target := pathID(r)
	me := userFrom(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.db.users[target]; !ok {
		httpx.WriteError(w, http.StatusNotFound, "user not found")
		return
	}
	if target == me {
		httpx.WriteError(w, http.StatusBadRequest, "cannot follow yourself")
		return
	}

	set := s.db.follows[me]
	if set == nil {
		set = make(map[int64]bool)
		s.db.follows[me] = set
	}
	if !set[target] {
		set[target] = true
		s.db.notify(target, &notification{
			kind:    3,
			actorID: me,
			content: s.db.name(me) + " followed you",
		})
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"message": "followed"})
}

func (s *Server) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.db.follows[userFrom(r.Context())], pathID(r))
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"message": "unfollowed"})
}

func (s *Server) handleFollowers(w http.ResponseWriter, r *http.Request) {
	s.followList(w, r, func(target int64) []int64 {
		var ids []int64
		for follower, set := range s.db.follows {
			if set[target] {
				ids = append(ids, follower)
			}
		}
		return ids
	})
}

func (s *Server) handleFollowing(w http.ResponseWriter, r *http.Request) {
	s.followList(w, r, func(target int64) []int64 {
		var ids []int64
		for followee := range s.db.follows[target] {
			ids = append(ids, followee)
		}
		return ids
	})
}

func (s *Server) followList(w http.ResponseWriter, r *http.Request, ids func(int64) []int64) {
	page, size := paging(r)
	target := pathID(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.db.users[target]; !ok {
		httpx.WriteError(w, http.StatusNotFound, "user not found")
		return
	}

	me := userFrom(r.Context())
	list := ids(target)
	slices.Sort(list)
	start, end := window(len(list), page, size)

	users := make([]map[string]any, 0, end-start)
	for _, id := range list[start:end] {
		u := s.db.users[id]
		users = append(users, map[string]any{
			"id":          u.id,
			"username":    u.username,
			"avatar_url":  u.avatarURL,
			"profile":     u.profile,
			"is_followed": s.db.follows[me][u.id],
		})
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "ok",
		"data": map[string]any{
			"users": users,
			"total": len(list),
			"page":  page,
			"size":  size,
		},
	})
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	page, size := paging(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.db.notifications[userFrom(r.Context())]
	items := make([]map[string]any, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		n := all[i]
		items = append(items, map[string]any{
			"id":          n.id,
			"type":        n.kind,
			"actor_id":    n.actorID,
			"actor_name":  s.db.name(n.actorID),
			"target_type": n.targetType,
			"target_id":   n.targetID,
			"content":     n.content,
			"is_read":     n.read,
			"created_at":  n.createdAt,
		})
	}
	start, end := window(len(items), page, size)

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "ok",
		"data": map[string]any{
			"notifications": items[start:end],
			"total":         len(items),
			"page":          page,
			"size":          size,
		},
	})
}

func (s *Server) handleReadAll(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.db.notifications[userFrom(r.Context())] {
		n.read = true
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"message": "ok"})
}

func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, n := range s.db.notifications[userFrom(r.Context())] {
		if !n.read {
			count++
		}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"count": count})
}
