package forumtest

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/forum/pkg/httpx"
)

type postItem struct {
	ID         int64
	Type       int
	AuthorID   int64
	AuthorName string
	Title      string
	CreateAt   time.Time
	UpdatedAt  time.Time
}

func (s *Server) item(p *post) postItem {
	return postItem{
		ID:         p.id,
		Type:       p.kind,
		AuthorID:   p.authorID,
		AuthorName: s.db.name(p.authorID),
		Title:      p.title,
		CreateAt:   p.createdAt,
		UpdatedAt:  p.updatedAt,
	}
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	page, size := paging(r)
	kind, _ := strconv.Atoi(r.URL.Query().Get("type"))
	keyword := r.URL.Query().Get("keyword")

	s.mu.Lock()
	defer s.mu.Unlock()

	posts := s.db.publishedPosts(func(p *post) bool {
		if kind != 0 && p.kind != kind {
			return false
		}
		return keyword == "" || strings.Contains(p.title, keyword) || strings.Contains(p.content, keyword)
	})

	start, end := window(len(posts), page, size)
	list := make([]postItem, 0, end-start)
	for _, p := range posts[start:end] {
		list = append(list, s.item(p))
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"list":      list,
		"total":     len(posts),
		"page":      page,
		"page_size": size,
	})
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type    int    `json:"type"`
		Title   string `json:"title"`
		Content string `json:"content"`
		Status  *int   `json:"status"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Type != 1 && req.Type != 2 {
		httpx.WriteError(w, http.StatusBadRequest, "type must be 1 or 2")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		httpx.WriteError(w, http.StatusBadRequest, "title is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	p := &post{
		id:        s.db.id(),
		kind:      req.Type,
		authorID:  userFrom(r.Context()),
		title:     req.Title,
		content:   req.Content,
		createdAt: now,
		updatedAt: now,
	}
	if req.Status != nil {
		p.status = *req.Status
	}
	s.db.posts[p.id] = p

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"post": map[string]any{"ID": p.id, "Title": p.title},
	})
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.db.posts[pathID(r)]
	if !ok || (p.status == 1 && p.authorID != userFrom(r.Context())) {
		httpx.WriteError(w, http.StatusNotFound, "post not found")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"ID":         p.id,
		"Type":       p.kind,
		"AuthorID":   p.authorID,
		"AuthorName": s.db.name(p.authorID),
		"Title":      p.title,
		"content":    p.content,
		"Status":     p.status,
		"LikeCount":  len(s.db.likes[like{targetType: p.kind, targetID: p.id}]),
		"CreatedAt":  p.createdAt,
		"UpdatedAt":  p.updatedAt,
	})
}

// ownPost returns the post named in the path if the caller wrote it.
// Callers hold s.mu.
func (s *Server) ownPost(w http.ResponseWriter, r *http.Request) (*post, bool) {
	p, ok := s.db.posts[pathID(r)]
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, "post not found")
		return nil, false
	}
	if p.authorID != userFrom(r.Context()) {
		httpx.WriteError(w, http.StatusForbidden, "not the author")
		return nil, false
	}
	return p, true
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   *string `json:"title"`
		Content *string `json:"content"`
		Status  *int    `json:"status"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.ownPost(w, r)
	if !ok {
		return
	}
	if req.Title != nil {
		p.title = *req.Title
	}
	if req.Content != nil {
		p.content = *req.Content
	}
	if req.Status != nil {
		p.status = *req.Status
	}
	p.updatedAt = time.Now()

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.ownPost(w, r)
	if !ok {
		return
	}
	delete(s.db.posts, p.id)

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleDrafts(w http.ResponseWriter, r *http.Request) {
	page, size := paging(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	drafts := s.db.drafts(userFrom(r.Context()))
	start, end := window(len(drafts), page, size)
	list := make([]postItem, 0, end-start)
	for _, p := range drafts[start:end] {
		list = append(list, s.item(p))
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "ok",
		"data": map[string]any{
			"drafts": list,
			"total":  len(drafts),
			"page":   page,
			"size":   size,
		},
	})
}
