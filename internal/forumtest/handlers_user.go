package forumtest

import (
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/aussiebroadwan/forum/pkg/httpx"
)

const maxUpload = 8 << 20

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	page, size := paging(r)
	id := pathID(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.db.users[id]
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, "user not found")
		return
	}

	posts := s.db.publishedPosts(func(p *post) bool { return p.authorID == id })
	start, end := window(len(posts), page, size)
	summaries := make([]map[string]any, 0, end-start)
	for _, p := range posts[start:end] {
		summaries = append(summaries, map[string]any{
			"id":         p.id,
			"title":      p.title,
			"created_at": p.createdAt,
			"status":     p.status,
		})
	}

	followers := 0
	for _, set := range s.db.follows {
		if set[id] {
			followers++
		}
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "ok",
		"data": map[string]any{
			"id":              u.id,
			"username":        u.username,
			"avatar_url":      u.avatarURL,
			"profile":         u.profile,
			"role":            0,
			"is_vip":          false,
			"posts":           summaries,
			"post_total":      len(posts),
			"following_count": len(s.db.follows[id]),
			"followers_count": followers,
			"page":            page,
			"size":            size,
		},
	})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Profile *string `json:"profile"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if u := s.db.users[userFrom(r.Context())]; u != nil && req.Profile != nil {
		u.profile = *req.Profile
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	url, ok := s.receiveFile(w, r, "avatar", "avatars")
	if !ok {
		return
	}

	s.mu.Lock()
	if u := s.db.users[userFrom(r.Context())]; u != nil {
		u.avatarURL = url
	}
	s.mu.Unlock()

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"avatar_url": url})
}

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	url, ok := s.receiveFile(w, r, "image", "images")
	if !ok {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"message": "upload success", "image_url": url})
}

// receiveFile parses a single-file multipart body and stores the file
// under /static/<dir>/. It records the request's Content-Type either way.
func (s *Server) receiveFile(w http.ResponseWriter, r *http.Request, field, dir string) (string, bool) {
	rec := Upload{Path: r.URL.Path, ContentType: r.Header.Get("Content-Type"), Field: field}

	if err := r.ParseMultipartForm(maxUpload); err != nil {
		s.recordUpload(rec)
		httpx.WriteError(w, http.StatusBadRequest, "invalid multipart body")
		return "", false
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		s.recordUpload(rec)
		httpx.WriteError(w, http.StatusBadRequest, fmt.Sprintf("missing form field %q", field))
		return "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.recordUpload(rec)
		httpx.WriteError(w, http.StatusBadRequest, "failed to read upload")
		return "", false
	}

	rec.Filename = header.Filename
	rec.Size = int64(len(data))
	s.recordUpload(rec)

	s.mu.Lock()
	url := fmt.Sprintf("/static/%s/%d_%s", dir, s.db.id(), path.Base(header.Filename))
	s.db.files[url] = data
	s.mu.Unlock()

	return url, true
}

func (s *Server) recordUpload(u Upload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads = append(s.uploads, u)
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	data, ok := s.db.files[r.URL.Path]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	_, _ = w.Write(data)
}
