package forumtest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/forum/pkg/httpx"
	"github.com/gorilla/mux"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

// paging reads page/size with the backend's defaults of 1 and 10.
func paging(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}
	return page, size
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	s.mu.Lock()
	u, err := s.db.addUser(req.Username, req.Password)
	s.mu.Unlock()
	if errors.Is(err, errExists) {
		httpx.WriteError(w, http.StatusConflict, err.Error())
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message":  "register success",
		"user_id":  u.id,
		"username": u.username,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.db.byName[req.Username]
	if !ok || u.password != req.Password {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	access, refresh, err := s.issue(u)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message":       "login success",
		"user_id":       u.id,
		"username":      u.username,
		"token":         access,
		"refresh_token": refresh,
	})
}

// handleRefresh rotates a refresh token: each one is accepted once.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	s.refreshCalls++
	gate := s.refreshGate
	status := s.refreshStatus
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}
	if s.refreshDelay > 0 {
		time.Sleep(s.refreshDelay)
	}
	if status != 0 {
		httpx.WriteError(w, status, http.StatusText(status))
		return
	}

	claims, err := s.signer.Verify(req.RefreshToken)
	if err != nil || claims.Type != "refresh" {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	userID, ok := s.refreshTokens[claims.ID]
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "refresh token already used")
		return
	}
	delete(s.refreshTokens, claims.ID)

	u, ok := s.db.users[userID]
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unknown user")
		return
	}

	access, refresh, err := s.issue(u)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"access_token":  access,
		"refresh_token": refresh,
	})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OldPass string `json:"old_pass"`
		NewPass string `json:"new_pass"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.db.users[userFrom(r.Context())]
	if u == nil || u.password != req.OldPass {
		httpx.WriteError(w, http.StatusBadRequest, "old password is incorrect")
		return
	}
	if req.NewPass == "" {
		httpx.WriteError(w, http.StatusBadRequest, "new password is required")
		return
	}
	u.password = req.NewPass

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}
