package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"parenthelper/internal/store"
)

type newsletterRequest struct {
	Email    string `json:"email"`
	Postcode string `json:"postcode"`
}

func (s *Server) handleNewsletterSubscribe(w http.ResponseWriter, r *http.Request) {
	var req newsletterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		writeValidationErrors(w, map[string]string{"email": "A valid email address is required"})
		return
	}

	if err := s.content.Subscribe(r.Context(), email, req.Postcode); err != nil {
		if errors.Is(err, store.ErrEmailSubscribed) {
			writeError(w, http.StatusConflict, "This email is already subscribed")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to subscribe")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Subscribed. Welcome to the newsletter!",
	})
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid limit parameter")
		return
	}

	posts, err := s.content.Posts(r.Context(), intOrZero(limit))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch posts")
		return
	}
	if posts == nil {
		posts = []store.BlogPost{}
	}
	writeList(w, listResponse{Data: posts, Count: len(posts)})
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	post, err := s.content.Post(r.Context(), slug)
	if err != nil {
		if errors.Is(err, store.ErrPostNotFound) {
			writeError(w, http.StatusNotFound, "Post not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch post")
		return
	}
	writeData(w, http.StatusOK, post)
}
