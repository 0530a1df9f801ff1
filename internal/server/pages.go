package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nhle/brainmint/internal/model"
)

// handleListPages lists notes pages, most recently edited first.
func (s *Server) handleListPages(c *gin.Context) {
	userID, ok := s.queryUserID(c)
	if !ok {
		return
	}

	pages, err := s.store.ListPages(c.Request.Context(), userID)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"pages": pages})
}

// handleCreatePage adds a notes page.
func (s *Server) handleCreatePage(c *gin.Context) {
	var req createPageRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if req.UserID <= 0 || strings.TrimSpace(req.Title) == "" {
		s.respondError(c, http.StatusBadRequest, errors.New("user_id and title required"))
		return
	}

	page, err := s.store.CreatePage(c.Request.Context(), model.Page{
		UserID: int64(req.UserID),
		Title:  req.Title,
		Body:   req.Body,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"message": "Page created", "page": page})
}

// handleUpdatePage rewrites a page's title and body.
func (s *Server) handleUpdatePage(c *gin.Context) {
	var req updatePageRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if req.PageID <= 0 {
		s.respondError(c, http.StatusBadRequest, errors.New("page_id required"))
		return
	}

	err := s.store.UpdatePage(c.Request.Context(), model.Page{
		ID:    int64(req.PageID),
		Title: req.Title,
		Body:  req.Body,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	respondMessage(c, "Page updated")
}

// handleDeletePage removes a page.
func (s *Server) handleDeletePage(c *gin.Context) {
	var req pageIDRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if req.PageID <= 0 {
		s.respondError(c, http.StatusBadRequest, errors.New("page_id required"))
		return
	}

	if err := s.store.DeletePage(c.Request.Context(), int64(req.PageID)); err != nil {
		s.fail(c, err)
		return
	}
	respondMessage(c, "Page deleted")
}
