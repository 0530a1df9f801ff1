package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nhle/brainmint/internal/integration"
	"github.com/nhle/brainmint/internal/model"
)

// handleListIntegrations returns the connected platforms keyed by name.
// Access tokens never leave the server.
func (s *Server) handleListIntegrations(c *gin.Context) {
	userID, ok := s.queryUserID(c)
	if !ok {
		return
	}

	list, err := s.store.ListIntegrations(c.Request.Context(), userID)
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make(map[model.Platform]integrationDTO, len(list))
	for _, in := range list {
		out[in.Platform] = newIntegrationDTO(in)
	}
	respondSuccess(c, http.StatusOK, gin.H{"integrations": out})
}

// handleSaveIntegration connects or reconnects a platform.
func (s *Server) handleSaveIntegration(c *gin.Context) {
	var req saveIntegrationRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if req.UserID <= 0 || req.Platform == "" || strings.TrimSpace(req.RepoURL) == "" {
		s.respondError(c, http.StatusBadRequest, errors.New("user_id, platform and repo_url required"))
		return
	}

	platform := model.Platform(req.Platform)
	err := s.store.SaveIntegration(c.Request.Context(), int64(req.UserID), model.Integration{
		Platform:    platform,
		RepoURL:     req.RepoURL,
		AccessToken: strings.TrimSpace(req.AccessToken),
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	respondMessage(c, fmt.Sprintf("%s connected successfully", platform))
}

// handleDeleteIntegration disconnects a platform.
func (s *Server) handleDeleteIntegration(c *gin.Context) {
	var req deleteIntegrationRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if req.UserID <= 0 || req.Platform == "" {
		s.respondError(c, http.StatusBadRequest, errors.New("user_id and platform required"))
		return
	}

	platform := model.Platform(req.Platform)
	if err := s.store.DeleteIntegration(c.Request.Context(), int64(req.UserID), platform); err != nil {
		s.fail(c, err)
		return
	}
	respondMessage(c, fmt.Sprintf("%s disconnected", platform))
}

// handleListRepos lists repositories through a connected platform.
func (s *Server) handleListRepos(c *gin.Context) {
	userID, ok := s.queryUserID(c)
	if !ok {
		return
	}
	platform := model.Platform(c.Query("platform"))
	if platform == "" {
		s.respondError(c, http.StatusBadRequest, errors.New("user_id and platform required"))
		return
	}
	if s.repos == nil {
		s.respondError(c, http.StatusServiceUnavailable, errors.New("repository listing is not configured"))
		return
	}

	in, err := s.store.GetIntegration(c.Request.Context(), userID, platform)
	if err != nil {
		s.fail(c, err)
		return
	}
	repos, err := s.repos.ListRepos(c.Request.Context(), in)
	if err != nil {
		status := statusFor(err)
		if integration.IsAuthError(err) || status == http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		s.respondError(c, status, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"repos": repos})
}
