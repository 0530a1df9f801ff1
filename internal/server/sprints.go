package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nhle/brainmint/internal/model"
)

// handleListSprints lists sprints with their task counts and the
// sprint covering today.
func (s *Server) handleListSprints(c *gin.Context) {
	userID, ok := s.queryUserID(c)
	if !ok {
		return
	}

	board, err := s.store.ListSprints(c.Request.Context(), userID, s.today())
	if err != nil {
		s.fail(c, err)
		return
	}

	resp := sprintsResponse{
		Sprints:      make([]sprintDTO, 0, len(board.Sprints)),
		ProjectTitle: board.ProjectTitle,
	}
	for _, sp := range board.Sprints {
		resp.Sprints = append(resp.Sprints, newSprintDTO(sp))
	}
	if board.Current != nil {
		cur := newSprintDTO(*board.Current)
		resp.CurrentSprint = &cur
	}
	respondSuccess(c, http.StatusOK, resp)
}

// handleCreateSprints replaces the user's sprints with the submitted
// plan.
func (s *Server) handleCreateSprints(c *gin.Context) {
	var req createSprintsRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if req.UserID <= 0 || len(req.Sprints) == 0 {
		s.respondError(c, http.StatusBadRequest, errors.New("user_id and sprints required"))
		return
	}

	plan := model.SprintPlan{UserID: int64(req.UserID), ProjectTitle: req.ProjectTitle}
	for i, sp := range req.Sprints {
		start, err := model.ParseDate(sp.StartDate)
		if err != nil {
			s.respondError(c, http.StatusBadRequest, fmt.Errorf("sprint %d: %w", i+1, err))
			return
		}
		end, err := model.ParseDate(sp.EndDate)
		if err != nil {
			s.respondError(c, http.StatusBadRequest, fmt.Errorf("sprint %d: %w", i+1, err))
			return
		}
		spec := model.SprintSpec{Title: sp.Title}
		if start != nil {
			spec.StartDate = *start
		}
		if end != nil {
			spec.EndDate = *end
		}
		plan.Sprints = append(plan.Sprints, spec)
	}

	if err := s.store.ReplaceSprints(c.Request.Context(), plan); err != nil {
		s.fail(c, err)
		return
	}
	respondMessage(c, "Sprints created successfully")
}

// handleDeleteSprints removes every sprint of the user.
func (s *Server) handleDeleteSprints(c *gin.Context) {
	var req userIDRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if req.UserID <= 0 {
		s.respondError(c, http.StatusBadRequest, errors.New("user_id required"))
		return
	}

	if err := s.store.DeleteSprints(c.Request.Context(), int64(req.UserID)); err != nil {
		s.fail(c, err)
		return
	}
	respondMessage(c, "Sprints deleted successfully")
}

// handleSummary returns the dashboard summary.
func (s *Server) handleSummary(c *gin.Context) {
	userID, ok := s.queryUserID(c)
	if !ok {
		return
	}

	summary, err := s.store.Summary(c.Request.Context(), userID, s.today())
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, summary)
}

// handleSprintReport returns the retrospective report.
func (s *Server) handleSprintReport(c *gin.Context) {
	userID, ok := s.queryUserID(c)
	if !ok {
		return
	}

	report, err := s.store.SprintReport(c.Request.Context(), userID, s.today())
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, report)
}
