package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nhle/brainmint/internal/model"
)

var errTaskIDRequired = errors.New("task_id required")

// handleListTasks returns the user's board tasks segmented by column.
func (s *Server) handleListTasks(c *gin.Context) {
	userID, ok := s.queryUserID(c)
	if !ok {
		return
	}

	tasks, err := s.store.ListTasks(c.Request.Context(), userID)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, segmentTasks(tasks))
}

// handleCreateTask inserts a task and echoes it back.
func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if req.UserID <= 0 {
		s.respondError(c, http.StatusBadRequest, errors.New("user_id required"))
		return
	}

	due, err := model.ParseDate(req.DueDate)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	draft := model.TaskDraft{
		UserID:        int64(req.UserID),
		Title:         req.Title,
		Priority:      model.Priority(req.Priority),
		Status:        model.Status(req.Status),
		DueDate:       due,
		SubtasksTotal: req.SubtasksTotal,
	}
	if req.SprintID > 0 {
		id := int64(req.SprintID)
		draft.SprintID = &id
	}

	task, err := s.store.CreateTask(c.Request.Context(), draft)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"message": "Task created", "task": newTaskDTO(task)})
}

// handleUpdateStatus moves a task to another column.
func (s *Server) handleUpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if req.TaskID <= 0 || req.Status == "" {
		s.respondError(c, http.StatusBadRequest, errors.New("task_id and status required"))
		return
	}

	if err := s.store.UpdateTaskStatus(c.Request.Context(), int64(req.TaskID), model.Status(req.Status)); err != nil {
		s.fail(c, err)
		return
	}
	respondMessage(c, "Task status updated")
}

// handleUpdatePriority changes a task's priority.
func (s *Server) handleUpdatePriority(c *gin.Context) {
	var req updatePriorityRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if req.TaskID <= 0 || req.Priority == "" {
		s.respondError(c, http.StatusBadRequest, errors.New("task_id and priority required"))
		return
	}

	if err := s.store.UpdateTaskPriority(c.Request.Context(), int64(req.TaskID), model.Priority(req.Priority)); err != nil {
		s.fail(c, err)
		return
	}
	respondMessage(c, "Priority updated successfully")
}

// handleIncrementSubtask stores the completed subtask count.
func (s *Server) handleIncrementSubtask(c *gin.Context) {
	var req incrementSubtaskRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if req.TaskID <= 0 || req.SubtasksCompleted == nil {
		s.respondError(c, http.StatusBadRequest, errors.New("task_id and subtasks_completed required"))
		return
	}

	auto, err := s.store.SetSubtasksCompleted(c.Request.Context(), int64(req.TaskID), *req.SubtasksCompleted)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"message":        "Subtask updated",
		"auto_completed": auto,
	})
}

// handleAssignSprint moves a task into a sprint or back to the backlog.
func (s *Server) handleAssignSprint(c *gin.Context) {
	var req assignSprintRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if req.TaskID <= 0 {
		s.respondError(c, http.StatusBadRequest, errTaskIDRequired)
		return
	}

	var sprintID *int64
	if req.SprintID > 0 {
		id := int64(req.SprintID)
		sprintID = &id
	}
	name, err := s.store.AssignSprint(c.Request.Context(), int64(req.TaskID), sprintID)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"message":     "Sprint assigned",
		"sprint_id":   sprintID,
		"sprint_name": optional(name),
	})
}

// handleUpdateDueDate reschedules a task.
func (s *Server) handleUpdateDueDate(c *gin.Context) {
	var req updateDueDateRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if req.TaskID <= 0 || req.DueDate == "" {
		s.respondError(c, http.StatusBadRequest, errors.New("task_id and due_date required"))
		return
	}
	due, err := model.ParseDate(req.DueDate)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	if err := s.store.UpdateDueDate(c.Request.Context(), int64(req.TaskID), *due); err != nil {
		s.fail(c, err)
		return
	}
	respondMessage(c, "Task due date updated successfully")
}

// handleDeleteTask removes a task.
func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := s.bindTaskID(c)
	if !ok {
		return
	}
	if err := s.store.DeleteTask(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	respondMessage(c, "Task deleted successfully")
}

// handleArchiveTask moves a task to the archived shelf.
func (s *Server) handleArchiveTask(c *gin.Context) {
	id, ok := s.bindTaskID(c)
	if !ok {
		return
	}
	if err := s.store.ArchiveTask(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	respondMessage(c, "Task archived successfully")
}

// handleUnarchiveTask restores a task to the column it left.
func (s *Server) handleUnarchiveTask(c *gin.Context) {
	id, ok := s.bindTaskID(c)
	if !ok {
		return
	}
	restored, err := s.store.UnarchiveTask(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"message":     fmt.Sprintf("Task restored to %s", restored),
		"restored_to": restored,
	})
}

// handleListArchived lists the user's archived tasks.
func (s *Server) handleListArchived(c *gin.Context) {
	userID, ok := s.queryUserID(c)
	if !ok {
		return
	}

	archived, err := s.store.ListArchived(c.Request.Context(), userID)
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]archivedDTO, 0, len(archived))
	for _, a := range archived {
		out = append(out, newArchivedDTO(a))
	}
	respondSuccess(c, http.StatusOK, gin.H{"tasks": out})
}

func (s *Server) bindTaskID(c *gin.Context) (int64, bool) {
	var req taskIDRequest
	if !s.bindJSON(c, &req) {
		return 0, false
	}
	if req.TaskID <= 0 {
		s.respondError(c, http.StatusBadRequest, errTaskIDRequired)
		return 0, false
	}
	return int64(req.TaskID), true
}
