package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"task-reminder/internal/repository"
	"task-reminder/internal/schedule"
	"task-reminder/internal/service"
)

type taskRequest struct {
	Description string `json:"description" binding:"required"`
	TillDate    string `json:"tillDate" binding:"required"`
	AtWhatTime  string `json:"atWhatTime" binding:"required"`
	Reminders   []int  `json:"reminders"`
	Recurrence  string `json:"recurrence"`
}

func (r taskRequest) toInput() (service.TaskInput, error) {
	due, err := parseDate(r.TillDate)
	if err != nil {
		return service.TaskInput{}, err
	}
	return service.TaskInput{
		Description: r.Description,
		DueDate:     due,
		TimeOfDay:   r.AtWhatTime,
		Reminders:   r.Reminders,
		Recurrence:  r.Recurrence,
	}, nil
}

// parseDate accepts a bare calendar date or a full RFC 3339 timestamp;
// only the calendar day is kept either way.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", raw, time.Local); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.Local(), nil
}

func (s *Server) handleListTasks(tasks *service.TaskService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := tasks.List(c.Request.Context(), currentUser(c))
		if err != nil {
			s.serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": true, "msg": "Tasks found successfully..", "tasks": list})
	}
}

func (s *Server) handleGetTask(tasks *service.TaskService) gin.HandlerFunc {
	return func(c *gin.Context) {
		task, err := tasks.Get(c.Request.Context(), currentUser(c), c.Param("taskId"))
		if err != nil {
			s.taskError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": true, "msg": "Task found successfully..", "task": task})
	}
}

func (s *Server) handleCreateTask(tasks *service.TaskService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req taskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": false, "msg": "All fields (description, tillDate, atWhatTime) are required"})
			return
		}
		input, err := req.toInput()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": false, "msg": "Invalid tillDate"})
			return
		}

		task, err := tasks.Create(c.Request.Context(), currentUser(c), input)
		if err != nil {
			s.taskError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": true, "msg": "Task created successfully..", "task": task})
	}
}

func (s *Server) handleUpdateTask(tasks *service.TaskService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req taskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": false, "msg": "All fields (description, tillDate, atWhatTime) are required"})
			return
		}
		input, err := req.toInput()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": false, "msg": "Invalid tillDate"})
			return
		}

		task, err := tasks.Update(c.Request.Context(), currentUser(c), c.Param("taskId"), input)
		if err != nil {
			s.taskError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": true, "msg": "Task updated successfully..", "task": task})
	}
}

func (s *Server) handleDeleteTask(tasks *service.TaskService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := tasks.Delete(c.Request.Context(), currentUser(c), c.Param("taskId")); err != nil {
			s.taskError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": true, "msg": "Task deleted successfully.."})
	}
}

func (s *Server) handleCompleteTask(tasks *service.TaskService) gin.HandlerFunc {
	return func(c *gin.Context) {
		task, err := tasks.Complete(c.Request.Context(), currentUser(c), c.Param("taskId"))
		if err != nil {
			s.taskError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": true, "msg": "Task marked as complete", "task": task})
	}
}

func (s *Server) taskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, schedule.ErrInvalidTimeFormat):
		c.JSON(http.StatusBadRequest, gin.H{"status": false, "msg": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"status": false, "msg": "You cannot modify a task that doesn't belong to you"})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"status": false, "msg": "Task with given ID not found"})
	default:
		s.serverError(c, err)
	}
}
