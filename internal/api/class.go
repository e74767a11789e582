package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edunest/school-back/internal/activity"
	"github.com/edunest/school-back/internal/models"
	"github.com/edunest/school-back/internal/schedule"
	"github.com/edunest/school-back/internal/store"
)

type classUpdateRequest struct {
	Name           *string                       `json:"name"`
	Section        *string                       `json:"section"`
	Teacher        *string                       `json:"teacher"`
	Subjects       *[]string                     `json:"subjects"`
	WeeklySchedule *[]models.WeeklyScheduleEntry `json:"weeklySchedule"`
}

// updateClass godoc
// @Summary      Update a class
// @Description  Persists the update; broadcasts classScheduleUpdated when the weekly schedule changed
// @Tags         classes
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "Class id"
// @Param        body  body  classUpdateRequest  true  "Fields to update"
// @Success      200 {object} models.Class
// @Failure      404 {object} map[string]string
// @Security     BearerAuth
// @Router       /classes/update-class/{id} [put]
func (s *Server) updateClass(c *gin.Context) {
	ent := store.Entities["class"]
	id := c.Param("id")

	found, err := s.store.FindByID(c.Request.Context(), ent, id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "class not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch class"})
		return
	}
	cls := found.(*models.Class)

	var req classUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body", "error": err.Error()})
		return
	}

	// The diff runs against the stored schedule before it is replaced.
	scheduleChanged := req.WeeklySchedule != nil &&
		schedule.Changed(cls.WeeklySchedule, *req.WeeklySchedule)

	if req.Name != nil {
		cls.Name = *req.Name
	}
	if req.Section != nil {
		cls.Section = *req.Section
	}
	if req.Teacher != nil {
		cls.Teacher = *req.Teacher
	}
	if req.Subjects != nil {
		cls.Subjects = *req.Subjects
	}
	if req.WeeklySchedule != nil {
		cls.WeeklySchedule = *req.WeeklySchedule
	}

	if err := s.store.Save(c.Request.Context(), cls); err != nil {
		s.logActivity(c, activity.ActionUpdate, "class", id,
			fmt.Sprintf("Failed to update class %s", cls.Name), activity.StatusFailed)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update class", "error": err.Error()})
		return
	}

	if scheduleChanged {
		s.notifier.ScheduleChanged(c.Request.Context(), cls)
	}

	s.logActivity(c, activity.ActionUpdate, "class", id,
		fmt.Sprintf("Updated class %s", cls.Name), activity.StatusSuccess)
	c.JSON(http.StatusOK, cls)
}

// deleteClass godoc
// @Summary      Delete a class
// @Description  Deletes the class and broadcasts classDeleted
// @Tags         classes
// @Produce      json
// @Param        id  path  string  true  "Class id"
// @Success      200 {object} map[string]string
// @Failure      404 {object} map[string]string
// @Security     BearerAuth
// @Router       /classes/delete-class/{id} [delete]
func (s *Server) deleteClass(c *gin.Context) {
	ent := store.Entities["class"]
	id := c.Param("id")

	found, err := s.store.FindByID(c.Request.Context(), ent, id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "class not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch class"})
		return
	}
	cls := found.(*models.Class)

	if err := s.store.DeleteByID(c.Request.Context(), ent, id); err != nil {
		s.logActivity(c, activity.ActionDelete, "class", id,
			fmt.Sprintf("Failed to delete class %s", cls.Name), activity.StatusFailed)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete class"})
		return
	}

	s.notifier.ClassDeleted(c.Request.Context(), cls)

	s.logActivity(c, activity.ActionDelete, "class", id,
		fmt.Sprintf("Deleted class %s", cls.Name), activity.StatusSuccess)
	c.JSON(http.StatusOK, gin.H{"message": "class deleted"})
}
